package model

import "time"

// SeverityCounts holds the number of findings per non-OK severity tier.
type SeverityCounts struct {
	Warning  int `json:"warning"`
	High     int `json:"high"`
	Critical int `json:"critical"`
}

// Total returns the total number of counted findings.
func (c SeverityCounts) Total() int {
	return c.Warning + c.High + c.Critical
}

// RunResult is the aggregated outcome of a single check execution.
// It is immutable once produced by the aggregator.
type RunResult struct {
	Check     string    `json:"check"`
	Level     Severity  `json:"level"`
	Findings  []Finding `json:"findings"` // Classifier emission order
	Analyzed  int       `json:"analyzed"` // Observations examined this run
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// BySeverity returns the findings at the given severity, preserving
// classifier emission order.
func (r *RunResult) BySeverity(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Counts returns the number of findings per severity tier.
func (r *RunResult) Counts() SeverityCounts {
	var counts SeverityCounts
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityWarning:
			counts.Warning++
		case SeverityHigh:
			counts.High++
		case SeverityCritical:
			counts.Critical++
		}
	}
	return counts
}

// FailedIDs returns the deduplicated observation identifiers that have at
// least one CRITICAL finding, in first-seen order.
func (r *RunResult) FailedIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, f := range r.Findings {
		if f.Severity != SeverityCritical || seen[f.ObservationID] {
			continue
		}
		seen[f.ObservationID] = true
		ids = append(ids, f.ObservationID)
	}
	return ids
}
