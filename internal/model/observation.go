package model

import "time"

// Observation is one normalized unit of remote status data to evaluate.
// Observations are produced by a source and are never mutated by the engine.
type Observation struct {
	ID        string             `json:"id"`        // Stable identifier (e.g. "processing-1024")
	Category  string             `json:"category"`  // Rule category (e.g. "job", "agent", "export")
	Status    string             `json:"status"`    // Raw status text, lowercased by the source
	Values    map[string]float64 `json:"values"`    // Named numeric measurements
	Attrs     map[string]string  `json:"attrs"`     // Display attributes (workspace, user, ...)
	Timestamp time.Time          `json:"timestamp"` // Reference time; zero means unknown
}

// Value returns the named measurement, or 0 when absent.
func (o *Observation) Value(name string) float64 {
	if o.Values == nil {
		return 0
	}
	return o.Values[name]
}

// Attr returns the named display attribute, or "" when absent.
func (o *Observation) Attr(name string) string {
	if o.Attrs == nil {
		return ""
	}
	return o.Attrs[name]
}

// HasTimestamp reports whether the observation carries a usable timestamp.
func (o *Observation) HasTimestamp() bool {
	return !o.Timestamp.IsZero()
}
