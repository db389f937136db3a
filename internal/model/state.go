package model

import "time"

// CheckState is the compact snapshot persisted after every check run.
// It is read once at run start and overwritten once at run end; a missing
// or corrupt snapshot is replaced by DefaultCheckState.
type CheckState struct {
	Level               Severity       `json:"level"`
	Counts              SeverityCounts `json:"counts"`
	FailedIDs           []string       `json:"failed_ids,omitempty"`
	ConsecutiveFailures int            `json:"consecutive_failures,omitempty"`
	Timestamp           time.Time      `json:"timestamp"`
}

// DefaultCheckState returns the all-OK baseline used when no previous
// state can be read.
func DefaultCheckState() CheckState {
	return CheckState{Level: SeverityOK}
}

// NewCheckState builds the snapshot for a run result. consecutiveFailures
// carries the probe failure streak for checks that track one; pass 0 for
// checks that do not.
func NewCheckState(result *RunResult, consecutiveFailures int) CheckState {
	return CheckState{
		Level:               result.Level,
		Counts:              result.Counts(),
		FailedIDs:           result.FailedIDs(),
		ConsecutiveFailures: consecutiveFailures,
		Timestamp:           result.Timestamp,
	}
}
