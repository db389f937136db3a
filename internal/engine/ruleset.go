// Package engine implements the severity classification and alert-debounce
// core shared by all statuswatch checks: a classifier that turns observations
// into findings, an aggregator that reduces findings into a run result, and a
// debounce gate that decides whether the result is worth notifying about.
package engine

import (
	"time"

	"statuswatch/internal/model"
)

// Cutoffs defines ascending severity cutoffs for one rule. A tier with
// cutoff 0 is disabled. The lower bound of each tier is inclusive; the next
// tier's cutoff is exclusive for the one below.
type Cutoffs struct {
	Warning  float64
	High     float64
	Critical float64
}

// severityFor returns the severity of the highest cutoff met by value.
func (c Cutoffs) severityFor(value float64) model.Severity {
	switch {
	case c.Critical > 0 && value >= c.Critical:
		return model.SeverityCritical
	case c.High > 0 && value >= c.High:
		return model.SeverityHigh
	case c.Warning > 0 && value >= c.Warning:
		return model.SeverityWarning
	default:
		return model.SeverityOK
	}
}

// RateRule classifies the ratio of two named measurements against cutoffs.
// The rule is skipped when the denominator is zero or missing.
type RateRule struct {
	Name        string // Reason label, e.g. "error rate"
	Numerator   string
	Denominator string
	Cutoffs     Cutoffs
}

// DurationRule classifies the elapsed time since an observation's reference
// timestamp. Cutoffs are hours, or multiples of the observation's baseline
// measurement when BaselineField is set and present.
type DurationRule struct {
	Name          string   // Reason label, e.g. "stuck in running state"
	Cutoffs       Cutoffs  // Hours, or multiples when a baseline applies
	BaselineField string   // Expected-duration measurement (hours); optional
	Statuses      []string // Apply only to these statuses; empty means all
}

// CountRule classifies a raw named measurement against cutoffs.
type CountRule struct {
	Name    string // Reason label, e.g. "failed logins"
	Field   string
	Cutoffs Cutoffs
}

// AfterHoursRule emits a finding when the observation's timestamp falls
// outside the business-hours window or on a weekend. It is additive-only:
// it combines with other findings on the same observation and never lowers
// their severity.
type AfterHoursRule struct {
	StartHour int // Business window start, inclusive
	EndHour   int // Business window end, exclusive
	Severity  model.Severity
}

// PresenceRule emits a finding for every observation in the category,
// regardless of measurements (e.g. lockbox changes, mass operations).
type PresenceRule struct {
	Reason   string
	Severity model.Severity
}

// CategoryRules is the declarative rule table for one observation category.
type CategoryRules struct {
	// FailureStates is the explicit-failure vocabulary. A status matching
	// any entry (substring, case-insensitive) yields a CRITICAL finding and
	// skips every other rule for the observation.
	FailureStates []string
	// InProgress is the vocabulary of unterminated states exempt from
	// lookback filtering.
	InProgress []string

	Presence   *PresenceRule
	Rates      []RateRule
	Durations  []DurationRule
	Counts     []CountRule
	AfterHours *AfterHoursRule
}

// ConsecutiveCarry names a category whose failure streak is carried across
// runs through the persisted state. The runner injects the current streak
// into the named measurement before classification so that a plain CountRule
// can grade it. Statuses is the vocabulary that counts as a failed probe.
type ConsecutiveCarry struct {
	Category string
	Field    string
	Statuses []string
}

// Ruleset is the complete declarative rule table for one check.
type Ruleset struct {
	// Lookback excludes observations older than this window, except those in
	// an in-progress state. Zero disables filtering.
	Lookback   time.Duration
	Categories map[string]CategoryRules
	Carry      *ConsecutiveCarry
}
