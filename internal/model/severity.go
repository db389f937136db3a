// Package model provides data models for statuswatch checks.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents the ordered severity of a finding or check run.
// The zero value is SeverityOK.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityHigh
	SeverityCritical
)

// severityNames maps severities to their canonical string form.
var severityNames = map[Severity]string{
	SeverityOK:       "OK",
	SeverityWarning:  "WARNING",
	SeverityHigh:     "HIGH",
	SeverityCritical: "CRITICAL",
}

// String returns the canonical name of the severity.
func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// ExitCode returns the process exit code for this severity.
// This is the numeric contract callers may script against:
// OK=0, WARNING=1, HIGH=2, CRITICAL=3.
func (s Severity) ExitCode() int {
	return int(s)
}

// Join returns the more severe of s and other (lattice join).
func (s Severity) Join(other Severity) Severity {
	if other > s {
		return other
	}
	return s
}

// ParseSeverity converts a severity name to a Severity.
// Parsing is case-insensitive.
func ParseSeverity(name string) (Severity, error) {
	for sev, n := range severityNames {
		if strings.EqualFold(name, n) {
			return sev, nil
		}
	}
	return SeverityOK, fmt.Errorf("unknown severity %q", name)
}

// MarshalJSON encodes the severity as its canonical name.
func (s Severity) MarshalJSON() ([]byte, error) {
	name, ok := severityNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return json.Marshal(name)
}

// UnmarshalJSON decodes a severity from its canonical name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
