package model

// Finding is the output of classifying one observation against one rule.
// One observation can yield multiple findings for independent concerns;
// findings are never merged across observations.
type Finding struct {
	ObservationID string             `json:"observation_id"`
	Category      string             `json:"category"`
	Severity      Severity           `json:"severity"`
	Reason        string             `json:"reason"`          // Short human-readable cause
	Facts         map[string]float64 `json:"facts,omitempty"` // Numeric facts for display
}
