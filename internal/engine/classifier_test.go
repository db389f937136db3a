package engine

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// Wednesday 12:00 UTC, inside business hours
var testNow = time.Date(2025, 3, 12, 12, 0, 0, 0, time.UTC)

func newTestClassifier(rules Ruleset) *Classifier {
	c := NewClassifier(rules, zerolog.Nop())
	c.now = func() time.Time { return testNow }
	return c
}

func jobRuleset() Ruleset {
	return Ruleset{
		Lookback: 24 * time.Hour,
		Categories: map[string]CategoryRules{
			"job": {
				FailureStates: []string{"error", "failed", "cancelled with errors"},
				InProgress:    []string{"processing", "running", "queued"},
				Rates: []RateRule{{
					Name:        "error rate",
					Numerator:   "docs_errored",
					Denominator: "doc_count",
					Cutoffs:     Cutoffs{Warning: 0.05, High: 0.10, Critical: 0.20},
				}},
				Durations: []DurationRule{{
					Name:     "stuck in running state",
					Cutoffs:  Cutoffs{Warning: 4, High: 8, Critical: 24},
					Statuses: []string{"processing", "running"},
				}},
			},
		},
	}
}

// =============================================================================
// Failure-state dominance
// =============================================================================

func TestClassifyFailureStateDominates(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	// Failed status AND a terrible error rate AND an old timestamp: the
	// explicit failure must yield exactly one CRITICAL finding.
	obs := []model.Observation{{
		ID:        "processing-1",
		Category:  "job",
		Status:    "run failed",
		Values:    map[string]float64{"docs_errored": 90, "doc_count": 100},
		Timestamp: testNow.Add(-2 * time.Hour),
	}}

	findings := c.Classify(obs)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %v", len(findings), findings)
	}
	if findings[0].Severity != model.SeverityCritical {
		t.Errorf("expected CRITICAL, got %s", findings[0].Severity)
	}
}

func TestClassifyFailureMatchIsSubstringCaseInsensitive(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	obs := []model.Observation{{
		ID:        "production-7",
		Category:  "job",
		Status:    "Cancelled With Errors - see log",
		Timestamp: testNow.Add(-time.Hour),
	}}

	findings := c.Classify(obs)
	if len(findings) != 1 || findings[0].Severity != model.SeverityCritical {
		t.Fatalf("expected single CRITICAL finding, got %v", findings)
	}
}

// =============================================================================
// Rate rules
// =============================================================================

func TestClassifyRateBoundaries(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	cases := []struct {
		name    string
		errored float64
		total   float64
		want    model.Severity
		found   bool
	}{
		{"below warning", 4, 100, model.SeverityOK, false},
		{"warning cutoff inclusive", 5, 100, model.SeverityWarning, true},
		{"high cutoff inclusive", 10, 100, model.SeverityHigh, true},
		{"just below critical", 19, 100, model.SeverityHigh, true},
		{"critical cutoff inclusive", 20, 100, model.SeverityCritical, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := []model.Observation{{
				ID:        "review-1",
				Category:  "job",
				Status:    "completed",
				Values:    map[string]float64{"docs_errored": tc.errored, "doc_count": tc.total},
				Timestamp: testNow.Add(-time.Hour),
			}}
			findings := c.Classify(obs)
			if !tc.found {
				if len(findings) != 0 {
					t.Fatalf("expected no findings, got %v", findings)
				}
				return
			}
			if len(findings) != 1 {
				t.Fatalf("expected 1 finding, got %d", len(findings))
			}
			if findings[0].Severity != tc.want {
				t.Errorf("expected %s, got %s", tc.want, findings[0].Severity)
			}
		})
	}
}

func TestClassifyRateZeroDenominatorSkipped(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	obs := []model.Observation{{
		ID:        "review-2",
		Category:  "job",
		Status:    "completed",
		Values:    map[string]float64{"docs_errored": 0, "doc_count": 0},
		Timestamp: testNow.Add(-time.Hour),
	}}

	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected no findings for zero denominator, got %v", findings)
	}
}

// =============================================================================
// Duration rules
// =============================================================================

func TestClassifyStuckDuration(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	cases := []struct {
		name  string
		age   time.Duration
		want  model.Severity
		found bool
	}{
		{"fresh", 1 * time.Hour, model.SeverityOK, false},
		{"warning at 4h", 4 * time.Hour, model.SeverityWarning, true},
		{"high at 9h", 9 * time.Hour, model.SeverityHigh, true},
		{"critical at 30h", 30 * time.Hour, model.SeverityCritical, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := []model.Observation{{
				ID:        "processing-9",
				Category:  "job",
				Status:    "processing",
				Timestamp: testNow.Add(-tc.age),
			}}
			findings := c.Classify(obs)
			if !tc.found {
				if len(findings) != 0 {
					t.Fatalf("expected no findings, got %v", findings)
				}
				return
			}
			if len(findings) != 1 || findings[0].Severity != tc.want {
				t.Fatalf("expected one %s finding, got %v", tc.want, findings)
			}
		})
	}
}

func TestClassifyDurationRequiresMatchingStatus(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	// Old but completed: duration rule only applies to running states, and
	// the lookback filter drops completed work older than the window.
	obs := []model.Observation{{
		ID:        "processing-3",
		Category:  "job",
		Status:    "completed",
		Timestamp: testNow.Add(-10 * time.Hour),
	}}

	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected no findings for completed job, got %v", findings)
	}
}

func TestClassifyDurationBaselineMultiples(t *testing.T) {
	rules := Ruleset{
		Categories: map[string]CategoryRules{
			"review": {
				Durations: []DurationRule{{
					Name:          "stuck beyond expected duration",
					Cutoffs:       Cutoffs{Warning: 2, High: 4, Critical: 8},
					BaselineField: "expected_hours",
					Statuses:      []string{"running"},
				}},
			},
		},
	}
	c := newTestClassifier(rules)

	// 12h elapsed against a 6h baseline is 2x: WARNING, not CRITICAL as raw
	// hours would grade it.
	obs := []model.Observation{{
		ID:        "review-5",
		Category:  "review",
		Status:    "running",
		Values:    map[string]float64{"expected_hours": 6},
		Timestamp: testNow.Add(-12 * time.Hour),
	}}

	findings := c.Classify(obs)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != model.SeverityWarning {
		t.Errorf("expected WARNING at 2x baseline, got %s", findings[0].Severity)
	}
}

func TestClassifyDurationNoTimestampSkipped(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	obs := []model.Observation{{
		ID:       "processing-4",
		Category: "job",
		Status:   "processing",
	}}

	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected no findings without timestamp, got %v", findings)
	}
}

// =============================================================================
// Lookback filtering
// =============================================================================

func TestClassifyLookbackExcludesOldTerminal(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	// 40h old and failed, but outside the 24h window: excluded entirely.
	obs := []model.Observation{{
		ID:        "processing-8",
		Category:  "job",
		Status:    "run failed",
		Timestamp: testNow.Add(-40 * time.Hour),
	}}

	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected old terminal observation excluded, got %v", findings)
	}
}

func TestClassifyLookbackRetainsOldInProgress(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	// 40h old and still processing: the age IS the signal, so it stays in
	// and the duration rule grades it CRITICAL.
	obs := []model.Observation{{
		ID:        "processing-2",
		Category:  "job",
		Status:    "processing",
		Timestamp: testNow.Add(-40 * time.Hour),
	}}

	findings := c.Classify(obs)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != model.SeverityCritical {
		t.Errorf("expected CRITICAL for 40h stuck job, got %s", findings[0].Severity)
	}
}

// =============================================================================
// After-hours and presence rules
// =============================================================================

func auditRuleset() Ruleset {
	return Ruleset{
		Categories: map[string]CategoryRules{
			"export": {
				Counts: []CountRule{{
					Name:    "documents exported",
					Field:   "doc_count",
					Cutoffs: Cutoffs{Warning: 1000, High: 5000, Critical: 10000},
				}},
				AfterHours: &AfterHoursRule{StartHour: 7, EndHour: 19, Severity: model.SeverityHigh},
			},
			"lockbox": {
				Presence: &PresenceRule{Reason: "lockbox setting changed", Severity: model.SeverityCritical},
			},
		},
	}
}

func TestClassifyAfterHoursAdditive(t *testing.T) {
	c := newTestClassifier(auditRuleset())

	// Saturday export over the warning cutoff: the count finding and the
	// after-hours finding both appear.
	saturday := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	obs := []model.Observation{{
		ID:        "export-1",
		Category:  "export",
		Values:    map[string]float64{"doc_count": 2000},
		Timestamp: saturday,
	}}

	findings := c.Classify(obs)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %v", len(findings), findings)
	}
	if findings[0].Severity != model.SeverityWarning {
		t.Errorf("expected WARNING count finding first, got %s", findings[0].Severity)
	}
	if findings[1].Severity != model.SeverityHigh {
		t.Errorf("expected HIGH after-hours finding, got %s", findings[1].Severity)
	}
}

func TestClassifyBusinessHoursNoAfterHoursFinding(t *testing.T) {
	c := newTestClassifier(auditRuleset())

	// Weekday noon, below every cutoff: nothing to report.
	obs := []model.Observation{{
		ID:        "export-2",
		Category:  "export",
		Values:    map[string]float64{"doc_count": 500},
		Timestamp: testNow,
	}}

	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected no findings, got %v", findings)
	}
}

func TestClassifyAfterHoursEdgeHours(t *testing.T) {
	cases := []struct {
		hour  int
		after bool
	}{
		{6, true},   // before opening
		{7, false},  // opening hour inclusive
		{18, false}, // last business hour
		{19, true},  // closing hour exclusive
		{23, true},
	}
	for _, tc := range cases {
		ts := time.Date(2025, 3, 12, tc.hour, 30, 0, 0, time.UTC)
		if got := isAfterHours(ts, 7, 19); got != tc.after {
			t.Errorf("hour %d: expected afterHours=%v, got %v", tc.hour, tc.after, got)
		}
	}
}

func TestClassifyPresenceRule(t *testing.T) {
	c := newTestClassifier(auditRuleset())

	obs := []model.Observation{{
		ID:       "lockbox-1",
		Category: "lockbox",
	}}

	findings := c.Classify(obs)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if findings[0].Severity != model.SeverityCritical {
		t.Errorf("expected CRITICAL, got %s", findings[0].Severity)
	}
}

// =============================================================================
// General behavior
// =============================================================================

func TestClassifyUnknownCategorySkipped(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	obs := []model.Observation{{ID: "x", Category: "mystery", Status: "failed"}}
	if findings := c.Classify(obs); len(findings) != 0 {
		t.Errorf("expected no findings for unknown category, got %v", findings)
	}
}

func TestClassifyIsIdempotent(t *testing.T) {
	c := newTestClassifier(jobRuleset())

	obs := []model.Observation{
		{
			ID:        "processing-1",
			Category:  "job",
			Status:    "run failed",
			Timestamp: testNow.Add(-time.Hour),
		},
		{
			ID:        "review-1",
			Category:  "job",
			Status:    "completed",
			Values:    map[string]float64{"docs_errored": 8, "doc_count": 100},
			Timestamp: testNow.Add(-time.Hour),
		},
	}

	first := c.Classify(obs)
	second := c.Classify(obs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("classification is not idempotent:\nfirst:  %v\nsecond: %v", first, second)
	}
}
