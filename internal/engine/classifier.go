package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// Classifier converts observations into findings using a declarative ruleset.
// Classification is a pure function of its inputs and the clock; it performs
// no I/O and never mutates the observations it is given.
type Classifier struct {
	rules  Ruleset
	now    func() time.Time
	logger zerolog.Logger
}

// NewClassifier creates a Classifier for the given ruleset.
func NewClassifier(rules Ruleset, logger zerolog.Logger) *Classifier {
	return &Classifier{
		rules:  rules,
		now:    time.Now,
		logger: logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify evaluates every observation against the ruleset and returns the
// findings in emission order. Observations without a matching category are
// ignored; observations outside the lookback window are excluded unless they
// are in an in-progress state.
func (c *Classifier) Classify(observations []model.Observation) []model.Finding {
	now := c.now()
	var findings []model.Finding

	for i := range observations {
		obs := &observations[i]

		rules, ok := c.rules.Categories[obs.Category]
		if !ok {
			c.logger.Debug().Str("id", obs.ID).Str("category", obs.Category).Msg("no rules for category, skipping")
			continue
		}

		if c.expired(obs, rules, now) {
			continue
		}

		findings = append(findings, c.classifyObservation(obs, rules, now)...)
	}

	return findings
}

// expired reports whether the observation falls outside the lookback window.
// In-progress observations are retained regardless of age: an old "still
// running" observation is itself the stuck signal. Observations without a
// timestamp cannot be aged and are retained.
func (c *Classifier) expired(obs *model.Observation, rules CategoryRules, now time.Time) bool {
	if c.rules.Lookback <= 0 || !obs.HasTimestamp() {
		return false
	}
	if now.Sub(obs.Timestamp) <= c.rules.Lookback {
		return false
	}
	return !matchesStatus(obs.Status, rules.InProgress)
}

// classifyObservation applies the category's rules to one observation.
// An explicit failure state dominates every derived metric.
func (c *Classifier) classifyObservation(obs *model.Observation, rules CategoryRules, now time.Time) []model.Finding {
	if matchesStatus(obs.Status, rules.FailureStates) {
		return []model.Finding{{
			ObservationID: obs.ID,
			Category:      obs.Category,
			Severity:      model.SeverityCritical,
			Reason:        fmt.Sprintf("%s %q in failed state %q", obs.Category, obs.ID, obs.Status),
		}}
	}

	var findings []model.Finding

	if rules.Presence != nil {
		findings = append(findings, model.Finding{
			ObservationID: obs.ID,
			Category:      obs.Category,
			Severity:      rules.Presence.Severity,
			Reason:        fmt.Sprintf("%s: %s", rules.Presence.Reason, obs.ID),
		})
	}

	for _, rule := range rules.Rates {
		if f, ok := c.evaluateRate(obs, rule); ok {
			findings = append(findings, f)
		}
	}

	for _, rule := range rules.Durations {
		if f, ok := c.evaluateDuration(obs, rule, now); ok {
			findings = append(findings, f)
		}
	}

	for _, rule := range rules.Counts {
		if f, ok := c.evaluateCount(obs, rule); ok {
			findings = append(findings, f)
		}
	}

	// After-hours is an independent boolean concern that combines with the
	// findings above; it never replaces or lowers them.
	if rules.AfterHours != nil && obs.HasTimestamp() {
		if isAfterHours(obs.Timestamp, rules.AfterHours.StartHour, rules.AfterHours.EndHour) {
			findings = append(findings, model.Finding{
				ObservationID: obs.ID,
				Category:      obs.Category,
				Severity:      rules.AfterHours.Severity,
				Reason:        fmt.Sprintf("after-hours %s activity: %s", obs.Category, obs.ID),
			})
		}
	}

	return findings
}

// evaluateRate grades numerator/denominator against the rule's cutoffs.
// A zero or missing denominator yields no finding: there is no rate to judge
// on an empty sample.
func (c *Classifier) evaluateRate(obs *model.Observation, rule RateRule) (model.Finding, bool) {
	den := obs.Value(rule.Denominator)
	if den <= 0 {
		return model.Finding{}, false
	}

	rate := obs.Value(rule.Numerator) / den
	sev := rule.Cutoffs.severityFor(rate)
	if sev == model.SeverityOK {
		return model.Finding{}, false
	}

	return model.Finding{
		ObservationID: obs.ID,
		Category:      obs.Category,
		Severity:      sev,
		Reason:        fmt.Sprintf("%s %.1f%% on %s", rule.Name, rate*100, obs.ID),
		Facts: map[string]float64{
			"rate":           rate,
			rule.Numerator:   obs.Value(rule.Numerator),
			rule.Denominator: den,
		},
	}, true
}

// evaluateDuration grades the elapsed time since the observation's reference
// timestamp. When the rule names a baseline field and the observation carries
// one, cutoffs are read as multiples of that baseline instead of hours, so
// naturally slow work is not penalized. Observations without a timestamp are
// skipped rather than failed.
func (c *Classifier) evaluateDuration(obs *model.Observation, rule DurationRule, now time.Time) (model.Finding, bool) {
	if !obs.HasTimestamp() {
		return model.Finding{}, false
	}
	if len(rule.Statuses) > 0 && !matchesStatus(obs.Status, rule.Statuses) {
		return model.Finding{}, false
	}

	hours := now.Sub(obs.Timestamp).Hours()
	if hours < 0 {
		return model.Finding{}, false
	}

	value := hours
	if rule.BaselineField != "" {
		if baseline := obs.Value(rule.BaselineField); baseline > 0 {
			value = hours / baseline
		}
	}

	sev := rule.Cutoffs.severityFor(value)
	if sev == model.SeverityOK {
		return model.Finding{}, false
	}

	return model.Finding{
		ObservationID: obs.ID,
		Category:      obs.Category,
		Severity:      sev,
		Reason:        fmt.Sprintf("%s: %s for %.1fh", rule.Name, obs.ID, hours),
		Facts:         map[string]float64{"hours": hours},
	}, true
}

// evaluateCount grades a raw measurement against the rule's cutoffs.
// Missing measurements read as zero.
func (c *Classifier) evaluateCount(obs *model.Observation, rule CountRule) (model.Finding, bool) {
	value := obs.Value(rule.Field)
	sev := rule.Cutoffs.severityFor(value)
	if sev == model.SeverityOK {
		return model.Finding{}, false
	}

	return model.Finding{
		ObservationID: obs.ID,
		Category:      obs.Category,
		Severity:      sev,
		Reason:        fmt.Sprintf("%s: %.0f on %s", rule.Name, value, obs.ID),
		Facts:         map[string]float64{rule.Field: value},
	}, true
}

// matchesStatus reports whether status contains any vocabulary entry.
// Matching is case-insensitive substring, the way the platform reports
// compound statuses like "error - job failed".
func matchesStatus(status string, vocabulary []string) bool {
	if status == "" || len(vocabulary) == 0 {
		return false
	}
	lower := strings.ToLower(status)
	for _, v := range vocabulary {
		if v != "" && strings.Contains(lower, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// isAfterHours reports whether t falls on a weekend or outside the
// [startHour, endHour) business window, in t's own location.
func isAfterHours(t time.Time, startHour, endHour int) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}
	hour := t.Hour()
	return hour < startHour || hour >= endHour
}
