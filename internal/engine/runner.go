package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// Source produces the observation set for one check. Implementations own all
// remote I/O, field mapping, and timeouts; the engine only sees normalized
// observations.
type Source interface {
	Fetch(ctx context.Context) ([]model.Observation, error)
}

// Store persists per-check state snapshots between runs. Load never fails:
// a missing or unreadable snapshot yields the all-OK default.
type Store interface {
	Load(check string) model.CheckState
	Save(check string, state model.CheckState) error
}

// Dispatcher delivers a run result over the configured notification
// channels. Channel failures are the dispatcher's concern and must not
// propagate back into the run.
type Dispatcher interface {
	Dispatch(ctx context.Context, result *model.RunResult)
}

// Check binds a named ruleset to its observation source.
type Check struct {
	Name   string
	Source Source
	Rules  Ruleset
}

// Runner executes checks: fetch, classify, aggregate, debounce, notify,
// persist, strictly in that order and single-pass.
type Runner struct {
	aggregator *Aggregator
	gate       *Gate
	store      Store
	dispatcher Dispatcher
	logger     zerolog.Logger
}

// NewRunner creates a Runner wired to the given state store and dispatcher.
func NewRunner(topFindings int, store Store, dispatcher Dispatcher, logger zerolog.Logger) *Runner {
	return &Runner{
		aggregator: NewAggregator(topFindings, logger),
		gate:       NewGate(logger),
		store:      store,
		dispatcher: dispatcher,
		logger:     logger.With().Str("component", "runner").Logger(),
	}
}

// Run executes one check and returns its result and whether it notified.
//
// A fetch failure never looks like a healthy run: it produces a CRITICAL
// monitoring-failure result instead (a broken monitor must be distinguishable
// from a healthy system). The new state snapshot is persisted on every run,
// notified or not, so the next run's comparison baseline advances; a persist
// failure is logged but never aborts the run or suppresses an alert that was
// already decided.
func (r *Runner) Run(ctx context.Context, check Check) (*model.RunResult, bool) {
	logger := r.logger.With().Str("check", check.Name).Logger()
	logger.Info().Msg("starting check run")

	prev := r.store.Load(check.Name)

	var result *model.RunResult
	streak := 0

	observations, err := check.Source.Fetch(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("observation fetch failed")
		result = r.failSafeResult(check.Name, err)
		if check.Rules.Carry != nil {
			streak = prev.ConsecutiveFailures
		}
	} else {
		observations, streak = applyCarry(check.Rules, observations, prev)
		classifier := NewClassifier(check.Rules, logger)
		findings := classifier.Classify(observations)
		result = r.aggregator.Aggregate(check.Name, findings, len(observations))
	}

	logger.Info().
		Str("level", result.Level.String()).
		Str("summary", result.Summary).
		Msg("check evaluated")

	notify := r.gate.ShouldNotify(result, prev)
	if notify {
		logger.Info().Str("level", result.Level.String()).Msg("dispatching notification")
		r.dispatcher.Dispatch(ctx, result)
	} else {
		logger.Debug().Msg("notification suppressed")
	}

	if err := r.store.Save(check.Name, model.NewCheckState(result, streak)); err != nil {
		// Best-effort: bookkeeping must never block alerting.
		logger.Warn().Err(err).Msg("failed to persist check state")
	}

	return result, notify
}

// failSafeResult builds the CRITICAL result reported when the check itself
// could not observe the platform.
func (r *Runner) failSafeResult(check string, err error) *model.RunResult {
	return &model.RunResult{
		Check:     check,
		Level:     model.SeverityCritical,
		Summary:   fmt.Sprintf("CRITICAL: monitoring failure, check %q could not observe the platform: %v", check, err),
		Timestamp: time.Now(),
	}
}

// applyCarry injects the cross-run failure streak into the carried category's
// observations so a plain count rule can grade it. Observations are copied,
// never mutated: the returned slice shares untouched entries with the input.
func applyCarry(rules Ruleset, observations []model.Observation, prev model.CheckState) ([]model.Observation, int) {
	carry := rules.Carry
	if carry == nil {
		return observations, 0
	}

	vocabulary := carry.Statuses

	failed := false
	for i := range observations {
		if observations[i].Category == carry.Category && matchesStatus(observations[i].Status, vocabulary) {
			failed = true
			break
		}
	}

	streak := 0
	if failed {
		streak = prev.ConsecutiveFailures + 1
	}

	out := make([]model.Observation, len(observations))
	copy(out, observations)
	for i := range out {
		if out[i].Category != carry.Category {
			continue
		}
		values := make(map[string]float64, len(out[i].Values)+1)
		for k, v := range out[i].Values {
			values[k] = v
		}
		values[carry.Field] = float64(streak)
		out[i].Values = values
	}

	return out, streak
}
