package engine

import (
	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// Gate decides whether a run result is newsworthy enough to notify, given
// the persisted state of the previous run. It suppresses repeat alerts for
// an unchanged condition while guaranteeing that CRITICAL runs, escalations,
// recoveries, and newly appeared failures always get through.
type Gate struct {
	logger zerolog.Logger
}

// NewGate creates a debounce Gate.
func NewGate(logger zerolog.Logger) *Gate {
	return &Gate{logger: logger.With().Str("component", "debounce").Logger()}
}

// ShouldNotify reports whether the result should trigger outbound
// notification. It is true when any of:
//
//  1. the current level is CRITICAL (never deduplicated),
//  2. the current level is strictly above the previous level (escalation),
//  3. the current level is OK and the previous was not (recovery),
//  4. a failed identifier appears that was not failed in the previous run,
//     even if the overall level and counts did not change.
func (g *Gate) ShouldNotify(result *model.RunResult, prev model.CheckState) bool {
	current := result.Level

	if current == model.SeverityCritical {
		g.logger.Debug().Str("check", result.Check).Msg("notify: level is CRITICAL")
		return true
	}

	if current > prev.Level {
		g.logger.Debug().
			Str("check", result.Check).
			Str("from", prev.Level.String()).
			Str("to", current.String()).
			Msg("notify: escalation")
		return true
	}

	if current == model.SeverityOK && prev.Level != model.SeverityOK {
		g.logger.Debug().
			Str("check", result.Check).
			Str("from", prev.Level.String()).
			Msg("notify: recovery")
		return true
	}

	known := make(map[string]bool, len(prev.FailedIDs))
	for _, id := range prev.FailedIDs {
		known[id] = true
	}
	for _, id := range result.FailedIDs() {
		if !known[id] {
			g.logger.Debug().Str("check", result.Check).Str("id", id).Msg("notify: new failed identifier")
			return true
		}
	}

	g.logger.Debug().
		Str("check", result.Check).
		Str("level", current.String()).
		Msg("suppressed: no significant state change")
	return false
}
