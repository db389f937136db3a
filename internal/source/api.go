package source

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
	"statuswatch/internal/engine"
	"statuswatch/internal/model"
)

// APISource probes the platform's API health endpoint. A failed probe is an
// observation, not a fetch error: the check's job is to report the API being
// down, and the consecutive-failure streak carried through the persisted
// state grades how long it has been down.
type APISource struct {
	client *platform.Client
	path   string
	logger zerolog.Logger
	now    func() time.Time
}

// NewAPISource creates the observation source for the API health check.
func NewAPISource(client *platform.Client, path string, logger zerolog.Logger) *APISource {
	return &APISource{
		client: client,
		path:   path,
		logger: logger.With().Str("component", "api-source").Logger(),
		now:    time.Now,
	}
}

// Fetch probes the health endpoint once and returns a single observation.
func (s *APISource) Fetch(ctx context.Context) ([]model.Observation, error) {
	obs := model.Observation{
		ID:        "api-health",
		Category:  "availability",
		Timestamp: s.now(),
	}

	latency, err := s.client.ProbeHealth(ctx, s.path)
	if err != nil {
		s.logger.Warn().Err(err).Msg("health probe failed")
		obs.Status = "down"
		obs.Attrs = map[string]string{"error": err.Error()}
		return []model.Observation{obs}, nil
	}

	obs.Status = "ok"
	obs.Values = map[string]float64{
		"response_time_ms": float64(latency.Milliseconds()),
	}
	return []model.Observation{obs}, nil
}

// APIRules builds the declarative rule table for the API health check. The
// consecutive-failure streak is injected by the runner's carry before
// classification, so a plain count rule grades it: the first failed probe is
// a WARNING, sustained failure escalates to CRITICAL.
func APIRules(cfg config.APICheckConfig) engine.Ruleset {
	return engine.Ruleset{
		Categories: map[string]engine.CategoryRules{
			"availability": {
				Counts: []engine.CountRule{
					{
						Name:    "slow API response",
						Field:   "response_time_ms",
						Cutoffs: cutoffs(cfg.ResponseTimeMS),
					},
					{
						Name:    "consecutive probe failures",
						Field:   "consecutive_failures",
						Cutoffs: cutoffs(cfg.ConsecutiveFailures),
					},
				},
			},
		},
		Carry: &engine.ConsecutiveCarry{
			Category: "availability",
			Field:    "consecutive_failures",
			Statuses: []string{"down"},
		},
	}
}
