package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
	"statuswatch/internal/engine"
	"statuswatch/internal/model"
)

// AgentsSource observes the environment agents: per-agent enablement and
// activity staleness, plus a fleet-level unhealthy count.
type AgentsSource struct {
	client *platform.Client
	logger zerolog.Logger
}

// NewAgentsSource creates the observation source for the agents check.
func NewAgentsSource(client *platform.Client, logger zerolog.Logger) *AgentsSource {
	return &AgentsSource{
		client: client,
		logger: logger.With().Str("component", "agents-source").Logger(),
	}
}

// Fetch queries the agents API and maps each agent to an observation. A
// synthetic "agent-fleet" observation carries the count of unhealthy agents
// so the fleet-level count rule can grade it.
func (s *AgentsSource) Fetch(ctx context.Context) ([]model.Observation, error) {
	agents, err := s.client.GetAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}

	var observations []model.Observation
	unhealthy := 0

	for _, agent := range agents {
		status := strings.ToLower(agent.Status)
		if !agent.Enabled {
			status = "disabled"
		}
		if status == "disabled" || strings.Contains(status, "not responding") {
			unhealthy++
		}

		observations = append(observations, model.Observation{
			ID:        fmt.Sprintf("agent-%d", agent.ArtifactID),
			Category:  "agent",
			Status:    status,
			Timestamp: parseAgentTime(agent.LastActivity),
			Attrs:     map[string]string{"name": agent.Name},
		})
	}

	observations = append(observations, model.Observation{
		ID:       "agent-fleet",
		Category: "agent-fleet",
		Status:   "ok",
		Values:   map[string]float64{"unhealthy": float64(unhealthy)},
	})

	s.logger.Debug().Int("agents", len(agents)).Int("unhealthy", unhealthy).Msg("agents fetched")
	return observations, nil
}

// parseAgentTime parses the agent's last-activity timestamp. Unparsable
// values yield the zero time, which skips staleness rules for that agent.
func parseAgentTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// AgentsRules builds the declarative rule table for the agents check.
// Staleness cutoffs are configured in minutes and converted to the hour
// scale the duration rule evaluates in.
func AgentsRules(cfg config.AgentsCheckConfig, vocab config.Vocabulary) engine.Ruleset {
	return engine.Ruleset{
		Categories: map[string]engine.CategoryRules{
			"agent": {
				FailureStates: vocab.Failure,
				Durations: []engine.DurationRule{
					{
						Name: "no recent activity",
						Cutoffs: engine.Cutoffs{
							Warning:  cfg.StaleMinutes.Warning / 60,
							High:     cfg.StaleMinutes.High / 60,
							Critical: cfg.StaleMinutes.Critical / 60,
						},
					},
				},
			},
			"agent-fleet": {
				Counts: []engine.CountRule{
					{
						Name:    "unhealthy agents",
						Field:   "unhealthy",
						Cutoffs: cutoffs(cfg.UnhealthyAgents),
					},
				},
			},
		},
	}
}
