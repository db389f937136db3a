// Package source provides per-check observation sources. Each source queries
// the platform API and maps the vendor response shapes into normalized
// observations; all remote I/O for a check lives here, not in the engine.
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

// Object type identifiers for the job queue surfaces.
const (
	processingSetType = 1000017
	productionSetType = 1000023
	imagingSetType    = 1000020
	reviewJobType     = 1000031
)

// defaultExpectedHours is the baseline applied to review jobs that do not
// report an expected duration, so the stuck-multiple rule has something to
// scale against.
const defaultExpectedHours = 4.0

// jobQueue describes one queue surface the jobs check observes.
type jobQueue struct {
	name         string
	artifactType int
}

var jobQueues = []jobQueue{
	{"processing", processingSetType},
	{"production", productionSetType},
	{"imaging", imagingSetType},
}

// JobsSource observes the processing, production, and imaging job queues
// plus review jobs with per-document error counts.
type JobsSource struct {
	client *platform.Client
	logger zerolog.Logger
}

// NewJobsSource creates the observation source for the jobs check.
func NewJobsSource(client *platform.Client, logger zerolog.Logger) *JobsSource {
	return &JobsSource{
		client: client,
		logger: logger.With().Str("component", "jobs-source").Logger(),
	}
}

// Fetch queries all job queue surfaces and maps them to observations.
func (s *JobsSource) Fetch(ctx context.Context) ([]model.Observation, error) {
	var observations []model.Observation

	for _, queue := range jobQueues {
		records, err := s.client.QueryObjects(ctx, platform.ObjectQuery{
			ArtifactTypeID: queue.artifactType,
			Fields:         []string{"Name", "Status", "Workspace", "System Created On", "System Last Modified On"},
			SortField:      "System Last Modified On",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query %s jobs: %w", queue.name, err)
		}

		for _, rec := range records {
			observations = append(observations, model.Observation{
				ID:        fmt.Sprintf("%s-%d", queue.name, rec.ArtifactID),
				Category:  "job",
				Status:    strings.ToLower(rec.String("Status")),
				Timestamp: rec.Time("System Last Modified On"),
				Attrs: map[string]string{
					"name":      rec.String("Name"),
					"workspace": rec.String("Workspace"),
					"queue":     queue.name,
				},
			})
		}
		s.logger.Debug().Str("queue", queue.name).Int("count", len(records)).Msg("queue fetched")
	}

	reviews, err := s.client.QueryObjects(ctx, platform.ObjectQuery{
		ArtifactTypeID: reviewJobType,
		Fields:         []string{"Name", "Status", "Workspace", "Doc Count", "Docs Errored", "Expected Hours", "Submitted Time"},
		SortField:      "Submitted Time",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query review jobs: %w", err)
	}

	for _, rec := range reviews {
		expected := rec.Float("Expected Hours")
		if expected <= 0 {
			expected = defaultExpectedHours
		}
		observations = append(observations, model.Observation{
			ID:        fmt.Sprintf("review-%d", rec.ArtifactID),
			Category:  "review",
			Status:    strings.ToLower(rec.String("Status")),
			Timestamp: rec.Time("Submitted Time"),
			Values: map[string]float64{
				"docs_total":     rec.Float("Doc Count"),
				"docs_errored":   rec.Float("Docs Errored"),
				"expected_hours": expected,
			},
			Attrs: map[string]string{
				"name":      rec.String("Name"),
				"workspace": rec.String("Workspace"),
			},
		})
	}
	s.logger.Debug().Int("count", len(reviews)).Msg("review jobs fetched")

	return observations, nil
}

// JobsRules builds the declarative rule table for the jobs check.
func JobsRules(cfg config.JobsCheckConfig, vocab config.Vocabulary) engine.Ruleset {
	runningStates := []string{"processing", "running", "in progress", "staging"}
	queuedStates := []string{"waiting", "queued"}

	return engine.Ruleset{
		Lookback: time.Duration(cfg.LookbackHours) * time.Hour,
		Categories: map[string]engine.CategoryRules{
			"job": {
				FailureStates: vocab.Failure,
				InProgress:    vocab.InProgress,
				Durations: []engine.DurationRule{
					{
						Name:     "stuck in running state",
						Cutoffs:  cutoffs(cfg.StuckHours),
						Statuses: runningStates,
					},
					{
						Name:     "queued too long",
						Cutoffs:  cutoffs(cfg.QueuedHours),
						Statuses: queuedStates,
					},
				},
			},
			"review": {
				FailureStates: vocab.Failure,
				InProgress:    vocab.InProgress,
				Rates: []engine.RateRule{
					{
						Name:        "error rate",
						Numerator:   "docs_errored",
						Denominator: "docs_total",
						Cutoffs:     cutoffs(cfg.ErrorRate),
					},
				},
				Durations: []engine.DurationRule{
					{
						Name:          "running beyond expected duration",
						Cutoffs:       cutoffs(cfg.StuckMultiple),
						BaselineField: "expected_hours",
						Statuses:      runningStates,
					},
				},
			},
		},
	}
}

// cutoffs converts a config threshold into engine cutoffs.
func cutoffs(t config.Threshold) engine.Cutoffs {
	return engine.Cutoffs{Warning: t.Warning, High: t.High, Critical: t.Critical}
}
