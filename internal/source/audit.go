package source

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/client/platform"
	"statuswatch/internal/config"
	"statuswatch/internal/engine"
	"statuswatch/internal/model"
)

// auditRecordType is the audit record object type.
const auditRecordType = 1000026

// auditVocabulary maps audit action texts to observation categories.
var auditVocabulary = map[string][]string{
	"login-failure":     {"login failed", "authentication failed"},
	"export":            {"export", "download"},
	"lockbox":           {"lockbox", "lock box"},
	"mass-operation":    {"mass delete", "mass edit", "mass move", "mass copy"},
	"permission-change": {"group created", "group modified", "group deleted", "permission"},
}

// docCountPattern extracts a document count from free-form audit details.
var docCountPattern = regexp.MustCompile(`(\d+)\s*(?:documents?|docs?|items?)`)

// AuditSource observes the security audit log: failed logins, exports,
// lockbox changes, mass operations, and permission changes.
type AuditSource struct {
	client   *platform.Client
	lookback time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuditSource creates the observation source for the audit check.
// lookback bounds the audit query window.
func NewAuditSource(client *platform.Client, lookback time.Duration, logger zerolog.Logger) *AuditSource {
	return &AuditSource{
		client:   client,
		lookback: lookback,
		logger:   logger.With().Str("component", "audit-source").Logger(),
		now:      time.Now,
	}
}

// Fetch queries recent audit records and maps them to observations. Exports,
// lockbox changes, and mass operations become per-event observations; failed
// logins and permission changes are rolled up into summary observations that
// carry the event count, since their thresholds grade volume rather than any
// single event.
func (s *AuditSource) Fetch(ctx context.Context) ([]model.Observation, error) {
	since := s.now().Add(-s.lookback).UTC()
	records, err := s.client.QueryObjects(ctx, platform.ObjectQuery{
		ArtifactTypeID: auditRecordType,
		Fields:         []string{"Action", "User Name", "Timestamp", "Details", "Object Name", "Workspace"},
		Condition:      fmt.Sprintf("'Timestamp' >= '%s'", since.Format("2006-01-02T15:04:05Z")),
		SortField:      "Timestamp",
		Length:         1000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}

	var observations []model.Observation
	failedLogins := 0
	permissionChanges := 0

	for _, rec := range records {
		action := rec.String("Action")
		category := categorizeAction(action)
		if category == "" {
			continue
		}

		switch category {
		case "login-failure":
			failedLogins++
		case "permission-change":
			permissionChanges++
		case "export":
			observations = append(observations, model.Observation{
				ID:        fmt.Sprintf("audit-%d", rec.ArtifactID),
				Category:  "export",
				Status:    strings.ToLower(action),
				Timestamp: rec.Time("Timestamp"),
				Values:    map[string]float64{"documents": extractDocCount(rec.String("Details"))},
				Attrs: map[string]string{
					"user":      rec.String("User Name"),
					"workspace": rec.String("Workspace"),
				},
			})
		default: // lockbox, mass-operation
			observations = append(observations, model.Observation{
				ID:        fmt.Sprintf("audit-%d", rec.ArtifactID),
				Category:  category,
				Status:    strings.ToLower(action),
				Timestamp: rec.Time("Timestamp"),
				Attrs: map[string]string{
					"user":      rec.String("User Name"),
					"workspace": rec.String("Workspace"),
				},
			})
		}
	}

	observations = append(observations,
		model.Observation{
			ID:       "failed-logins",
			Category: "login-failure",
			Status:   "ok",
			Values:   map[string]float64{"count": float64(failedLogins)},
		},
		model.Observation{
			ID:       "permission-changes",
			Category: "permission-change",
			Status:   "ok",
			Values:   map[string]float64{"count": float64(permissionChanges)},
		},
	)

	s.logger.Debug().
		Int("records", len(records)).
		Int("failed_logins", failedLogins).
		Int("permission_changes", permissionChanges).
		Msg("audit records fetched")
	return observations, nil
}

// categorizeAction maps an audit action text to its observation category,
// or "" when the action is not security-relevant.
func categorizeAction(action string) string {
	lower := strings.ToLower(action)
	for category, vocabulary := range auditVocabulary {
		for _, v := range vocabulary {
			if strings.Contains(lower, v) {
				return category
			}
		}
	}
	return ""
}

// extractDocCount pulls a document count out of free-form details text.
// Details without a recognizable count read as zero.
func extractDocCount(details string) float64 {
	match := docCountPattern.FindStringSubmatch(strings.ToLower(details))
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return float64(n)
}

// AuditRules builds the declarative rule table for the audit check. The
// query itself bounds the lookback window, so the ruleset applies none.
func AuditRules(cfg config.AuditCheckConfig) engine.Ruleset {
	exportRules := engine.CategoryRules{
		Counts: []engine.CountRule{
			{
				Name:    "large export",
				Field:   "documents",
				Cutoffs: cutoffs(cfg.ExportDocs),
			},
		},
	}
	if cfg.AlertAfterHours {
		exportRules.AfterHours = &engine.AfterHoursRule{
			StartHour: cfg.BusinessHoursStart,
			EndHour:   cfg.BusinessHoursEnd,
			Severity:  model.SeverityHigh,
		}
	}

	return engine.Ruleset{
		Categories: map[string]engine.CategoryRules{
			"export": exportRules,
			"login-failure": {
				Counts: []engine.CountRule{
					{
						Name:    "failed logins",
						Field:   "count",
						Cutoffs: cutoffs(cfg.FailedLogins),
					},
				},
			},
			"permission-change": {
				Counts: []engine.CountRule{
					{
						Name:    "permission changes",
						Field:   "count",
						Cutoffs: cutoffs(cfg.PermissionChanges),
					},
				},
			},
			"lockbox": {
				Presence: &engine.PresenceRule{
					Reason:   "lockbox modification",
					Severity: model.SeverityCritical,
				},
			},
			"mass-operation": {
				Presence: &engine.PresenceRule{
					Reason:   "mass operation",
					Severity: model.SeverityHigh,
				},
			},
		},
	}
}
