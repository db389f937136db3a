package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"statuswatch/internal/model"
)

// defaultTopFindings bounds how many findings are rendered into a summary so
// that outbound notification payloads stay bounded regardless of how many
// findings a run produces.
const defaultTopFindings = 3

// Aggregator reduces a findings list into a run result.
type Aggregator struct {
	topFindings int
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAggregator creates an Aggregator. topFindings bounds the summary;
// values below 1 fall back to the default.
func NewAggregator(topFindings int, logger zerolog.Logger) *Aggregator {
	if topFindings < 1 {
		topFindings = defaultTopFindings
	}
	return &Aggregator{
		topFindings: topFindings,
		now:         time.Now,
		logger:      logger.With().Str("component", "aggregator").Logger(),
	}
}

// Aggregate builds the run result for a check: overall level is the lattice
// join of all finding severities (OK when there are none), and the summary
// renders the top findings in fixed bucket order (CRITICAL, HIGH, WARNING),
// preserving classifier emission order within each bucket.
func (a *Aggregator) Aggregate(check string, findings []model.Finding, analyzed int) *model.RunResult {
	result := &model.RunResult{
		Check:     check,
		Level:     model.SeverityOK,
		Findings:  findings,
		Analyzed:  analyzed,
		Timestamp: a.now(),
	}

	for _, f := range findings {
		result.Level = result.Level.Join(f.Severity)
	}

	result.Summary = a.buildSummary(result)

	counts := result.Counts()
	a.logger.Info().
		Str("check", check).
		Str("level", result.Level.String()).
		Int("analyzed", analyzed).
		Int("warning", counts.Warning).
		Int("high", counts.High).
		Int("critical", counts.Critical).
		Msg("aggregation completed")

	return result
}

// buildSummary renders a deterministic, order-stable summary message. A
// healthy run still gets an informative message so callers never special-case
// an empty findings list.
func (a *Aggregator) buildSummary(result *model.RunResult) string {
	if len(result.Findings) == 0 {
		return fmt.Sprintf("%d items analyzed, all healthy", result.Analyzed)
	}

	var reasons []string
	for _, sev := range []model.Severity{model.SeverityCritical, model.SeverityHigh, model.SeverityWarning} {
		for _, f := range result.BySeverity(sev) {
			reasons = append(reasons, f.Reason)
		}
	}

	rendered := reasons
	var suffix string
	if len(reasons) > a.topFindings {
		rendered = reasons[:a.topFindings]
		suffix = fmt.Sprintf(" (+%d more)", len(reasons)-a.topFindings)
	}

	return fmt.Sprintf("%s: %s%s", result.Level, strings.Join(rendered, "; "), suffix)
}
