package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"statuswatch/internal/model"
)

// pagerDutyEventsURL is the PagerDuty Events API v2 endpoint.
const pagerDutyEventsURL = "https://events.pagerduty.com/v2/enqueue"

// pagerDutySeverities maps severities to PagerDuty event severities.
var pagerDutySeverities = map[model.Severity]string{
	model.SeverityOK:       "info",
	model.SeverityWarning:  "warning",
	model.SeverityHigh:     "error",
	model.SeverityCritical: "critical",
}

// PagerDutyNotifier sends run results as PagerDuty Events API v2 events.
// OK runs resolve the check's incident; anything else triggers it.
type PagerDutyNotifier struct {
	routingKey string
	endpoint   string
	httpClient *resty.Client
}

// NewPagerDutyNotifier creates a PagerDuty channel notifier.
func NewPagerDutyNotifier(routingKey string) *PagerDutyNotifier {
	return &PagerDutyNotifier{
		routingKey: routingKey,
		endpoint:   pagerDutyEventsURL,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// Name implements Notifier.
func (n *PagerDutyNotifier) Name() string {
	return "pagerduty"
}

// Send implements Notifier.
func (n *PagerDutyNotifier) Send(ctx context.Context, result *model.RunResult) error {
	action := "trigger"
	if result.Level == model.SeverityOK {
		action = "resolve"
	}

	counts := result.Counts()
	payload := map[string]interface{}{
		"routing_key":  n.routingKey,
		"event_action": action,
		"dedup_key":    "statuswatch-" + result.Check,
		"payload": map[string]interface{}{
			"summary":  fmt.Sprintf("%s: %s", result.Check, result.Summary),
			"source":   "statuswatch",
			"severity": pagerDutySeverities[result.Level],
			"custom_details": map[string]interface{}{
				"critical": counts.Critical,
				"high":     counts.High,
				"warning":  counts.Warning,
				"analyzed": result.Analyzed,
			},
		},
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.endpoint)
	if err != nil {
		return fmt.Errorf("pagerduty event failed: %w", err)
	}
	if resp.StatusCode() != http.StatusAccepted && resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("pagerduty returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
