package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"statuswatch/internal/model"
)

// slackColors maps severities to Slack attachment colors.
var slackColors = map[model.Severity]string{
	model.SeverityOK:       "good",
	model.SeverityWarning:  "warning",
	model.SeverityHigh:     "#ff9900",
	model.SeverityCritical: "danger",
}

// SlackNotifier posts run results to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	httpClient *resty.Client
}

// NewSlackNotifier creates a Slack channel notifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// Name implements Notifier.
func (n *SlackNotifier) Name() string {
	return "slack"
}

// Send implements Notifier.
func (n *SlackNotifier) Send(ctx context.Context, result *model.RunResult) error {
	counts := result.Counts()

	payload := map[string]interface{}{
		"attachments": []map[string]interface{}{{
			"color": slackColors[result.Level],
			"title": fmt.Sprintf("%s check: %s", result.Check, result.Level),
			"text":  result.Summary,
			"fields": []map[string]interface{}{
				{"title": "Critical", "value": fmt.Sprintf("%d", counts.Critical), "short": true},
				{"title": "High", "value": fmt.Sprintf("%d", counts.High), "short": true},
				{"title": "Warning", "value": fmt.Sprintf("%d", counts.Warning), "short": true},
				{"title": "Analyzed", "value": fmt.Sprintf("%d", result.Analyzed), "short": true},
			},
			"footer": "statuswatch",
			"ts":     result.Timestamp.Unix(),
		}},
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("slack webhook failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
