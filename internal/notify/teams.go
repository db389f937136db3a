package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"statuswatch/internal/model"
)

// teamsColors maps severities to MessageCard theme colors.
var teamsColors = map[model.Severity]string{
	model.SeverityOK:       "00ff00",
	model.SeverityWarning:  "ffff00",
	model.SeverityHigh:     "ff9900",
	model.SeverityCritical: "ff0000",
}

// TeamsNotifier posts run results to a Microsoft Teams incoming webhook.
type TeamsNotifier struct {
	webhookURL string
	httpClient *resty.Client
}

// NewTeamsNotifier creates a Teams channel notifier.
func NewTeamsNotifier(webhookURL string) *TeamsNotifier {
	return &TeamsNotifier{
		webhookURL: webhookURL,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// Name implements Notifier.
func (n *TeamsNotifier) Name() string {
	return "teams"
}

// Send implements Notifier.
func (n *TeamsNotifier) Send(ctx context.Context, result *model.RunResult) error {
	counts := result.Counts()

	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": teamsColors[result.Level],
		"summary":    fmt.Sprintf("%s check: %s", result.Check, result.Level),
		"sections": []map[string]interface{}{{
			"activityTitle": fmt.Sprintf("%s check: %s", result.Check, result.Level),
			"facts": []map[string]string{
				{"name": "Summary", "value": result.Summary},
				{"name": "Critical", "value": fmt.Sprintf("%d", counts.Critical)},
				{"name": "High", "value": fmt.Sprintf("%d", counts.High)},
				{"name": "Warning", "value": fmt.Sprintf("%d", counts.Warning)},
			},
			"markdown": true,
		}},
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.webhookURL)
	if err != nil {
		return fmt.Errorf("teams webhook failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("teams webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
