package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"statuswatch/internal/model"
)

// WebhookNotifier posts run results as JSON to a generic webhook, for
// integrations without a dedicated channel.
type WebhookNotifier struct {
	url        string
	httpClient *resty.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
}

// Name implements Notifier.
func (n *WebhookNotifier) Name() string {
	return "webhook"
}

// Send implements Notifier.
func (n *WebhookNotifier) Send(ctx context.Context, result *model.RunResult) error {
	payload := map[string]interface{}{
		"monitor":   "statuswatch",
		"check":     result.Check,
		"level":     result.Level.String(),
		"summary":   result.Summary,
		"counts":    result.Counts(),
		"findings":  result.Findings,
		"analyzed":  result.Analyzed,
		"timestamp": result.Timestamp,
	}

	resp, err := n.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("webhook failed: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
