// Package notify delivers run results over the configured notification
// channels. It defines the Notifier interface and a Dispatcher that fans a
// result out to every enabled channel, tolerating per-channel failures.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"statuswatch/internal/config"
	"statuswatch/internal/model"
)

// Notifier delivers a run result over one channel. Implementations own all
// channel-specific formatting and transport.
type Notifier interface {
	// Name returns the channel identifier used in logs.
	Name() string

	// Send delivers the result. Errors are reported to the dispatcher for
	// logging; they never stop other channels from sending.
	Send(ctx context.Context, result *model.RunResult) error
}

// Dispatcher fans a run result out to every registered channel.
type Dispatcher struct {
	notifiers []Notifier
	dryRun    bool
	logger    zerolog.Logger
}

// NewDispatcher builds a Dispatcher with the channels enabled in the
// configuration. With dryRun set, Dispatch logs the would-be alert instead
// of sending anything.
func NewDispatcher(cfg *config.NotificationsConfig, dryRun bool, logger zerolog.Logger) *Dispatcher {
	d := &Dispatcher{
		dryRun: dryRun,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}

	if cfg.Slack.Enabled && cfg.Slack.URL != "" {
		d.notifiers = append(d.notifiers, NewSlackNotifier(cfg.Slack.URL))
	}
	if cfg.Teams.Enabled && cfg.Teams.URL != "" {
		d.notifiers = append(d.notifiers, NewTeamsNotifier(cfg.Teams.URL))
	}
	if cfg.PagerDuty.Enabled && cfg.PagerDuty.RoutingKey != "" {
		d.notifiers = append(d.notifiers, NewPagerDutyNotifier(cfg.PagerDuty.RoutingKey))
	}
	if cfg.Webhook.Enabled && cfg.Webhook.URL != "" {
		d.notifiers = append(d.notifiers, NewWebhookNotifier(cfg.Webhook.URL))
	}
	if cfg.Email.Enabled && cfg.Email.SMTPServer != "" {
		d.notifiers = append(d.notifiers, NewEmailNotifier(cfg.Email))
	}

	return d
}

// Register adds a notifier. Used by tests and custom channel wiring.
func (d *Dispatcher) Register(n Notifier) {
	d.notifiers = append(d.notifiers, n)
}

// Channels returns the names of the registered channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Dispatch sends the result to every registered channel. One channel failing
// never prevents the others from sending; failures are logged and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, result *model.RunResult) {
	if d.dryRun {
		d.logger.Info().
			Str("check", result.Check).
			Str("level", result.Level.String()).
			Str("summary", result.Summary).
			Msg("dry run: would send alert")
		return
	}

	for _, n := range d.notifiers {
		if err := n.Send(ctx, result); err != nil {
			d.logger.Error().
				Err(err).
				Str("channel", n.Name()).
				Str("check", result.Check).
				Msg("notification failed")
			continue
		}
		d.logger.Info().
			Str("channel", n.Name()).
			Str("check", result.Check).
			Str("level", result.Level.String()).
			Msg("notification sent")
	}
}
