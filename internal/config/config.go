// Package config provides configuration management for statuswatch.
package config

import "time"

// Config is the root configuration structure for statuswatch.
type Config struct {
	Platform      PlatformConfig      `mapstructure:"platform" validate:"required"`
	Checks        ChecksConfig        `mapstructure:"checks"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Report        ReportConfig        `mapstructure:"report"`
	State         StateConfig         `mapstructure:"state"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	HTTP          HTTPConfig          `mapstructure:"http"`
}

// PlatformConfig contains connection settings for the monitored platform API.
type PlatformConfig struct {
	Host         string        `mapstructure:"host" validate:"required,url"`
	AuthMethod   string        `mapstructure:"auth_method" validate:"oneof=bearer basic"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Threshold defines ascending cutoffs for the three alerting tiers.
// A tier with cutoff 0 is disabled.
type Threshold struct {
	Warning  float64 `mapstructure:"warning" validate:"gte=0"`
	High     float64 `mapstructure:"high" validate:"gte=0"`
	Critical float64 `mapstructure:"critical" validate:"gte=0"`
}

// ChecksConfig contains per-check configurations.
type ChecksConfig struct {
	Jobs   JobsCheckConfig   `mapstructure:"jobs"`
	Agents AgentsCheckConfig `mapstructure:"agents"`
	Audit  AuditCheckConfig  `mapstructure:"audit"`
	API    APICheckConfig    `mapstructure:"api"`
}

// JobsCheckConfig contains configuration for the job queue check.
type JobsCheckConfig struct {
	Enabled       bool      `mapstructure:"enabled"`
	LookbackHours int       `mapstructure:"lookback_hours" validate:"gte=1"`
	StuckHours    Threshold `mapstructure:"stuck_hours"`      // Hours a job may stay in a running state
	StuckMultiple Threshold `mapstructure:"stuck_multiple"`   // Multiples of a job's expected duration
	ErrorRate     Threshold `mapstructure:"error_rate"`       // Errored docs / total docs
	QueuedHours   Threshold `mapstructure:"queued_hours"`     // Hours a job may wait in queue
}

// AgentsCheckConfig contains configuration for the agent health check.
type AgentsCheckConfig struct {
	Enabled         bool      `mapstructure:"enabled"`
	StaleMinutes    Threshold `mapstructure:"stale_minutes"`    // Minutes since last agent activity
	UnhealthyAgents Threshold `mapstructure:"unhealthy_agents"` // Count of disabled/stale agents
}

// AuditCheckConfig contains configuration for the security audit check.
type AuditCheckConfig struct {
	Enabled            bool      `mapstructure:"enabled"`
	LookbackMinutes    int       `mapstructure:"lookback_minutes" validate:"gte=1"`
	FailedLogins       Threshold `mapstructure:"failed_logins"`
	ExportDocs         Threshold `mapstructure:"export_docs"`
	PermissionChanges  Threshold `mapstructure:"permission_changes"`
	BusinessHoursStart int       `mapstructure:"business_hours_start" validate:"gte=0,lte=23"`
	BusinessHoursEnd   int       `mapstructure:"business_hours_end" validate:"gte=0,lte=24"`
	AlertAfterHours    bool      `mapstructure:"alert_after_hours"`
}

// APICheckConfig contains configuration for the API health check.
type APICheckConfig struct {
	Enabled             bool      `mapstructure:"enabled"`
	HealthPath          string    `mapstructure:"health_path"`
	ResponseTimeMS      Threshold `mapstructure:"response_time_ms"`
	ConsecutiveFailures Threshold `mapstructure:"consecutive_failures"`
}

// NotificationsConfig contains notification channel configurations.
type NotificationsConfig struct {
	TopFindings int             `mapstructure:"top_findings" validate:"gte=1"` // Findings rendered into a summary
	Email       EmailConfig     `mapstructure:"email"`
	Slack       WebhookChannel  `mapstructure:"slack"`
	Teams       WebhookChannel  `mapstructure:"teams"`
	PagerDuty   PagerDutyConfig `mapstructure:"pagerduty"`
	Webhook     WebhookChannel  `mapstructure:"webhook"`
}

// EmailConfig contains SMTP delivery settings.
type EmailConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	From         string   `mapstructure:"from"`
	To           []string `mapstructure:"to"`
	SMTPServer   string   `mapstructure:"smtp_server"`
	SMTPPort     int      `mapstructure:"smtp_port" validate:"gte=0,lte=65535"`
	SMTPUsername string   `mapstructure:"smtp_username"`
	SMTPPassword string   `mapstructure:"smtp_password"`
}

// WebhookChannel contains settings for a webhook-delivered channel
// (Slack, Teams, or a generic webhook).
type WebhookChannel struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"omitempty,url"`
}

// PagerDutyConfig contains PagerDuty Events API settings.
type PagerDutyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	RoutingKey string `mapstructure:"routing_key"`
}

// ReportConfig contains configuration for the Excel run report.
type ReportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
	Timezone  string `mapstructure:"timezone"`
}

// StateConfig contains configuration for the persisted check state.
type StateConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig contains configurations for logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// HTTPConfig contains HTTP client configurations including retry settings.
type HTTPConfig struct {
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	MaxRetries int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}
