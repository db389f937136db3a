// Package config provides configuration management for statuswatch.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified YAML file and environment
// variables. Environment variables take precedence over file values.
// Environment variable format: STATUSWATCH_<SECTION>_<KEY>
// (e.g. STATUSWATCH_PLATFORM_CLIENT_SECRET).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults first
	setDefaults(v)

	// Configure environment variable binding
	v.SetEnvPrefix("STATUSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default values for all configuration options.
// Threshold defaults follow long-standing operational baselines.
func setDefaults(v *viper.Viper) {
	// Platform defaults
	v.SetDefault("platform.auth_method", "bearer")
	v.SetDefault("platform.timeout", 60*time.Second)

	// Jobs check defaults
	v.SetDefault("checks.jobs.enabled", true)
	v.SetDefault("checks.jobs.lookback_hours", 24)
	v.SetDefault("checks.jobs.stuck_hours.warning", 4)
	v.SetDefault("checks.jobs.stuck_hours.high", 8)
	v.SetDefault("checks.jobs.stuck_hours.critical", 24)
	v.SetDefault("checks.jobs.stuck_multiple.warning", 2.0)
	v.SetDefault("checks.jobs.stuck_multiple.high", 4.0)
	v.SetDefault("checks.jobs.stuck_multiple.critical", 8.0)
	v.SetDefault("checks.jobs.error_rate.warning", 0.05)
	v.SetDefault("checks.jobs.error_rate.high", 0.10)
	v.SetDefault("checks.jobs.error_rate.critical", 0.20)
	v.SetDefault("checks.jobs.queued_hours.warning", 2)

	// Agents check defaults
	v.SetDefault("checks.agents.enabled", true)
	v.SetDefault("checks.agents.stale_minutes.warning", 30)
	v.SetDefault("checks.agents.stale_minutes.high", 60)
	v.SetDefault("checks.agents.stale_minutes.critical", 120)
	v.SetDefault("checks.agents.unhealthy_agents.warning", 1)
	v.SetDefault("checks.agents.unhealthy_agents.high", 2)
	v.SetDefault("checks.agents.unhealthy_agents.critical", 3)

	// Audit check defaults
	v.SetDefault("checks.audit.enabled", true)
	v.SetDefault("checks.audit.lookback_minutes", 15)
	v.SetDefault("checks.audit.failed_logins.warning", 5)
	v.SetDefault("checks.audit.failed_logins.high", 20)
	v.SetDefault("checks.audit.failed_logins.critical", 50)
	v.SetDefault("checks.audit.export_docs.warning", 1000)
	v.SetDefault("checks.audit.export_docs.high", 5000)
	v.SetDefault("checks.audit.export_docs.critical", 10000)
	v.SetDefault("checks.audit.permission_changes.warning", 5)
	v.SetDefault("checks.audit.business_hours_start", 7)
	v.SetDefault("checks.audit.business_hours_end", 19)
	v.SetDefault("checks.audit.alert_after_hours", true)

	// API check defaults
	v.SetDefault("checks.api.enabled", true)
	v.SetDefault("checks.api.health_path", "/api/health")
	v.SetDefault("checks.api.response_time_ms.warning", 2000)
	v.SetDefault("checks.api.response_time_ms.high", 5000)
	v.SetDefault("checks.api.response_time_ms.critical", 10000)
	v.SetDefault("checks.api.consecutive_failures.warning", 1)
	v.SetDefault("checks.api.consecutive_failures.high", 2)
	v.SetDefault("checks.api.consecutive_failures.critical", 3)

	// Notification defaults
	v.SetDefault("notifications.top_findings", 3)
	v.SetDefault("notifications.email.smtp_port", 587)

	// Report defaults
	v.SetDefault("report.enabled", false)
	v.SetDefault("report.output_dir", "./reports")
	v.SetDefault("report.timezone", "UTC")

	// State defaults
	v.SetDefault("state.dir", "/tmp/statuswatch")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// HTTP retry defaults
	v.SetDefault("http.retry.max_retries", 3)
	v.SetDefault("http.retry.base_delay", 1*time.Second)
}
