// Package config provides configuration management for statuswatch.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g. "platform.host")
	Tag     string      // Validation tag that failed (e.g. "required", "url")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate = validator.New()

// Validate validates the configuration and returns user-friendly error messages.
func Validate(cfg *Config) error {
	var validationErrors ValidationErrors

	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	// Run custom business logic validations
	if errs := validateThresholds(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}
	if errs := validateAuth(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}
	if errs := validateBusinessHours(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}
	if errs := validateTimezoneConfig(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

// validateThresholds validates that enabled cutoffs are strictly ascending
// (warning < high < critical). A tier with cutoff 0 is disabled and skipped.
func validateThresholds(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	thresholds := []struct {
		name string
		t    Threshold
	}{
		{"checks.jobs.stuck_hours", cfg.Checks.Jobs.StuckHours},
		{"checks.jobs.stuck_multiple", cfg.Checks.Jobs.StuckMultiple},
		{"checks.jobs.error_rate", cfg.Checks.Jobs.ErrorRate},
		{"checks.jobs.queued_hours", cfg.Checks.Jobs.QueuedHours},
		{"checks.agents.stale_minutes", cfg.Checks.Agents.StaleMinutes},
		{"checks.agents.unhealthy_agents", cfg.Checks.Agents.UnhealthyAgents},
		{"checks.audit.failed_logins", cfg.Checks.Audit.FailedLogins},
		{"checks.audit.export_docs", cfg.Checks.Audit.ExportDocs},
		{"checks.audit.permission_changes", cfg.Checks.Audit.PermissionChanges},
		{"checks.api.response_time_ms", cfg.Checks.API.ResponseTimeMS},
		{"checks.api.consecutive_failures", cfg.Checks.API.ConsecutiveFailures},
	}

	for _, th := range thresholds {
		prev := 0.0
		for _, tier := range []struct {
			name  string
			value float64
		}{
			{"warning", th.t.Warning},
			{"high", th.t.High},
			{"critical", th.t.Critical},
		} {
			if tier.value <= 0 {
				continue // tier disabled
			}
			if tier.value <= prev {
				errors = append(errors, &ValidationError{
					Field:   th.name,
					Tag:     "threshold_order",
					Value:   fmt.Sprintf("%s=%v", tier.name, tier.value),
					Message: fmt.Sprintf("cutoffs must be strictly ascending, %s (%.2f) is not above the previous tier (%.2f)", tier.name, tier.value, prev),
				})
				break
			}
			prev = tier.value
		}
	}

	return errors
}

// validateAuth validates that the credentials required by the selected auth
// method are present.
func validateAuth(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	switch cfg.Platform.AuthMethod {
	case "bearer":
		if cfg.Platform.ClientID == "" || cfg.Platform.ClientSecret == "" {
			errors = append(errors, &ValidationError{
				Field:   "platform.client_id",
				Tag:     "required_with_bearer",
				Value:   "",
				Message: "client_id and client_secret are required when auth_method is bearer",
			})
		}
	case "basic":
		if cfg.Platform.Username == "" || cfg.Platform.Password == "" {
			errors = append(errors, &ValidationError{
				Field:   "platform.username",
				Tag:     "required_with_basic",
				Value:   "",
				Message: "username and password are required when auth_method is basic",
			})
		}
	}

	return errors
}

// validateBusinessHours validates the after-hours window.
func validateBusinessHours(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	audit := cfg.Checks.Audit
	if audit.BusinessHoursStart >= audit.BusinessHoursEnd {
		errors = append(errors, &ValidationError{
			Field:   "checks.audit.business_hours_start",
			Tag:     "hours_order",
			Value:   fmt.Sprintf("start=%d, end=%d", audit.BusinessHoursStart, audit.BusinessHoursEnd),
			Message: fmt.Sprintf("business_hours_start (%d) must be before business_hours_end (%d)", audit.BusinessHoursStart, audit.BusinessHoursEnd),
		})
	}

	return errors
}

// validateTimezoneConfig validates the report timezone.
func validateTimezoneConfig(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Report.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "report.timezone",
				Tag:     "timezone",
				Value:   cfg.Report.Timezone,
				Message: fmt.Sprintf("invalid timezone: %s", cfg.Report.Timezone),
			})
		}
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Platform.Host" -> "platform.host"
func formatFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "Config"
	}

	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}

	return strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	field := formatFieldName(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "url":
		return fmt.Sprintf("invalid URL format: %v", fe.Value())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
