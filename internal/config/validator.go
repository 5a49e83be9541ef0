// Package config provides configuration management for the diagnostics tool.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error with user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "thresholds.usage")
	Tag     string      // Validation tag that failed (e.g., "required", "url")
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
	if errs := validateNotify(cfg); len(errs) > 0 {
		validationErrors = append(validationErrors, errs...)
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// validateThresholds validates that the warning threshold sits below critical.
func validateThresholds(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Thresholds.Usage.Warning >= cfg.Thresholds.Usage.Critical {
		errors = append(errors, &ValidationError{
			Field:   "thresholds.usage",
			Tag:     "threshold_order",
			Value:   fmt.Sprintf("warning=%v, critical=%v", cfg.Thresholds.Usage.Warning, cfg.Thresholds.Usage.Critical),
			Message: fmt.Sprintf("warning threshold (%.2f) must be less than critical threshold (%.2f)", cfg.Thresholds.Usage.Warning, cfg.Thresholds.Usage.Critical),
		})
	}

	return errors
}

// validateNotify validates that an enabled webhook carries a target URL.
func validateNotify(cfg *Config) ValidationErrors {
	var errors ValidationErrors

	if cfg.Notify.Enabled && cfg.Notify.WebhookURL == "" {
		errors = append(errors, &ValidationError{
			Field:   "notify.webhook_url",
			Tag:     "required_when_enabled",
			Value:   "",
			Message: "webhook_url is required when notifications are enabled",
		})
	}

	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly format.
// Example: "Config.Notify.WebhookURL" -> "notify.webhookurl"
func formatFieldName(namespace string) string {
	// Remove the root struct name (e.g., "Config.")
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
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
	case "gt":
		return fmt.Sprintf("value must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("value must be one of: %s", fe.Param())
	case "dive":
		return fmt.Sprintf("invalid value in list: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag for field '%s'", fe.Tag(), field)
	}
}
