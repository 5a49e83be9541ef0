// Package inventory loads and validates the host inventory file.
package inventory

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single invalid inventory field with a
// user-friendly message.
type ValidationError struct {
	Field   string      // Field path (e.g., "gateway-01.connection.hostname")
	Tag     string      // Validation tag that failed (e.g., "required")
	Value   interface{} // Actual value that failed validation
	Message string      // User-friendly error message
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors is a collection of validation errors for one or more hosts.
type ValidationErrors []*ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("inventory validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// validate is the package-level validator instance.
var validate = validator.New()

// ValidateProfile checks a single host profile. A profile that fails
// validation must not be handed to the session manager.
func ValidateProfile(p *HostProfile) error {
	var validationErrors ValidationErrors

	if err := validate.Struct(p); err != nil {
		if fieldErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range fieldErrors {
				validationErrors = append(validationErrors, &ValidationError{
					Field:   formatFieldName(p.Name, fe.Namespace()),
					Tag:     fe.Tag(),
					Value:   fe.Value(),
					Message: translateError(fe),
				})
			}
		}
	}

	validationErrors = append(validationErrors, validateServiceNames(p)...)

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// Validate checks every host profile in the inventory.
func (inv *Inventory) Validate() error {
	var validationErrors ValidationErrors
	for _, p := range inv.Hosts {
		if err := ValidateProfile(p); err != nil {
			if errs, ok := err.(ValidationErrors); ok {
				validationErrors = append(validationErrors, errs...)
			}
		}
	}
	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// validateServiceNames rejects service names that would break the remote
// command line they are interpolated into.
func validateServiceNames(p *HostProfile) ValidationErrors {
	var errors ValidationErrors
	for _, svc := range p.Services.SystemdServices {
		if svc == "" || strings.ContainsAny(svc, " \t\n\"'") {
			errors = append(errors, &ValidationError{
				Field:   fmt.Sprintf("%s.services.systemd_services", p.Name),
				Tag:     "service_name",
				Value:   svc,
				Message: fmt.Sprintf("invalid systemd service name: %q", svc),
			})
		}
	}
	return errors
}

// formatFieldName converts the validator field namespace to a user-friendly
// path rooted at the host name.
// Example: "HostProfile.Connection.Hostname" -> "gateway-01.connection.hostname"
func formatFieldName(host, namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // Remove "HostProfile"
	}
	for i, part := range parts {
		parts[i] = strings.ToLower(part)
	}
	return host + "." + strings.Join(parts, ".")
}

// translateError converts a validator.FieldError to a user-friendly message.
func translateError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "gte":
		return fmt.Sprintf("value must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("value must be less than or equal to %s", fe.Param())
	case "hexadecimal":
		return fmt.Sprintf("value must be hexadecimal: %v", fe.Value())
	case "len":
		return fmt.Sprintf("value must be exactly %s characters: %v", fe.Param(), fe.Value())
	case "alphanum":
		return fmt.Sprintf("value must be alphanumeric: %v", fe.Value())
	default:
		return fmt.Sprintf("validation failed on '%s' tag", fe.Tag())
	}
}
