package gateway

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfigField represents a required configuration field for the gateway
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "boolean"
	Description string `json:"description"`
	Example     string `json:"example"`
	Pattern     string `json:"pattern,omitempty"`   // regex pattern for validation
	MinLength   int    `json:"minLength,omitempty"` // minimum length for string fields
	MaxLength   int    `json:"maxLength,omitempty"` // maximum length for string fields
}

// RequiredConfig returns the configuration fields a Gateway needs at
// construction.
func RequiredConfig() []ConfigField {
	return []ConfigField{
		{
			Key:         "publicMerchantId",
			Required:    true,
			Type:        "string",
			Description: "Public merchant credential issued by the gateway",
			Example:     "10000002036955013614148494909956",
			MinLength:   8,
			MaxLength:   40,
		},
		{
			Key:         "currency",
			Required:    true,
			Type:        "string",
			Description: "ISO 4217 settlement currency",
			Example:     "USD",
			Pattern:     "^[A-Z]{3}$",
		},
		{
			Key:         "environment",
			Required:    true,
			Type:        "string",
			Description: "Target gateway deployment (sandbox or production)",
			Example:     "sandbox",
			Pattern:     "^(sandbox|production)$",
		},
	}
}

// ValidateConfigFields validates configuration against provided field definitions
func ValidateConfigFields(config map[string]string, requiredFields []ConfigField) error {
	for _, field := range requiredFields {
		if !field.Required {
			continue
		}

		value, exists := config[field.Key]
		if !exists {
			return fmt.Errorf("gateway: required field '%s' is missing", field.Key)
		}

		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("gateway: required field '%s' cannot be empty", field.Key)
		}

		if err := validateFieldPattern(field, value); err != nil {
			return err
		}

		if err := validateFieldLength(field, value); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldPattern validates field against regex pattern
func validateFieldPattern(field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	if field.Key == "environment" {
		validEnvs := []string{string(EnvironmentSandbox), string(EnvironmentProduction)}
		for _, env := range validEnvs {
			if value == env {
				return nil
			}
		}
		return fmt.Errorf("gateway: environment must be one of: %s", strings.Join(validEnvs, ", "))
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("gateway: invalid pattern for field '%s': %v", field.Key, err)
	}

	if !matched {
		return fmt.Errorf("gateway: field '%s' does not match required pattern", field.Key)
	}

	return nil
}

// validateFieldLength validates field length constraints
func validateFieldLength(field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return fmt.Errorf("gateway: field '%s' must be at least %d characters", field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return fmt.Errorf("gateway: field '%s' must not exceed %d characters", field.Key, field.MaxLength)
	}

	return nil
}
