package config

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// headerNameRe matches RFC 7230 header field names.
var headerNameRe = regexp.MustCompile(`^[!#$%&'*+\-.^_` + "`" + `|~0-9A-Za-z]+$`)

// Validator validates configuration values using go-playground/validator
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterValidation("header_name", validateHeaderName)

	return &Validator{
		validate: v,
	}
}

// Validate validates a complete configuration
func (v *Validator) Validate(config *Config) error {
	if err := v.validate.Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				return ValidationError{
					Field:   e.Field(),
					Message: fmt.Sprintf("validation failed on tag '%s' with value '%v'", e.Tag(), e.Value()),
					Value:   e.Value(),
				}
			}
		}
		return err
	}
	return nil
}

// ValidationError reports a single invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration field '%s': %s", e.Field, e.Message)
}

// validateHeaderName validates HTTP header field names
func validateHeaderName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Allow empty, will be filled by defaults
	}
	return headerNameRe.MatchString(value)
}
