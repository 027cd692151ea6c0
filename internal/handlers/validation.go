package handlers

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the `errors` array in a 422 envelope
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Global validator instance (reused across all handlers)
var validate = validator.New()

// ValidateRequest validates a request struct using go-playground/validator.
// It returns the full list of field-level failures, nil when the request is
// valid.
func ValidateRequest(req interface{}) []FieldError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok {
		fieldErrors := make([]FieldError, 0, len(ve))
		for _, fe := range ve {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fe.Field(),
				Message: formatValidationError(fe),
			})
		}
		return fieldErrors
	}

	return []FieldError{{Field: "request", Message: "invalid request"}}
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must be a date in %s format", fe.Param())
	case "longitude":
		return "must be a valid longitude"
	case "latitude":
		return "must be a valid latitude"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
