package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldErrors converts binding errors into a field-keyed message map so all
// failed fields are reported at once.
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			fields[fieldName(fieldError.Field())] = fieldErrorMessage(fieldError)
		}
		return fields
	}
	fields["body"] = err.Error()
	return fields
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or greater", fe.Param())
	case "lte":
		return fmt.Sprintf("must be %s or less", fe.Param())
	default:
		return "is not valid"
	}
}

func fieldName(field string) string {
	// Field() reports the Go struct field; the API speaks snake_case.
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
