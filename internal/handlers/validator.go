package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON field names instead of Go struct field names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	return v
}

// FormatValidationError turns validator errors into a field -> message map
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := e.Field()
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s characters", e.Param())
		case "ltefield":
			errs[field] = "Cannot exceed the tank capacity"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}
