package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator creates a validator whose error keys follow the wire
// field names (form tag first, then json tag) rather than Go field names.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}

		return fld.Name
	})

	return v
}

// FormatValidationErrors maps a validator error into the field-keyed
// message map carried by 422 responses.
func FormatValidationErrors(err error) map[string]string {
	out := make(map[string]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["payload"] = "The payload is invalid"
		return out
	}

	for _, e := range verrs {
		field := e.Field()

		switch e.Tag() {
		case "required":
			out[field] = "The " + field + " field is required"
		case "email":
			out[field] = "The " + field + " must be a valid email address"
		case "min":
			out[field] = "The " + field + " must be at least " + e.Param() + " characters"
		case "max":
			out[field] = "The " + field + " may not be greater than " + e.Param() + " characters"
		case "len":
			out[field] = "The " + field + " must be " + e.Param() + " characters"
		case "oneof":
			out[field] = "The selected " + field + " is invalid"
		case "url":
			out[field] = "The " + field + " must be a valid URL"
		case "numeric":
			out[field] = "The " + field + " must be a number"
		default:
			out[field] = "The " + field + " is invalid"
		}
	}

	return out
}
