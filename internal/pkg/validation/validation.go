// Package validation runs struct-tag validation and renders failures as
// per-field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/insbu/portal/internal/pkg/apperr"
)

const message = "The given data was invalid."

var (
	validate *validator.Validate
	once     sync.Once
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v and returns an apperr validation error with one message per field.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Internal("validation failed", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = describe(fe)
		}
	}
	return apperr.Validation(message, fields)
}

// Field builds a validation error for a single field.
func Field(field, msg string) error {
	return apperr.Validation(message, map[string]string{field: msg})
}

func describe(fe validator.FieldError) string {
	f := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", f)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", f)
	case "url":
		return fmt.Sprintf("The %s format is invalid.", f)
	case "min":
		return fmt.Sprintf("The %s must be at least %s characters.", f, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", f)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", f)
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", f, fe.Param())
	}
	return fmt.Sprintf("The %s is invalid.", f)
}
