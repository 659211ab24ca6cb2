// Package validation checks request payloads and single values with
// go-playground/validator and reports failures as apperr validation errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/umorjyoti/simplifly/internal/apperr"
)

// Validator implements echo.Validator
type Validator struct {
	v *validator.Validate
}

// New creates a validator that names fields by their json tag
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return &Validator{v: v}
}

// Validate checks the `validate` tags of a struct
func (v *Validator) Validate(i any) error {
	return translate(v.v.Struct(i), "")
}

// Var checks a single value against tag. label names the value in the error.
func (v *Validator) Var(label string, value any, tag string) error {
	return translate(v.v.Var(value, tag), label)
}

// Email reports whether s is a bare email address
func (v *Validator) Email(s string) error {
	return v.Var("email", s, "required,email")
}

func translate(err error, label string) error {
	if err == nil {
		return nil
	}
	var verr validator.ValidationErrors
	if !errors.As(err, &verr) {
		return err
	}

	msgs := make([]string, 0, len(verr))
	for _, fe := range verr {
		field := fe.Field()
		if field == "" {
			field = label
		}
		msgs = append(msgs, message(field, fe))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
