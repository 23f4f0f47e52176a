// Package validation wraps go-playground/validator with the portal's custom
// tags and turns the first failing field into a domain validation error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"orcs/pkg/domain"
	dErrors "orcs/pkg/domain-errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("activity", func(fl validator.FieldLevel) bool {
		return domain.KnownActivity(fl.Field().String())
	})
	return v
}

// fieldName reports fields by their JSON name so messages match the payload.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}

var messages = map[string]func(field, param string) string{
	"required": func(f, _ string) string { return f + " is required" },
	"notblank": func(f, _ string) string { return f + " must not be blank" },
	"email":    func(f, _ string) string { return f + " must be a valid email" },
	"url":      func(f, _ string) string { return f + " must be a valid url" },
	"uuid":     func(f, _ string) string { return f + " must be a valid uuid" },
	"min":      func(f, p string) string { return fmt.Sprintf("%s must be at least %s", f, p) },
	"max":      func(f, p string) string { return fmt.Sprintf("%s must be at most %s", f, p) },
	"gte":      func(f, p string) string { return fmt.Sprintf("%s must be greater than or equal to %s", f, p) },
	"oneof":    func(f, p string) string { return fmt.Sprintf("%s must be one of [%s]", f, p) },
	"activity": func(f, _ string) string { return f + " contains an unknown activity" },
}

// Validate checks req against its validate tags.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage describes the first failing field of a validator error.
func ErrorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid request body"
	}
	fe := fieldErrs[0]
	field := fe.Field()
	if field == "" {
		return "invalid request body"
	}
	// dive errors name the element as activities[2]
	if msg, ok := messages[fe.ActualTag()]; ok {
		return msg(field, fe.Param())
	}
	return field + " is invalid"
}
