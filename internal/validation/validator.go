// Package validation checks request bodies with validator/v10 and turns
// failures into VALIDATION errors keyed by JSON field name.
package validation

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// Validator validates structs tagged with `validate`.
//
// Besides the built-in tags it understands:
//
//	notblank  string is not empty after trimming whitespace
//	genre     a known genre label or "Uncategorized"
//	theme     "light" or "dark"
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return strings.EqualFold(name, domain.GenreUncategorized) || genre.IsLabel(name)
	})
	_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return domain.Theme(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate returns nil, or a VALIDATION error whose Details map each
// failing field to a readable problem.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	details := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Field()] = describe(fe)
	}
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	return domainerrors.ValidationWithDetails("validation failed: "+strings.Join(fields, ", "), details)
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return "must not exceed " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "http_url", "url":
		return "must be an http(s) URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "genre":
		return "must be a known genre"
	case "theme":
		return "must be light or dark"
	default:
		return "is invalid"
	}
}
