package scoped

import (
	"errors"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wadjakorntonsri/linkvault/pkg/core/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("tagcolor", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.TagColors, fl.Field().String())
	})
	return v
}

// validateStruct turns the first validator failure into a domain.ValidationError.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fe.Field(), Reason: reason(fe)}
	}
	return &domain.ValidationError{Reason: err.Error()}
}

func validateVar(field string, v any, tag string) error {
	if err := validate.Var(v, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &domain.ValidationError{Field: field, Reason: reason(fieldErrs[0])}
		}
		return &domain.ValidationError{Field: field, Reason: err.Error()}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be at most " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "tagcolor":
		return "must be one of: " + strings.Join(domain.TagColors, " ")
	default:
		return "failed " + fe.Tag()
	}
}
