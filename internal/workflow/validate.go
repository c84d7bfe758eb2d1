package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError names one field that failed validation.
type FieldError struct {
	Path string // e.g. "trigger.conditions[0].operator"
	Rule string // "notblank" or "operator"
}

func (e FieldError) String() string {
	switch e.Rule {
	case "notblank":
		return e.Path + " is required"
	case "operator":
		return e.Path + " must be one of contains, equals, starts_with, ends_with"
	default:
		return e.Path + " is invalid"
	}
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid automation: " + strings.Join(parts, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func modelValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("operator", func(fl validator.FieldLevel) bool {
			return Operator(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate checks the required parts of the model: non-blank trigger
// service and event, non-blank action service and operation, and for each
// condition a non-blank field and a known operator.
func (a Automation) Validate() error {
	err := modelValidator().Struct(a)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating automation: %w", err)
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		// Namespace is "Automation.trigger.service"; drop the type name.
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		out.Fields = append(out.Fields, FieldError{Path: path, Rule: fe.Tag()})
	}
	return out
}
