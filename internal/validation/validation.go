// Package validation checks request messages against their struct tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	// ErrValidationFailed wraps every validation error returned by Struct.
	ErrValidationFailed = errors.New("validation failed")

	// ErrValidatorInit is returned when custom rule registration fails.
	ErrValidatorInit = errors.New("validator initialization failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
	errValidate  error
)

func initValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	vld.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// decimal.Decimal is read directly; registering a custom type func that
	// returns the same type would loop.
	if err := vld.RegisterValidation("positive_decimal", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		return ok && d.IsPositive()
	}); err != nil {
		return nil, fmt.Errorf("%w: positive_decimal: %w", ErrValidatorInit, err)
	}

	return vld, nil
}

// Struct validates v, returning the first failing field wrapped in
// ErrValidationFailed.
func Struct(v any) error {
	validateOnce.Do(func() {
		validate, errValidate = initValidator()
	})
	if errValidate != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, errValidate)
	}

	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", ErrValidationFailed, describe(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required", field)
	case "email":
		return fmt.Sprintf("'%s' must be a valid email", field)
	case "min":
		return fmt.Sprintf("'%s' must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("'%s' must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of [%s]", field, fe.Param())
	case "positive_decimal":
		return fmt.Sprintf("'%s' must be a positive amount", field)
	default:
		return fmt.Sprintf("'%s' failed on '%s'", field, fe.Tag())
	}
}
