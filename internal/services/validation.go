package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"cricketbet/internal/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and reports the first
// failure as a validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("invalid request")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Validation(fe.Field() + " is required")
	case "len":
		return apperr.Validation(fmt.Sprintf("%s must be %s characters", fe.Field(), fe.Param()))
	case "min":
		return apperr.Validation(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	case "numeric":
		return apperr.Validation(fe.Field() + " must contain only digits")
	case "oneof":
		return apperr.Validation(fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
	default:
		return apperr.Validation(fe.Field() + " is invalid")
	}
}

type amountRange struct {
	label string
	min   decimal.Decimal
	max   decimal.Decimal
}

var (
	betLimits        = amountRange{"bet amount", decimal.NewFromInt(20), decimal.NewFromInt(5000)}
	depositLimits    = amountRange{"deposit amount", decimal.NewFromInt(50), decimal.NewFromInt(20000)}
	withdrawalLimits = amountRange{"withdrawal amount", decimal.NewFromInt(100), decimal.NewFromInt(50000)}
)

func (r amountRange) check(amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return apperr.Validation(r.label + " may have at most 2 decimal places")
	}
	if amount.LessThan(r.min) || amount.GreaterThan(r.max) {
		return apperr.Validation(fmt.Sprintf("%s must be between %s and %s", r.label, r.min, r.max))
	}
	return nil
}
