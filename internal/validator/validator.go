// Package validator checks weather queries before any request reaches the upstream API.
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/weatherlog/internal/model"
	"github.com/go-playground/validator/v10"
)

const (
	reasonCountry = "Country code must be exactly 2 letters."
	reasonState   = "State code must be 2 letters and is only required when country is US."
	reasonUnits   = "Invalid units specified. Valid options are 'metric', 'standard', 'imperial'."
)

// queryRules mirrors model.WeatherQuery. City is deliberately unchecked.
type queryRules struct {
	Country string `validate:"omitempty,len=2"`
	State   string `validate:"omitempty,len=2"`
	Units   string `validate:"oneof=metric standard imperial"`
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(stateRequiresUS, queryRules{})
	return v
}

func stateRequiresUS(sl validator.StructLevel) {
	q := sl.Current().Interface().(queryRules)
	if q.State != "" && q.Country != "" && strings.ToUpper(q.Country) != "US" {
		sl.ReportError(q.State, "State", "State", "us_only", "")
	}
}

// Validate reports whether q may be sent to the weather API. The returned
// error wraps model.ErrValidation and carries a human-readable reason.
func Validate(q model.WeatherQuery) error {
	err := validate.Struct(queryRules{
		Country: q.Country,
		State:   q.State,
		Units:   q.Units,
	})
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", model.ErrValidation, err)
	}

	failed := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Field()] = true
	}

	// Report in the same order the checks are documented: country, state, units
	switch {
	case failed["Country"]:
		return fmt.Errorf("%w: %s", model.ErrValidation, reasonCountry)
	case failed["State"]:
		return fmt.Errorf("%w: %s", model.ErrValidation, reasonState)
	default:
		return fmt.Errorf("%w: %s", model.ErrValidation, reasonUnits)
	}
}

// Valid is the boolean form of Validate
func Valid(q model.WeatherQuery) bool {
	return Validate(q) == nil
}
