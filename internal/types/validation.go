package types

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Constraint tags usable in `validate:"..."` struct tags once registered.
var enumValidators = map[string][]string{
	"role":         ValidRoles,
	"interaction":  ValidInteractionTypes,
	"leadstage":    LeadStages,
	"leadsource":   LeadSources,
	"taskstatus":   TaskStatuses,
	"taskpriority": TaskPriorities,
}

// RegisterValidations installs the CRM enum constraints on v.
func RegisterValidations(v *validator.Validate) error {
	for tag, values := range enumValidators {
		allowed := values
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return contains(allowed, fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// AllowedValues describes the accepted values for an enum constraint tag.
func AllowedValues(tag string) (string, bool) {
	values, ok := enumValidators[tag]
	if !ok {
		return "", false
	}
	return strings.Join(values, ", "), true
}
