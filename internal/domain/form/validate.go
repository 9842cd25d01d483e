package form

import (
	"fmt"
	"slices"

	"github.com/garyjia/esign-wizard/pkg/utils"
)

// TaxIDFormatter is the formatter whose fields must hold a complete CUIT once submitted
const TaxIDFormatter = "cuitFormatter"

// ValidateState checks the values of visible fields. Empty values are accepted;
// hidden fields are skipped entirely.
func ValidateState(schema *Schema, state State) error {
	var problems []FieldProblem

	for _, f := range schema.Fields() {
		if !IsVisible(f, state) {
			continue
		}
		value, isString := state[f.Name].(string)

		if f.Type == TypeCheckbox {
			if v, present := state[f.Name]; present {
				if _, ok := v.(bool); !ok {
					problems = append(problems, FieldProblem{Field: f.Name, Message: "must be a boolean"})
				}
			}
			continue
		}

		if _, present := state[f.Name]; present && !isString {
			problems = append(problems, FieldProblem{Field: f.Name, Message: "must be a string"})
			continue
		}
		if value == "" {
			continue
		}

		if f.Formatter == TaxIDFormatter {
			if err := utils.ValidateTaxID(value); err != nil {
				problems = append(problems, FieldProblem{Field: f.Name, Message: err.Error()})
			}
		}

		switch f.Type {
		case TypeEmail:
			if err := utils.ValidateEmail(value); err != nil {
				problems = append(problems, FieldProblem{Field: f.Name, Message: err.Error()})
			}
		case TypeDate:
			if err := utils.ValidateISODate(value); err != nil {
				problems = append(problems, FieldProblem{Field: f.Name, Message: err.Error()})
			}
		case TypeButtonGroup:
			if !slices.ContainsFunc(f.Options, func(opt string) bool { return SameText(opt, value) }) {
				problems = append(problems, FieldProblem{
					Field:   f.Name,
					Message: fmt.Sprintf("%q is not one of %v", value, f.Options),
				})
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
