// Package form models the wizard definition (steps and fields) and the live
// editing state that users mutate while filling it in.
package form

import (
	"fmt"
)

// FieldType enumerates the input widgets a field can render as
type FieldType string

const (
	TypeText        FieldType = "text"
	TypeEmail       FieldType = "email"
	TypeDate        FieldType = "date"
	TypeTel         FieldType = "tel"
	TypeTextarea    FieldType = "textarea"
	TypeCheckbox    FieldType = "checkbox"
	TypeButtonGroup FieldType = "button-group"
)

var validFieldTypes = map[FieldType]bool{
	TypeText:        true,
	TypeEmail:       true,
	TypeDate:        true,
	TypeTel:         true,
	TypeTextarea:    true,
	TypeCheckbox:    true,
	TypeButtonGroup: true,
}

// IsValid returns true if the type is one the wizard can render
func (t FieldType) IsValid() bool {
	return validFieldTypes[t]
}

// TransformsOnEdit reports whether live edits of this input run its formatter
// and mapper. Textarea, checkbox and button-group values are stored verbatim.
func (t FieldType) TransformsOnEdit() bool {
	switch t {
	case TypeText, TypeEmail, TypeDate, TypeTel:
		return true
	default:
		return false
	}
}

// DefaultToday is the date default that resolves to the current day
const DefaultToday = "today"

// Condition gates a field on another field holding exactly Value
type Condition struct {
	Field string `json:"field" yaml:"field"`
	Value any    `json:"value" yaml:"value"`
}

// Field is a single input of a step
type Field struct {
	Name           string     `json:"name" yaml:"name"`
	Type           FieldType  `json:"type" yaml:"type"`
	Label          string     `json:"label" yaml:"label"`
	Default        any        `json:"default,omitempty" yaml:"default,omitempty"`
	Formatter      string     `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	Mapper         string     `json:"mapper,omitempty" yaml:"mapper,omitempty"`
	VisibleIf      *Condition `json:"visibleIf,omitempty" yaml:"visibleIf,omitempty"`
	Options        []string   `json:"options,omitempty" yaml:"options,omitempty"`
	HideOnRevision bool       `json:"hideOnRevision,omitempty" yaml:"hideOnRevision,omitempty"`

	// Presentation hints, carried through untouched
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Rows        int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Disabled    bool   `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// Step is one page of the wizard
type Step struct {
	Title  string  `json:"title" yaml:"title"`
	Icon   string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Schema is the ordered wizard definition
type Schema struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// Fields returns every field in step order, then field order
func (s *Schema) Fields() []Field {
	var fields []Field
	for _, step := range s.Steps {
		fields = append(fields, step.Fields...)
	}
	return fields
}

// Field looks up a field by name
func (s *Schema) Field(name string) (Field, bool) {
	for _, step := range s.Steps {
		for _, f := range step.Fields {
			if f.Name == name {
				return f, true
			}
		}
	}
	return Field{}, false
}

// Validate checks the structural invariants of the schema: unique names,
// known types, button groups with options and resolvable visibility references.
// Transform names are checked separately against a registry.
func (s *Schema) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: schema has no steps", ErrInvalidSchema)
	}

	seen := make(map[string]bool)
	for i, step := range s.Steps {
		if step.Title == "" {
			return fmt.Errorf("%w: step %d has no title", ErrInvalidSchema, i)
		}
		for _, f := range step.Fields {
			if f.Name == "" {
				return fmt.Errorf("%w: step %q has a field without name", ErrInvalidSchema, step.Title)
			}
			if seen[f.Name] {
				return fmt.Errorf("%w: duplicate field name %q", ErrInvalidSchema, f.Name)
			}
			seen[f.Name] = true

			if !f.Type.IsValid() {
				return fmt.Errorf("%w: field %q has unknown type %q", ErrInvalidSchema, f.Name, f.Type)
			}
			if f.Type == TypeButtonGroup && len(f.Options) == 0 {
				return fmt.Errorf("%w: button-group %q has no options", ErrInvalidSchema, f.Name)
			}
		}
	}

	for _, f := range s.Fields() {
		if f.VisibleIf == nil {
			continue
		}
		if f.VisibleIf.Field == f.Name {
			return fmt.Errorf("%w: field %q is conditioned on itself", ErrInvalidSchema, f.Name)
		}
		if !seen[f.VisibleIf.Field] {
			return fmt.Errorf("%w: field %q is conditioned on unknown field %q", ErrInvalidSchema, f.Name, f.VisibleIf.Field)
		}
	}

	return nil
}
