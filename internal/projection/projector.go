// Package projection derives the export/submission view of a form state and
// applies the live-edit and import rules that feed it.
package projection

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/transform"
	"github.com/garyjia/esign-wizard/pkg/utils"
)

// Projector applies a schema's transforms to form states
type Projector struct {
	schema   *form.Schema
	registry *transform.Registry
	now      func() time.Time
	logger   *zap.Logger
}

// NewProjector creates a projector for schema. Transform names the registry
// does not know are treated as absent; use schemaload to reject them up front.
func NewProjector(schema *form.Schema, registry *transform.Registry, logger *zap.Logger) *Projector {
	return &Projector{
		schema:   schema,
		registry: registry,
		now:      time.Now,
		logger:   logger,
	}
}

// Schema returns the wizard definition the projector works on
func (p *Projector) Schema() *form.Schema {
	return p.schema
}

// Project returns the export view of state. Fields are walked in schema order:
// a declared mapper replaces the running state, otherwise dates are rendered as
// DD-MM-YYYY and checkboxes as markers. state itself is never modified.
func (p *Projector) Project(state form.State) form.State {
	out := state.Clone()

	for _, f := range p.schema.Fields() {
		if mapper, ok := p.mapper(f); ok {
			if mapped := mapper(out, f.Name); mapped != nil {
				out = mapped
			}
			continue
		}

		switch f.Type {
		case form.TypeDate:
			if v, ok := out[f.Name].(string); ok && v != "" {
				out[f.Name] = transform.ExportDate(v)
			}
		case form.TypeCheckbox:
			out[f.Name] = transform.ExportCheckbox(out[f.Name])
		}
	}

	return out
}

// ProjectJSON projects state and encodes the result the way the fill process reads it
func (p *Projector) ProjectJSON(state form.State) ([]byte, error) {
	return json.Marshal(p.Project(state))
}

// Defaults returns a freshly initialized state. Clearing the wizard resets to this.
func (p *Projector) Defaults() form.State {
	return form.NewState(p.schema, p.now())
}

// Edit stores value into field name the way the wizard does on every keystroke.
// String values are stripped of control characters and stored in NFC. Text,
// email, date and tel inputs then run through the field's formatter, and the
// field's mapper derives its cluster. Other inputs are stored verbatim and their
// clusters are derived at projection. Unknown fields are stored as-is.
func (p *Projector) Edit(state form.State, name string, value any) form.State {
	out := state.Clone()

	f, known := p.schema.Field(name)
	transforms := known && f.Type.TransformsOnEdit()
	if s, ok := value.(string); ok {
		s = form.NormalizeText(utils.SanitizeString(s))
		if transforms && f.Formatter != "" && p.registry != nil {
			if formatter, ok := p.registry.Formatter(f.Formatter); ok {
				s = formatter(s)
			}
		}
		value = s
	}
	out[name] = value

	if !transforms {
		return out
	}
	if mapper, ok := p.mapper(f); ok {
		if mapped := mapper(out, f.Name); mapped != nil {
			out = mapped
		}
	}
	return out
}

// Import reads an exported state document back into live-edit form: dates
// return to YYYY-MM-DD and checkbox markers become booleans. Schema fields the
// document lacks take their initial value. Malformed documents yield an
// *form.ImportParseError.
func (p *Projector) Import(data []byte) (form.State, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &form.ImportParseError{Err: err}
	}
	if raw == nil {
		return nil, &form.ImportParseError{Err: errNotAnObject}
	}

	state := form.State(raw)
	now := p.now()
	for _, f := range p.schema.Fields() {
		switch f.Type {
		case form.TypeCheckbox:
			state[f.Name] = transform.ImportCheckbox(state[f.Name])
			continue
		case form.TypeDate:
			if v, ok := state[f.Name].(string); ok && v != "" {
				state[f.Name] = transform.ImportDate(v)
			}
		}
		if _, present := state[f.Name]; !present {
			state[f.Name] = form.InitialValue(f, now)
		}
	}

	p.logger.Debug("Imported form state", zap.Int("keys", len(state)))
	return state, nil
}

func (p *Projector) mapper(f form.Field) (transform.Mapper, bool) {
	if f.Mapper == "" || p.registry == nil {
		return nil, false
	}
	return p.registry.Mapper(f.Mapper)
}
