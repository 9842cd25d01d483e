package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchema() *Schema {
	return &Schema{Steps: []Step{
		{Title: "Trámite", Fields: []Field{
			{Name: "TipoDeTramite", Type: TypeButtonGroup, Options: []string{"Apertura", "Actualización"}},
			{Name: "Fecha", Type: TypeDate, Default: DefaultToday},
			{Name: "NumeroCuenta", Type: TypeText, VisibleIf: &Condition{Field: "TipoDeTramite", Value: "Actualización"}},
		}},
		{Title: "Datos", Fields: []Field{
			{Name: "Correo", Type: TypeEmail},
			{Name: "CUIT", Type: TypeText, Formatter: TaxIDFormatter},
			{Name: "Segundo", Type: TypeCheckbox},
			{Name: "Nombre2", Type: TypeText, Default: "N/A", VisibleIf: &Condition{Field: "Segundo", Value: true}},
		}},
	}}
}

func TestSchemaFields(t *testing.T) {
	s := sampleSchema()

	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"TipoDeTramite", "Fecha", "NumeroCuenta", "Correo", "CUIT", "Segundo", "Nombre2"}, names)

	f, ok := s.Field("Correo")
	require.True(t, ok)
	assert.Equal(t, TypeEmail, f.Type)

	_, ok = s.Field("Nope")
	assert.False(t, ok)
}

func TestSchemaValidate(t *testing.T) {
	assert.NoError(t, sampleSchema().Validate())

	tests := []struct {
		name   string
		mutate func(*Schema)
	}{
		{"no steps", func(s *Schema) { s.Steps = nil }},
		{"untitled step", func(s *Schema) { s.Steps[0].Title = "" }},
		{"unnamed field", func(s *Schema) { s.Steps[0].Fields[0].Name = "" }},
		{"duplicate name", func(s *Schema) { s.Steps[1].Fields[0].Name = "Fecha" }},
		{"unknown type", func(s *Schema) { s.Steps[1].Fields[0].Type = "color" }},
		{"button group without options", func(s *Schema) { s.Steps[0].Fields[0].Options = nil }},
		{"self condition", func(s *Schema) { s.Steps[0].Fields[2].VisibleIf.Field = "NumeroCuenta" }},
		{"unknown condition field", func(s *Schema) { s.Steps[0].Fields[2].VisibleIf.Field = "Nope" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSchema()
			tt.mutate(s)

			err := s.Validate()

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchema))
		})
	}
}

func TestNewState(t *testing.T) {
	now := time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC)

	state := NewState(sampleSchema(), now)

	assert.Equal(t, "", state["TipoDeTramite"])
	assert.Equal(t, "2024-03-07", state["Fecha"])
	assert.Equal(t, false, state["Segundo"])
	assert.Equal(t, "N/A", state["Nombre2"])
	assert.Len(t, state, 7)
}

func TestStateAccessors(t *testing.T) {
	s := State{"a": "x", "b": true, "c": 3}

	assert.Equal(t, "x", s.String("a"))
	assert.Equal(t, "", s.String("b"))
	assert.True(t, s.Bool("b"))
	assert.False(t, s.Bool("a"))

	clone := s.Clone()
	clone["a"] = "y"
	assert.Equal(t, "x", s["a"])
}

func TestIsVisible(t *testing.T) {
	s := sampleSchema()
	cuenta, _ := s.Field("NumeroCuenta")
	nombre2, _ := s.Field("Nombre2")
	correo, _ := s.Field("Correo")

	tests := []struct {
		name  string
		field Field
		state State
		want  bool
	}{
		{"unconditional", correo, State{}, true},
		{"matching string", cuenta, State{"TipoDeTramite": "Actualización"}, true},
		{"decomposed accent matches", cuenta, State{"TipoDeTramite": "Actualizaci\u006f\u0301n"}, true},
		{"other string", cuenta, State{"TipoDeTramite": "Apertura"}, false},
		{"missing value", cuenta, State{}, false},
		{"matching bool", nombre2, State{"Segundo": true}, true},
		{"string true is not bool true", nombre2, State{"Segundo": "true"}, false},
		{"false", nombre2, State{"Segundo": false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(tt.field, tt.state))
		})
	}
}

func TestVisibleFields(t *testing.T) {
	visible := VisibleFields(sampleSchema(), State{"Segundo": true})

	assert.Equal(t, []string{"TipoDeTramite", "Fecha"}, visible["Trámite"])
	assert.Equal(t, []string{"Correo", "CUIT", "Segundo", "Nombre2"}, visible["Datos"])
}
