package projection

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/esign-wizard/internal/domain/form"
	"github.com/garyjia/esign-wizard/internal/transform"
)

func testSchema() *form.Schema {
	return &form.Schema{Steps: []form.Step{
		{Title: "Trámite", Fields: []form.Field{
			{Name: "TipoDeTramite", Type: form.TypeButtonGroup, Options: []string{"Apertura", "Actualización", "Incorporación"}, Mapper: "tipoDeTramiteMapper"},
			{Name: "FechaSolicitud", Type: form.TypeDate, Default: form.DefaultToday},
		}},
		{Title: "Datos", Fields: []form.Field{
			{Name: "CUIT", Type: form.TypeText, Formatter: "cuitFormatter"},
			{Name: "CorreoElectronico1", Type: form.TypeEmail, Mapper: "emailMapper"},
			{Name: "RepresentanteNombre1", Type: form.TypeText, Mapper: "representanteNombre1Mapper"},
			{Name: "AceptaTerminos", Type: form.TypeCheckbox},
		}},
		{Title: "Revisión"},
	}}
}

func newTestProjector() *Projector {
	p := NewProjector(testSchema(), transform.DefaultRegistry(), zap.NewNop())
	p.now = func() time.Time { return time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC) }
	return p
}

func TestProject(t *testing.T) {
	p := newTestProjector()
	state := form.State{
		"TipoDeTramite":        "Apertura",
		"FechaSolicitud":       "2024-03-07",
		"CUIT":                 "20-12345678-9",
		"CorreoElectronico1":   "ana@empresa.com",
		"RepresentanteNombre1": "Ana",
		"AceptaTerminos":       true,
	}

	out := p.Project(state)

	assert.Equal(t, transform.Marker, out["TipoDeTramiteApertura"])
	assert.Equal(t, "", out["TipoDeTramiteActualizacion"])
	assert.Equal(t, "07-03-2024", out["FechaSolicitud"])
	assert.Equal(t, "ana", out["CorreoElectronicoUsuario1"])
	assert.Equal(t, "empresa.com", out["CorreoElectronicoDominio1"])
	assert.Equal(t, "Ana", out["Firmante1Nombre"])
	assert.Equal(t, transform.Marker, out["AceptaTerminos"])

	assert.Equal(t, "2024-03-07", state["FechaSolicitud"], "input state must not change")
	assert.Equal(t, true, state["AceptaTerminos"])
}

func TestProjectIsIdempotent(t *testing.T) {
	p := newTestProjector()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("projecting twice equals projecting once", prop.ForAll(
		func(tipo string, checked bool, day int) bool {
			state := form.State{
				"TipoDeTramite":  tipo,
				"AceptaTerminos": checked,
				"FechaSolicitud": time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
			}
			once := p.Project(state)
			twice := p.Project(once)
			a, _ := json.Marshal(once)
			b, _ := json.Marshal(twice)
			return string(a) == string(b)
		},
		gen.OneConstOf("Apertura", "Actualización", "Incorporación", ""),
		gen.Bool(),
		gen.IntRange(1, 28),
	))

	properties.TestingRun(t)
}

func TestProjectDefaultsDefinesEveryField(t *testing.T) {
	p := newTestProjector()

	out := p.Project(p.Defaults())

	for _, f := range p.Schema().Fields() {
		assert.Contains(t, out, f.Name)
	}
	assert.Equal(t, "", out["AceptaTerminos"])
	assert.Equal(t, "07-03-2024", out["FechaSolicitud"])
}

func TestDefaults(t *testing.T) {
	state := newTestProjector().Defaults()

	assert.Equal(t, "2024-03-07", state["FechaSolicitud"])
	assert.Equal(t, false, state["AceptaTerminos"])
	assert.Equal(t, "", state["CUIT"])
}

func TestEdit(t *testing.T) {
	p := newTestProjector()

	t.Run("formatter applied", func(t *testing.T) {
		out := p.Edit(form.State{}, "CUIT", "20123456789")
		assert.Equal(t, "20-12345678-9", out["CUIT"])
	})

	t.Run("control characters stripped", func(t *testing.T) {
		out := p.Edit(form.State{}, "RepresentanteNombre1", "Ana\x00\x07")
		assert.Equal(t, "Ana", out["RepresentanteNombre1"])
		assert.Equal(t, "Ana", out["Firmante1Nombre"])
	})

	t.Run("mapper derives cluster for text input", func(t *testing.T) {
		out := p.Edit(form.State{}, "CorreoElectronico1", "ana@empresa.com")
		assert.Equal(t, "ana", out["CorreoElectronicoUsuario1"])
		assert.Equal(t, "empresa.com", out["CorreoElectronicoDominio1"])
	})

	t.Run("button group stored verbatim until projection", func(t *testing.T) {
		out := p.Edit(form.State{}, "TipoDeTramite", "Incorporación")
		assert.Equal(t, "Incorporación", out["TipoDeTramite"])
		assert.NotContains(t, out, "TipoDeTramiteIncorporacion")

		projected := p.Project(out)
		assert.Equal(t, transform.Marker, projected["TipoDeTramiteIncorporacion"])
		assert.Equal(t, "", projected["TipoDeTramiteApertura"])
	})

	t.Run("textarea skips formatter and mapper", func(t *testing.T) {
		ta := NewProjector(&form.Schema{Steps: []form.Step{{Title: "Notas", Fields: []form.Field{
			{Name: "Observaciones", Type: form.TypeTextarea, Formatter: "cuitFormatter", Mapper: "emailMapper"},
		}}}}, transform.DefaultRegistry(), zap.NewNop())

		out := ta.Edit(form.State{}, "Observaciones", "20123456789@x")
		assert.Equal(t, form.State{"Observaciones": "20123456789@x"}, out)
	})

	t.Run("decomposed accents stored composed", func(t *testing.T) {
		decomposed := "Actualizaci\u006f\u0301n"
		out := p.Edit(form.State{}, "TipoDeTramite", decomposed)
		assert.Equal(t, "Actualización", out["TipoDeTramite"])
		assert.Equal(t, transform.Marker, p.Project(out)["TipoDeTramiteActualizacion"])
	})

	t.Run("bool values stored as-is", func(t *testing.T) {
		out := p.Edit(form.State{"AceptaTerminos": false}, "AceptaTerminos", true)
		assert.Equal(t, true, out["AceptaTerminos"])
	})

	t.Run("input state untouched", func(t *testing.T) {
		in := form.State{"CUIT": ""}
		p.Edit(in, "CUIT", "20")
		assert.Equal(t, "", in["CUIT"])
	})
}

func TestImport(t *testing.T) {
	p := newTestProjector()

	t.Run("round trip with project", func(t *testing.T) {
		state := form.State{
			"TipoDeTramite":        "Apertura",
			"FechaSolicitud":       "2024-02-29",
			"CUIT":                 "20-12345678-9",
			"CorreoElectronico1":   "ana@empresa.com",
			"RepresentanteNombre1": "Ana",
			"AceptaTerminos":       true,
		}
		exported, err := p.ProjectJSON(state)
		require.NoError(t, err)

		imported, err := p.Import(exported)

		require.NoError(t, err)
		for k, v := range state {
			assert.Equal(t, v, imported[k], k)
		}
	})

	t.Run("missing fields take initial values", func(t *testing.T) {
		imported, err := p.Import([]byte(`{"CUIT":"20-1"}`))

		require.NoError(t, err)
		assert.Equal(t, "20-1", imported["CUIT"])
		assert.Equal(t, "2024-03-07", imported["FechaSolicitud"])
		assert.Equal(t, false, imported["AceptaTerminos"])
	})

	t.Run("malformed documents", func(t *testing.T) {
		for _, doc := range []string{`{broken`, `null`, `[1,2]`} {
			_, err := p.Import([]byte(doc))

			var parseErr *form.ImportParseError
			assert.True(t, errors.As(err, &parseErr), doc)
		}
	})
}
