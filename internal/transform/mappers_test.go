package transform

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/unicode/norm"

	"github.com/garyjia/esign-wizard/internal/domain/form"
)

func TestTipoDeTramite(t *testing.T) {
	tests := []struct {
		name     string
		selected any
		want     map[string]string
	}{
		{
			name:     "apertura",
			selected: "Apertura",
			want:     map[string]string{"TipoDeTramiteApertura": Marker, "TipoDeTramiteActualizacion": "", "TipoDeTramiteIncorporacion": ""},
		},
		{
			name:     "accented option",
			selected: "Actualización",
			want:     map[string]string{"TipoDeTramiteApertura": "", "TipoDeTramiteActualizacion": Marker, "TipoDeTramiteIncorporacion": ""},
		},
		{
			name:     "decomposed accent matches",
			selected: norm.NFD.String("Incorporación"),
			want:     map[string]string{"TipoDeTramiteApertura": "", "TipoDeTramiteActualizacion": "", "TipoDeTramiteIncorporacion": Marker},
		},
		{
			name:     "unknown clears all",
			selected: "Otro",
			want:     map[string]string{"TipoDeTramiteApertura": "", "TipoDeTramiteActualizacion": "", "TipoDeTramiteIncorporacion": ""},
		},
		{
			name:     "empty clears all",
			selected: "",
			want:     map[string]string{"TipoDeTramiteApertura": "", "TipoDeTramiteActualizacion": "", "TipoDeTramiteIncorporacion": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := form.State{"TipoDeTramite": tt.selected, "TipoDeTramiteApertura": Marker, "Otro": "x"}

			out := TipoDeTramite(state, "TipoDeTramite")

			for k, v := range tt.want {
				assert.Equal(t, v, out[k], k)
			}
			assert.Equal(t, "x", out["Otro"])
			assert.Equal(t, Marker, state["TipoDeTramiteApertura"], "input state must not change")
		})
	}
}

func TestUsoDeFirma(t *testing.T) {
	out := UsoDeFirma(form.State{"TipoFirma": "Conjunta"}, "TipoFirma")

	assert.Equal(t, "", out["UsoDeFirmaIndistinta"])
	assert.Equal(t, Marker, out["UsoDeFirmaConjunta"])
}

func TestExclusiveChoiceSetsAtMostOne(t *testing.T) {
	options := []string{"Apertura", "Actualización", "Incorporación"}
	targets := []string{"TipoDeTramiteApertura", "TipoDeTramiteActualizacion", "TipoDeTramiteIncorporacion"}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	selector := gen.OneGenOf(gen.OneConstOf("Apertura", "Actualización", "Incorporación"), gen.AlphaString())

	properties.Property("exactly one target for a known option, none otherwise", prop.ForAll(
		func(selected string) bool {
			out := TipoDeTramite(form.State{"TipoDeTramite": selected}, "TipoDeTramite")
			set := 0
			for _, target := range targets {
				if out[target] == Marker {
					set++
				}
			}
			known := false
			for _, o := range options {
				if o == selected {
					known = true
				}
			}
			if known {
				return set == 1
			}
			return set == 0
		},
		selector,
	))

	properties.Property("mapping is idempotent", prop.ForAll(
		func(selected string) bool {
			once := TipoDeTramite(form.State{"TipoDeTramite": selected}, "TipoDeTramite")
			twice := TipoDeTramite(once, "TipoDeTramite")
			for _, target := range targets {
				if once[target] != twice[target] {
					return false
				}
			}
			return true
		},
		selector,
	))

	properties.TestingRun(t)
}

func TestSplitEmail(t *testing.T) {
	t.Run("numbered field", func(t *testing.T) {
		out := SplitEmail(form.State{"CorreoElectronico2": "ana@empresa.com.ar"}, "CorreoElectronico2")

		assert.Equal(t, "ana", out["CorreoElectronicoUsuario2"])
		assert.Equal(t, "empresa.com.ar", out["CorreoElectronicoDominio2"])
	})

	t.Run("unnumbered field", func(t *testing.T) {
		out := SplitEmail(form.State{"Correo": "a@b.c"}, "Correo")

		assert.Equal(t, "a", out["CorreoUsuario"])
		assert.Equal(t, "b.c", out["CorreoDominio"])
	})

	t.Run("missing at keeps stale values", func(t *testing.T) {
		state := form.State{
			"CorreoElectronico1":        "ana",
			"CorreoElectronicoUsuario1": "old",
			"CorreoElectronicoDominio1": "old.com",
		}

		out := SplitEmail(state, "CorreoElectronico1")

		assert.Equal(t, "old", out["CorreoElectronicoUsuario1"])
		assert.Equal(t, "old.com", out["CorreoElectronicoDominio1"])
	})
}

func TestCopyIfSet(t *testing.T) {
	copyName := CopyIfSet("RepresentanteNombre1", "Firmante1Nombre")

	out := copyName(form.State{"RepresentanteNombre1": "Ana"}, "RepresentanteNombre1")
	assert.Equal(t, "Ana", out["Firmante1Nombre"])

	out = copyName(form.State{"RepresentanteNombre1": "", "Firmante1Nombre": "Previo"}, "RepresentanteNombre1")
	assert.Equal(t, "Previo", out["Firmante1Nombre"])
}
