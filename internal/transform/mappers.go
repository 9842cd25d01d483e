package transform

import (
	"strings"

	"github.com/garyjia/esign-wizard/internal/domain/form"
)

// Marker is the value a PDF checkbox or exclusive-choice box takes when set
const Marker = "/"

// Choice binds a selector option to the marker field it sets
type Choice struct {
	Option string
	Target string
}

// ExclusiveChoice builds a mapper that reads selector and sets exactly one of
// the targets to Marker, clearing the others. An unknown or empty selector
// clears every target. Options compare after NFC normalization so composed and
// decomposed accents match.
func ExclusiveChoice(selector string, choices []Choice) Mapper {
	return func(state form.State, _ string) form.State {
		out := state.Clone()
		selected := state.String(selector)
		for _, c := range choices {
			if selected != "" && form.SameText(selected, c.Option) {
				out[c.Target] = Marker
			} else {
				out[c.Target] = ""
			}
		}
		return out
	}
}

// TipoDeTramite marks the kind of filing
var TipoDeTramite = ExclusiveChoice("TipoDeTramite", []Choice{
	{Option: "Apertura", Target: "TipoDeTramiteApertura"},
	{Option: "Actualización", Target: "TipoDeTramiteActualizacion"},
	{Option: "Incorporación", Target: "TipoDeTramiteIncorporacion"},
})

// UsoDeFirma marks whether representatives sign jointly or individually
var UsoDeFirma = ExclusiveChoice("TipoFirma", []Choice{
	{Option: "Indistinta", Target: "UsoDeFirmaIndistinta"},
	{Option: "Conjunta", Target: "UsoDeFirmaConjunta"},
})

// SplitEmail decomposes an address held in fieldName (e.g. CorreoElectronico2)
// into <base>Usuario<n> and <base>Dominio<n> (CorreoElectronicoUsuario2,
// CorreoElectronicoDominio2). Values without "@" write nothing, so earlier
// derived values stay in place.
func SplitEmail(state form.State, fieldName string) form.State {
	out := state.Clone()

	value := state.String(fieldName)
	if !strings.Contains(value, "@") {
		return out
	}

	base, suffix := splitNumericSuffix(fieldName)
	parts := strings.Split(value, "@")
	out[base+"Usuario"+suffix] = parts[0]
	out[base+"Dominio"+suffix] = parts[1]
	return out
}

// CopyIfSet builds a mapper that mirrors a non-empty src value into dst
func CopyIfSet(src, dst string) Mapper {
	return func(state form.State, _ string) form.State {
		out := state.Clone()
		if v := state.String(src); v != "" {
			out[dst] = v
		}
		return out
	}
}

func splitNumericSuffix(name string) (base, suffix string) {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	return name[:i], name[i:]
}
