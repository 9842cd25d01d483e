package transform

import (
	"strings"
	"unicode"
)

// cuitDigits is the length of an Argentine CUIT/CUIL
const cuitDigits = 11

// CUIT keeps the digits of raw and lays them out as NN-NNNNNNNN-N.
// Separators appear only once enough digits are typed; digits past the
// eleventh are dropped.
func CUIT(raw string) string {
	if raw == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) > cuitDigits {
		d = d[:cuitDigits]
	}

	switch {
	case len(d) > 10:
		return d[:2] + "-" + d[2:10] + "-" + d[10:]
	case len(d) > 2:
		return d[:2] + "-" + d[2:]
	default:
		return d
	}
}
