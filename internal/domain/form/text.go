package form

import "golang.org/x/text/unicode/norm"

// NormalizeText returns s in NFC so composed and decomposed accents compare equal
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// SameText reports whether a and b are equal after NFC normalization
func SameText(a, b string) bool {
	return NormalizeText(a) == NormalizeText(b)
}
