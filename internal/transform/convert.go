package transform

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	displayDate = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
)

// ExportDate turns YYYY-MM-DD into DD-MM-YYYY. Values already in DD-MM-YYYY
// are returned unchanged; values that are not three dash-separated parts pass
// through as well.
func ExportDate(value string) string {
	if value == "" || displayDate.MatchString(value) {
		return value
	}
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return value
	}
	return fmt.Sprintf("%s-%s-%s", pad2(parts[2]), pad2(parts[1]), parts[0])
}

// ImportDate turns DD-MM-YYYY into YYYY-MM-DD, the inverse of ExportDate.
// Values already in YYYY-MM-DD are returned unchanged.
func ImportDate(value string) string {
	if value == "" || isoDate.MatchString(value) {
		return value
	}
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return value
	}
	return fmt.Sprintf("%s-%s-%s", parts[2], pad2(parts[1]), pad2(parts[0]))
}

// ExportCheckbox renders a checkbox value as Marker or the empty string.
// Already exported markers stay set, so exporting twice is harmless.
func ExportCheckbox(value any) string {
	if truthy(value) {
		return Marker
	}
	return ""
}

// ImportCheckbox reads an exported checkbox back: only Marker is checked
func ImportCheckbox(value any) bool {
	s, ok := value.(string)
	return ok && s == Marker
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return false
	}
}

func pad2(s string) string {
	if len(s) < 2 {
		return strings.Repeat("0", 2-len(s)) + s
	}
	return s
}
