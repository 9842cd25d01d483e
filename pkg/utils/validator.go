package utils

import (
	"fmt"
	"regexp"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	cuitRegex  = regexp.MustCompile(`^\d{2}-\d{8}-\d$`)
	ctrlRegex  = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateTaxID validates an Argentine CUIT/CUIL in its hyphenated form (NN-NNNNNNNN-N)
func ValidateTaxID(taxID string) error {
	if !cuitRegex.MatchString(taxID) {
		return fmt.Errorf("tax ID must have the form NN-NNNNNNNN-N: %s", taxID)
	}
	return nil
}

// ValidateISODate validates a YYYY-MM-DD calendar date
func ValidateISODate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return nil
}

// SanitizeString removes control characters other than tab and line breaks
func SanitizeString(s string) string {
	return ctrlRegex.ReplaceAllString(s, "")
}
