package normalize

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`[^0-9]`)

// NPI strips whitespace and punctuation from a National Provider
// Identifier. Returns "" when the input is empty or, after stripping,
// is not the expected 10 digits.
func NPI(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = nonDigit.ReplaceAllString(s, "")
	if len(s) != 10 {
		return ""
	}
	return s
}
