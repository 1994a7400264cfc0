// Package strcase converts Go identifiers to the snake_case keys used in JSON
// payloads and validation messages.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts s to lower snake_case, keeping initialisms together:
// "PatientID" becomes "patient_id" and "HTTPStatus" becomes "http_status".
// Existing underscores are preserved.
func ToLowerSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if prev == '_' {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
