package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims input, drops control characters and caps it at maxLen
// bytes without splitting a multi-byte character. maxLen <= 0 means no cap.
func SanitizeString(input string, maxLen int) string {
	clean := strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input))

	if maxLen <= 0 || len(clean) <= maxLen {
		return clean
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(clean[cut]) {
		cut--
	}
	return strings.TrimSpace(clean[:cut])
}
