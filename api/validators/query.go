package validators

import (
	"net/http"
	"strconv"
	"strings"
)

// QueryPositiveInt reads an optional integer query parameter. Missing, malformed
// and non-positive values fall back, so "?page=0" and "?page=abc" read as the default.
func QueryPositiveInt(r *http.Request, key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(key)))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

// QueryString returns the sanitized query value capped at maxLen bytes.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
