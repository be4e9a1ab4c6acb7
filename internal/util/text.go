package util

import (
	"strings"
	"unicode"
)

// SanitizePostgresText strips invalid UTF-8 and NUL bytes, which Postgres
// rejects in text columns.
func SanitizePostgresText(value string) string {
	if value == "" {
		return value
	}

	sanitized := strings.ToValidUTF8(value, "")
	return strings.ReplaceAll(sanitized, "\x00", "")
}

// TruncatePreview collapses whitespace and shortens a clause body to at most
// max runes for use as a graph node display value. An ellipsis is appended
// when anything was cut.
func TruncatePreview(body string, max int) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	if max <= 0 {
		return ""
	}

	runes := []rune(collapsed)
	if len(runes) <= max {
		return collapsed
	}

	cut := runes[:max]
	// Back off to the last word boundary so previews never end mid-word.
	for i := len(cut) - 1; i > 0; i-- {
		if unicode.IsSpace(cut[i]) {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(cut), unicode.IsSpace) + "…"
}
