package util

import (
	"regexp"
	"strings"
)

// HashtagFromTheme turns free-form theme text into a single hashtag,
// e.g. "Product Launch 2025" -> "#ProductLaunch2025"
func HashtagFromTheme(theme string) string {
	reg := regexp.MustCompile(`[^a-zA-Z0-9]+`)

	var parts []string
	for _, word := range strings.Fields(theme) {
		word = reg.ReplaceAllString(word, "")
		if word == "" {
			continue
		}
		parts = append(parts, strings.ToUpper(word[:1])+word[1:])
	}

	if len(parts) == 0 {
		return ""
	}

	return "#" + strings.Join(parts, "")
}

// TruncateRunes shortens s to at most max runes and appends the ellipsis
// marker when anything was cut. Safe on multi-byte text.
func TruncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// NormalizeSpace collapses runs of whitespace into single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
