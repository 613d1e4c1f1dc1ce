package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashtagFromTheme(t *testing.T) {
	tests := []struct {
		theme string
		want  string
	}{
		{"Product Launch 2025", "#ProductLaunch2025"},
		{"launch", "#Launch"},
		{"  spaced   out  ", "#SpacedOut"},
		{"emoji ✨ inside", "#EmojiInside"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HashtagFromTheme(tt.theme), "theme=%q", tt.theme)
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", TruncateRunes("short", 10))
	assert.Equal(t, "exact", TruncateRunes("exact", 5))

	long := strings.Repeat("a", 300)
	got := TruncateRunes(long, 250)
	assert.Equal(t, 253, len(got))
	assert.True(t, strings.HasSuffix(got, "..."))

	// Rune-safe on multi-byte text.
	assert.Equal(t, "héll...", TruncateRunes("héllo wörld", 4))
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeSpace("  a\n b\t\tc "))
}
