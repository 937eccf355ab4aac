package sanitizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"plain text untouched", "Please hold June 1-3 for our group.", "Please hold June 1-3 for our group."},
		{"surrounding whitespace trimmed", "  hello  ", "hello"},
		{"internal runs collapsed", "hello    world", "hello world"},
		{"tabs collapsed", "hello\t\tworld", "hello world"},
		{"control characters stripped", "hel\x00lo\x08", "hello"},
		{"newlines preserved", "line one\nline two", "line one\nline two"},
		{"excess blank lines collapsed", "a\n\n\n\n\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeMessage(tt.input))
		})
	}
}

func TestSanitizeMessage_Truncates(t *testing.T) {
	long := strings.Repeat("x", 5000)
	got := SanitizeMessage(long)
	assert.Len(t, got, 2000)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "guide-42", SanitizeID("  guide-42 "))
	assert.Equal(t, "", SanitizeID("   "))
}
