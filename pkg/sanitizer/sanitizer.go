// Package sanitizer normalizes free-text input before it is validated and
// stored. Hold request messages and response notes come straight from users.
package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reControlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	reWhitespace   = regexp.MustCompile(`[ \t]+`)
	reBlankLines   = regexp.MustCompile(`\n{3,}`)
)

const maxMessageLength = 2000

func stripControlChars(s string) string {
	return reControlChars.ReplaceAllString(s, "")
}

func collapseWhitespace(s string) string {
	s = reWhitespace.ReplaceAllString(s, " ")
	return reBlankLines.ReplaceAllString(s, "\n\n")
}

func truncate(s string) string {
	if len(s) > maxMessageLength {
		return s[:maxMessageLength]
	}
	return s
}

var messagePipeline = Pipeline{
	stripControlChars,
	collapseWhitespace,
	strings.TrimSpace,
	truncate,
}

// SanitizeMessage cleans a hold request message or response note.
func SanitizeMessage(s string) string {
	return messagePipeline.Apply(s)
}

// SanitizeID trims surrounding whitespace from an externally supplied
// identifier. IDs are opaque; anything beyond trimming is validation's job.
func SanitizeID(s string) string {
	return strings.TrimSpace(s)
}
