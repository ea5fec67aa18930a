// Package metrics derives cheap local text features for telemetry.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features holds size counts for an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// CountFeatures computes byte, rune, word, and line counts. Words split on
// Unicode whitespace; an empty string has zero lines.
func CountFeatures(s string) Features {
	lines := 0
	if s != "" {
		lines = 1 + strings.Count(s, "\n")
	}
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: lines,
	}
}
