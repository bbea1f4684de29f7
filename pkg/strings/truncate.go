// Package strings holds small text helpers shared by the output formatters.
package strings

import (
	"strings"
)

// DefaultValueMaxLen is the widest value printed in a KEY/VALUE table cell.
const DefaultValueMaxLen = 100

// MinTruncateLen leaves room for one character plus "...".
const MinTruncateLen = 4

// Truncate collapses s onto a single line and shortens it to at most maxLen
// runes, marking the cut with "...". A maxLen below MinTruncateLen is
// clamped to MinTruncateLen.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
