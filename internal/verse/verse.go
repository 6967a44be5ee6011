// internal/verse/verse.go
//
// Verse type and ideograph helpers.
//
// A Verse is an immutable run of CJK unified ideographs (U+4E00..U+9FA5).
// Its length and positions are counted in runes, never bytes.

package verse

import (
	"strings"
	"unicode/utf8"
)

// Supported verse lengths: two five-character or two seven-character lines.
const (
	LengthFive  = 10
	LengthSeven = 14
)

// Verse is a fixed-length sequence of ideographs. Identity is its content.
type Verse string

// Len returns the number of characters in v.
func (v Verse) Len() int { return utf8.RuneCountInString(string(v)) }

// Runes returns the characters of v by position.
func (v Verse) Runes() []rune { return []rune(v) }

func (v Verse) String() string { return string(v) }

// IsIdeograph reports whether r is in the basic CJK unified ideograph block
// retained by the corpus filter.
func IsIdeograph(r rune) bool {
	return r >= 0x4e00 && r <= 0x9fa5
}

// AllIdeographs reports whether s is non-empty and consists only of ideographs.
func AllIdeographs(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsIdeograph(r) {
			return false
		}
	}
	return true
}

// Clean drops every non-ideograph character (punctuation, spaces, latin) from s.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if IsIdeograph(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidLength reports whether n is a supported verse length.
func ValidLength(n int) bool {
	return n == LengthFive || n == LengthSeven
}
