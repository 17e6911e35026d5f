package align

import "strings"

// Normalize reduces s to its comparison-significant characters: CJK ideographs
// (U+4E00..U+9FFF), ASCII letters (lower-cased) and ASCII digits, in original
// order. Punctuation and whitespace are dropped. Every position computation in
// this package goes through this one definition; using a second definition
// anywhere downstream desynchronizes the cumulative tables.
func Normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			sb.WriteRune(r)
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// normalized text as a rune slice, for positional slicing
func normalizedRunes(s string) []rune {
	return []rune(Normalize(s))
}

// count of comparison-significant characters in s
func normalizedLen(s string) int {
	n := 0
	for _, r := range s {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF,
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9':
			n++
		}
	}
	return n
}
