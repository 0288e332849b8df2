// Package occurrence finds every case-insensitive occurrence of a term in a body
// of text and cuts a bounded excerpt around each one.
package occurrence

import (
	"iter"
	"slices"
	"unicode"
)

// ContextSize is the number of characters kept on each side of a match.
const ContextSize = 50

type Excerpt struct {
	// Offset is the character (rune) offset of the match in the original text.
	Offset int
	Text   string
	// Location is set only by extractors that report where in the document the
	// match was found, e.g. "Sheet: Q3".
	Location string
}

// Scan yields one excerpt per non-overlapping occurrence, left to right. The
// returned sequence holds no state between iterations and can be ranged over
// any number of times.
func Scan(text string, term string) iter.Seq[Excerpt] {
	return func(yield func(Excerpt) bool) {
		if term == "" || text == "" {
			return
		}

		original := []rune(text)
		haystack := lowerRunes(original)
		needle := lowerRunes([]rune(term))

		for start := 0; start+len(needle) <= len(haystack); {
			i := indexRunes(haystack[start:], needle)
			if i < 0 {
				return
			}
			i += start

			from := max(0, i-ContextSize)
			to := min(len(original), i+len(needle)+ContextSize)
			if !yield(Excerpt{Offset: i, Text: string(original[from:to])}) {
				return
			}

			start = i + len(needle)
		}
	}
}

// All collects Scan into a slice.
func All(text string, term string) []Excerpt {
	return slices.Collect(Scan(text, term))
}

// Contains reports whether term occurs in text, ignoring case.
func Contains(text string, term string) bool {
	for range Scan(text, term) {
		return true
	}
	return false
}

// lowerRunes lower-cases rune by rune so that offsets in the result line up with
// offsets in the input.
func lowerRunes(runes []rune) []rune {
	lowered := make([]rune, len(runes))
	for i, r := range runes {
		lowered[i] = unicode.ToLower(r)
	}
	return lowered
}

func indexRunes(haystack []rune, needle []rune) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if slices.Equal(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}
