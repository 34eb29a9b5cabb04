// Package similarity scores how alike two strings are using normalized Levenshtein distance, and finds the best-matching window of a pattern inside a larger text.
//
// All lengths are measured in runes, so multi-byte characters count as a single edit.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Score returns 1 - dist(a, b)/max(len(a), len(b)), where dist is the unit-cost insert/delete/substitute edit distance. The result is in [0, 1]: 1 means identical,
// 0 means maximally dissimilar for the lengths involved. Two empty strings score 1.
func Score(a, b string) float64 {
	if a == b {
		return 1
	}
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := max(la, lb)
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Window is a substring of some text along with its score against a pattern.
type Window struct {
	Start int     // Byte offset of the window in the text.
	End   int     // Byte offset just past the window.
	Text  string  // text[Start:End].
	Score float64 // Score(Text, pattern).
}

// BestWindow slides a window of the pattern's rune length across text, one rune at a time, and returns the highest-scoring window whose score is at least min. When
// text is shorter than pattern, the whole text is the only window. Ties keep the earliest window. If pattern occurs verbatim in text, that occurrence is returned immediately
// with a score of 1.
//
// ok is false when pattern is empty or no window reaches min.
func BestWindow(text, pattern string, min float64) (w Window, ok bool) {
	if pattern == "" {
		return Window{}, false
	}
	if idx := strings.Index(text, pattern); idx >= 0 {
		return Window{Start: idx, End: idx + len(pattern), Text: pattern, Score: 1}, true
	}
	if text == "" {
		return Window{}, false
	}

	width := utf8.RuneCountInString(pattern)

	// offsets[i] is the byte offset of rune i; offsets[n] == len(text).
	offsets := make([]int, 0, len(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	offsets = append(offsets, len(text))
	n := len(offsets) - 1

	if n <= width {
		s := Score(text, pattern)
		if s < min {
			return Window{}, false
		}
		return Window{Start: 0, End: len(text), Text: text, Score: s}, true
	}

	best := Window{Score: -1}
	for i := 0; i+width <= n; i++ {
		start, end := offsets[i], offsets[i+width]
		s := Score(text[start:end], pattern)
		if s > best.Score {
			best = Window{Start: start, End: end, Text: text[start:end], Score: s}
		}
	}
	if best.Score < min {
		return Window{}, false
	}
	return best, true
}
