// Package uni measures and trims text for display in monospace terminals, cluster by cluster, so that previews never split a user-perceived character.
package uni

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Options control width calculation. Currently only relevant for East Asian code points and their locale.
type Options struct {
	EastAsianWidth   bool // if true, treats certain East Asian code points as 2 wide (e.g., Chinese, Japanese, Korean). Use if the locale is one of CJK.
	TreatEmojiAsWide bool // Only considered if EastAsianWidth. If true, treats emoji as wide (2 columns).
}

// TextWidth returns the display width of str. If opts is nil, locale is assumed to be non-East Asian.
func TextWidth(str string, opts *Options) int {
	return conditionFromOptions(opts).StringWidth(str)
}

// Truncate returns str cut to at most width columns. When anything is cut, the result ends in Ellipsis (which counts toward width). Grapheme clusters are never split.
// A width below 1 yields "".
func Truncate(str string, width int, opts *Options) string {
	if width < 1 {
		return ""
	}
	cond := conditionFromOptions(opts)
	if cond.StringWidth(str) <= width {
		return str
	}
	budget := width - cond.StringWidth(Ellipsis)

	var b strings.Builder
	used := 0
	iter := graphemes.FromString(str)
	for iter.Next() {
		w := cond.StringWidth(iter.Value())
		if used+w > budget {
			break
		}
		b.WriteString(iter.Value())
		used += w
	}
	b.WriteString(Ellipsis)
	return b.String()
}

// Preview flattens str onto one line (each whitespace run becomes a single space) and truncates it to width columns.
func Preview(str string, width int, opts *Options) string {
	return Truncate(strings.Join(strings.Fields(str), " "), width, opts)
}

func conditionFromOptions(opts *Options) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	cond.StrictEmojiNeutral = true

	if opts == nil {
		return cond
	}

	cond.EastAsianWidth = opts.EastAsianWidth
	if opts.EastAsianWidth && opts.TreatEmojiAsWide {
		cond.StrictEmojiNeutral = false
	}

	return cond
}
