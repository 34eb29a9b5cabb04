// Package document splits manuscript text into paragraphs and joins them back.
//
// A paragraph is a run of text between blank-line boundaries: a newline followed by one or more lines that are empty or contain only spaces and tabs (a trailing
// carriage return counts as blank, so CRLF text splits the same way). Paragraphs have no identity beyond their position; indices are recomputed on every Split.
// The separators are kept so that Split(text).Text() == text for every input, and replacing one paragraph changes nothing else in the rejoined text.
package document

import (
	"regexp"
	"strings"
)

// blankLineRun matches a paragraph boundary.
var blankLineRun = regexp.MustCompile(`\r?\n(?:[ \t\r]*\n)+`)

// Document is an immutable, split view of a text.
type Document struct {
	paragraphs []string
	seps       []string // seps[i] sits between paragraphs[i] and paragraphs[i+1]
}

// Split splits text on blank-line boundaries. Empty text has zero paragraphs.
func Split(text string) Document {
	if text == "" {
		return Document{}
	}
	locs := blankLineRun.FindAllStringIndex(text, -1)
	d := Document{
		paragraphs: make([]string, 0, len(locs)+1),
		seps:       make([]string, 0, len(locs)),
	}
	prev := 0
	for _, loc := range locs {
		d.paragraphs = append(d.paragraphs, text[prev:loc[0]])
		d.seps = append(d.seps, text[loc[0]:loc[1]])
		prev = loc[1]
	}
	d.paragraphs = append(d.paragraphs, text[prev:])
	return d
}

// Paragraphs is shorthand for Split(text).Paragraphs().
func Paragraphs(text string) []string {
	return Split(text).Paragraphs()
}

// Len returns the number of paragraphs.
func (d Document) Len() int {
	return len(d.paragraphs)
}

// Paragraph returns the paragraph at index i (0-based). It panics if i is out of range.
func (d Document) Paragraph(i int) string {
	return d.paragraphs[i]
}

// Paragraphs returns a copy of the paragraphs in document order.
func (d Document) Paragraphs() []string {
	out := make([]string, len(d.paragraphs))
	copy(out, d.paragraphs)
	return out
}

// WithParagraph returns a copy of d whose paragraph i is replaced by text. Separators are unchanged. It panics if i is out of range.
//
// If text itself contains a blank line, the result's Text() will split into more paragraphs on the next Split; that is expected.
func (d Document) WithParagraph(i int, text string) Document {
	if i < 0 || i >= len(d.paragraphs) {
		panic("document: paragraph index out of range")
	}
	out := Document{
		paragraphs: d.Paragraphs(),
		seps:       append([]string(nil), d.seps...),
	}
	out.paragraphs[i] = text
	return out
}

// Text rejoins the paragraphs with their original separators.
func (d Document) Text() string {
	if len(d.paragraphs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range d.paragraphs {
		if i > 0 {
			b.WriteString(d.seps[i-1])
		}
		b.WriteString(p)
	}
	return b.String()
}
