package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codalotl/draftpatch/internal/diff"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/q/uni"
	"github.com/codalotl/draftpatch/internal/similarity"
)

var errAnchorNotFound = errors.New("anchor not found")

// IsNotFound reports whether err (or anything it wraps) is a resolution miss.
func IsNotFound(err error) bool {
	return errors.Is(err, errAnchorNotFound)
}

// NotFoundError reports that no strategy located a patch. Its Error() is meant for the user: it shows what was expected and what sits at the best-guess location.
type NotFoundError struct {
	PatchID   string
	Expected  string  // The patch's Before excerpt.
	BestGuess int     // 0-based index of the best-guess paragraph, or -1 if there is none.
	Score     float64 // Similarity of Found to Expected.
	Found     string  // Closest text in the best-guess paragraph.
	Preview   string  // Width-bounded, single-line preview of the best-guess paragraph.

	width int
}

func notFound(paragraphs []string, p patch.Patch, opts Options) *NotFoundError {
	e := &NotFoundError{PatchID: p.ID, Expected: p.Before, BestGuess: -1, width: opts.PreviewWidth}

	if i, ok := RecordedIndex(p); ok && i < len(paragraphs) {
		e.BestGuess = i
		if w, ok := similarity.BestWindow(paragraphs[i], p.Before, 0); ok {
			e.Found, e.Score = w.Text, w.Score
		}
	} else if p.Before != "" {
		for i, para := range paragraphs {
			w, ok := similarity.BestWindow(para, p.Before, 0)
			if ok && w.Score > e.Score {
				e.BestGuess, e.Found, e.Score = i, w.Text, w.Score
			}
		}
	}
	if e.BestGuess >= 0 {
		e.Preview = uni.Preview(paragraphs[e.BestGuess], opts.PreviewWidth, nil)
	}
	return e
}

// Error renders a multi-line, human-readable explanation.
func (e *NotFoundError) Error() string {
	width := e.previewWidth()
	var b strings.Builder
	fmt.Fprintf(&b, "could not locate the text for patch %s\n", e.PatchID)
	fmt.Fprintf(&b, "  expected: %q\n", uni.Preview(e.Expected, width, nil))
	if e.BestGuess < 0 {
		b.WriteString("  no paragraph resembles it")
		return b.String()
	}
	fmt.Fprintf(&b, "  closest:  paragraph %d (similarity %.2f): %q", e.BestGuess+1, e.Score, e.Preview)
	if e.Found != "" && e.Expected != "" {
		b.WriteString("\n  diff:     ")
		b.WriteString(uni.Preview(diff.RenderInline(diff.Inline(e.Expected, e.Found), false), width*2, nil))
	}
	return b.String()
}

// Unwrap lets IsNotFound match.
func (e *NotFoundError) Unwrap() error {
	return errAnchorNotFound
}

// LogRecord returns a compact log message and attributes.
func (e *NotFoundError) LogRecord() (string, []any) {
	return "anchor not found", []any{
		"patch", e.PatchID,
		"expected", uni.Preview(e.Expected, e.previewWidth(), nil),
		"best_guess", e.BestGuess + 1,
		"score", e.Score,
	}
}

func (e *NotFoundError) previewWidth() int {
	if e.width <= 0 {
		return DefaultPreviewWidth
	}
	return e.width
}
