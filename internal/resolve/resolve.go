// Package resolve locates a patch's target inside the current paragraphs of a document.
//
// Four strategies run in strict priority order and the first that succeeds wins:
//
//  1. exact: the first paragraph containing Before verbatim.
//  2. fingerprint: the first paragraph whose current fingerprint equals the anchor's hash.
//  3. positional: the paragraph at the anchor's ordinal (or Target.Paragraph), if in bounds.
//  4. fuzzy: the best excerpt-length window across the whole document, if it scores at least the acceptance threshold.
//
// Strategies 2 and 3 only pick a paragraph; they succeed only if that paragraph also yields text to replace (Before itself, or a window of it scoring at least the
// acceptance threshold). A malformed anchor disables strategies 2 and 3; it is never an error. Ties break by strategy priority and then by document order.
package resolve

import (
	"strings"

	"github.com/codalotl/draftpatch/internal/anchor"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/similarity"
)

// Default thresholds.
const (
	DefaultAcceptThreshold    = 0.5
	DefaultCandidateThreshold = 0.4
	DefaultPreviewWidth       = 72
)

// Options tunes resolution. Zero fields take their defaults.
type Options struct {
	AcceptThreshold    float64 // Minimum score for a fuzzy match to be used.
	CandidateThreshold float64 // Minimum score for a fuzzy window to be considered at all.
	PreviewWidth       int     // Terminal columns for previews in NotFoundError.
}

func (o Options) withDefaults() Options {
	if o.AcceptThreshold <= 0 {
		o.AcceptThreshold = DefaultAcceptThreshold
	}
	if o.CandidateThreshold <= 0 {
		o.CandidateThreshold = DefaultCandidateThreshold
	}
	if o.PreviewWidth <= 0 {
		o.PreviewWidth = DefaultPreviewWidth
	}
	return o
}

// MatchKind identifies the strategy that produced a Match.
type MatchKind int

const (
	MatchExact MatchKind = iota
	MatchFingerprint
	MatchPositional
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchExact:
		return "exact"
	case MatchFingerprint:
		return "fingerprint"
	case MatchPositional:
		return "positional"
	case MatchFuzzy:
		return "fuzzy"
	}
	return "unknown"
}

// Match is a located target.
type Match struct {
	Index int       // 0-based paragraph index.
	Text  string    // Text to replace; always a substring of paragraphs[Index] (possibly "").
	Kind  MatchKind // Strategy that found it.
	Score float64   // Similarity of Text to Before; 1 for verbatim matches.
}

// Resolve locates p in paragraphs. ok is false when no strategy succeeds.
func Resolve(paragraphs []string, p patch.Patch, opts Options) (Match, bool) {
	opts = opts.withDefaults()
	m, ok := resolve(paragraphs, p, opts)
	if !ok {
		return Match{}, false
	}
	// Final verbatim check: a match whose text is not in its paragraph is treated as a miss.
	if m.Index < 0 || m.Index >= len(paragraphs) || !strings.Contains(paragraphs[m.Index], m.Text) {
		return Match{}, false
	}
	return m, true
}

// Locate is like Resolve but reports a miss as a *NotFoundError describing the best guess.
func Locate(paragraphs []string, p patch.Patch, opts Options) (Match, error) {
	opts = opts.withDefaults()
	if m, ok := Resolve(paragraphs, p, opts); ok {
		return m, nil
	}
	return Match{}, notFound(paragraphs, p, opts)
}

func resolve(paragraphs []string, p patch.Patch, opts Options) (Match, bool) {
	before := p.Before

	if before != "" {
		for i, para := range paragraphs {
			if strings.Contains(para, before) {
				return Match{Index: i, Text: before, Kind: MatchExact, Score: 1}, true
			}
		}
	}

	a := anchor.Parse(p.Target.Anchor)

	if a.Hash != "" {
		for i, para := range paragraphs {
			if anchor.Fingerprint(para) != a.Hash {
				continue
			}
			if text, score, ok := excerptIn(para, before, opts.AcceptThreshold); ok {
				return Match{Index: i, Text: text, Kind: MatchFingerprint, Score: score}, true
			}
			break
		}
	}

	if i, ok := RecordedIndex(p); ok && i < len(paragraphs) {
		if text, score, ok := excerptIn(paragraphs[i], before, opts.AcceptThreshold); ok {
			return Match{Index: i, Text: text, Kind: MatchPositional, Score: score}, true
		}
	}

	if before == "" {
		return Match{}, false
	}
	best := Match{Index: -1, Kind: MatchFuzzy, Score: -1}
	for i, para := range paragraphs {
		w, ok := similarity.BestWindow(para, before, opts.CandidateThreshold)
		if !ok {
			continue
		}
		if w.Score == 1 {
			return Match{Index: i, Text: w.Text, Kind: MatchFuzzy, Score: 1}, true
		}
		if w.Score > best.Score {
			best.Index, best.Text, best.Score = i, w.Text, w.Score
		}
	}
	if best.Index >= 0 && best.Score >= opts.AcceptThreshold {
		return best, true
	}
	return Match{}, false
}

// RecordedIndex returns the 0-based paragraph index p was last known at: the anchor's ordinal, or Target.Paragraph when the anchor has none. The index may be out
// of bounds for the current document.
func RecordedIndex(p patch.Patch) (int, bool) {
	if i, ok := anchor.Parse(p.Target.Anchor).Index(); ok {
		return i, true
	}
	if p.Target.Paragraph > 0 {
		return p.Target.Paragraph - 1, true
	}
	return 0, false
}

// excerptIn returns the text in para that stands for before: before itself when present verbatim, otherwise the best window scoring at least min. An empty before
// matches the empty string.
func excerptIn(para, before string, min float64) (string, float64, bool) {
	if before == "" {
		return "", 1, true
	}
	if strings.Contains(para, before) {
		return before, 1, true
	}
	if w, ok := similarity.BestWindow(para, before, min); ok {
		return w.Text, w.Score, true
	}
	return "", 0, false
}
