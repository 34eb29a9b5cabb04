// Package reconcile re-anchors pending patches after the document changes.
//
// Reconciliation is a pure function from (patches, paragraphs) to patches. Inputs are never modified; no patch is added or removed and order is preserved. For each
// patch it looks for the first paragraph holding Before verbatim, and otherwise falls back to the paragraph the patch was last known at. Fingerprints are not consulted:
// after a mutation the paragraph is expected to have changed. On a hit the patch's ordinal and anchor are rewritten, and a Before that is no longer verbatim is replaced
// by the closest window of the paragraph. A patch with no acceptable match keeps its descriptor and is reported stale; applying it later runs full resolution.
package reconcile

import (
	"strings"

	"github.com/codalotl/draftpatch/internal/anchor"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/resolve"
	"github.com/codalotl/draftpatch/internal/similarity"
)

// Result is the outcome of a reconciliation pass.
type Result struct {
	Patches   []patch.Patch // Same length and order as the input.
	Relocated []string      // IDs whose Target.Paragraph or Target.Anchor changed.
	Refreshed []string      // IDs whose Before was rewritten.
	Stale     []string      // IDs left unchanged because no acceptable match exists.
}

// Reconcile re-anchors patches against paragraphs, falling back to each patch's recorded ordinal.
func Reconcile(patches []patch.Patch, paragraphs []string, opts resolve.Options) Result {
	return run(patches, nil, paragraphs, opts)
}

// AfterMutation re-anchors patches against newParagraphs after a mutation that produced them from oldParagraphs. When Before is no longer verbatim anywhere, the
// fallback is the index where Before sat in oldParagraphs (if it did), else the recorded ordinal.
func AfterMutation(patches []patch.Patch, oldParagraphs, newParagraphs []string, opts resolve.Options) Result {
	return run(patches, oldParagraphs, newParagraphs, opts)
}

func run(patches []patch.Patch, oldParagraphs, newParagraphs []string, opts resolve.Options) Result {
	accept := opts.AcceptThreshold
	if accept <= 0 {
		accept = resolve.DefaultAcceptThreshold
	}

	res := Result{Patches: make([]patch.Patch, 0, len(patches))}
	for _, p := range patches {
		p = p.Clone()

		i, ok := exactIndex(newParagraphs, p.Before)
		if !ok {
			i, ok = fallbackIndex(p, oldParagraphs)
		}
		if !ok || i >= len(newParagraphs) {
			res.Stale = append(res.Stale, p.ID)
			res.Patches = append(res.Patches, p)
			continue
		}

		para := newParagraphs[i]
		before := p.Before
		if !strings.Contains(para, before) {
			w, found := similarity.BestWindow(para, before, accept)
			if !found {
				res.Stale = append(res.Stale, p.ID)
				res.Patches = append(res.Patches, p)
				continue
			}
			before = w.Text
		}

		anc := anchor.Mint(newParagraphs, i).String()
		if p.Target.Paragraph != i+1 || p.Target.Anchor != anc {
			res.Relocated = append(res.Relocated, p.ID)
		}
		if before != p.Before {
			res.Refreshed = append(res.Refreshed, p.ID)
		}
		p.Target.Paragraph = i + 1
		p.Target.Anchor = anc
		p.Before = before
		res.Patches = append(res.Patches, p)
	}
	return res
}

func exactIndex(paragraphs []string, before string) (int, bool) {
	if before == "" {
		return 0, false
	}
	for i, para := range paragraphs {
		if strings.Contains(para, before) {
			return i, true
		}
	}
	return 0, false
}

// fallbackIndex returns where p was before the mutation. oldParagraphs is nil for a plain Reconcile.
func fallbackIndex(p patch.Patch, oldParagraphs []string) (int, bool) {
	if i, ok := exactIndex(oldParagraphs, p.Before); ok {
		return i, true
	}
	return resolve.RecordedIndex(p)
}
