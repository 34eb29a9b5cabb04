package session

import (
	"strings"

	"github.com/codalotl/draftpatch/internal/document"
	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/resolve"
)

// ApplyState is the lifecycle of one apply request.
type ApplyState int

const (
	ApplyPending ApplyState = iota
	ApplyResolving
	ApplyApplied
	ApplyFailed
)

func (a ApplyState) String() string {
	switch a {
	case ApplyPending:
		return "pending"
	case ApplyResolving:
		return "resolving"
	case ApplyApplied:
		return "applied"
	case ApplyFailed:
		return "failed"
	}
	return "unknown"
}

// ApplyOutcome describes an ApplyPatch call.
type ApplyOutcome struct {
	State  State
	Status ApplyState
	Patch  patch.Patch   // The patch as it was when resolution started.
	Match  resolve.Match // Zero unless Status is ApplyApplied.
}

// ApplyPatch resolves patch id against the current text and, if it is found, splices in its chosen After value, records the mutation as an ai change, removes the
// patch and reconciles the rest. The queue head becomes the active patch.
//
// If the target cannot be located, nothing changes, the patch stays pending, and the error is a *resolve.NotFoundError.
func (s *Session) ApplyPatch(id string) (ApplyOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.store.Get(id)
	if !ok {
		return ApplyOutcome{Status: ApplyFailed}, ErrPatchNotFound
	}
	out := ApplyOutcome{Patch: p, Status: ApplyResolving}
	s.log.Debug("resolving patch", "patch", id, "state", out.Status)

	doc := document.Split(s.text)
	m, err := resolve.Locate(doc.Paragraphs(), p, s.resolveOpts)
	if err != nil {
		out.Status = ApplyFailed
		out.State = s.stateLocked(false)
		s.metrics.RecordFailed()
		return out, s.log.LogErr(err, "state", out.Status)
	}

	text := doc.WithParagraph(m.Index, splice(doc.Paragraph(m.Index), m.Text, p)).Text()

	// The patch leaves the queue before the mutation so that reconciliation only sees the others.
	_ = s.store.Remove(id)
	out.State = s.commitLocked(text, describe(p), history.ChangeAI)
	s.store.SelectHead()
	out.State.ActiveID = s.store.ActiveID()

	out.Status = ApplyApplied
	out.Match = m
	s.metrics.RecordApplied(string(p.Kind), m.Kind.String())
	s.log.Log("patch applied", "patch", id, "kind", p.Kind, "strategy", m.Kind, "score", m.Score, "paragraph", m.Index+1, "state", out.Status)
	return out, nil
}

// SkipPatch drops patch id without touching the text. If it was active, the selection moves to the patch that took its place (wrapping to the first).
func (s *Session) SkipPatch(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(id); err != nil {
		return State{}, ErrPatchNotFound
	}
	s.metrics.RecordSkipped()
	s.log.Log("patch skipped", "patch", id, "active", s.store.ActiveID())
	return s.stateLocked(false), nil
}

// splice applies p's chosen After value to para at the first occurrence of matched. Insert keeps matched and places After right after it; the other kinds replace
// it. An empty matched appends After to the paragraph.
func splice(para, matched string, p patch.Patch) string {
	after := p.After.Chosen()
	if matched == "" {
		return para + after
	}
	i := strings.Index(para, matched)
	if i < 0 {
		// Unreachable: resolve verifies the match is verbatim.
		return para
	}
	if p.Kind == patch.KindInsert {
		j := i + len(matched)
		return para[:j] + after + para[j:]
	}
	return para[:i] + after + para[i+len(matched):]
}

func describe(p patch.Patch) string {
	if p.Rationale.Goal != "" {
		return string(p.Kind) + ": " + p.Rationale.Goal
	}
	return string(p.Kind) + " patch " + p.ID
}
