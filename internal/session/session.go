// Package session is the single controller for one manuscript being edited: it owns the text, the queue of pending patches, the history ledger and the undo/redo
// stack, and exposes every operation that mutates them.
//
// Every mutation follows the same path: the new text is recorded in history and pushed onto the undo stack, then pending patches are reconciled against the new
// paragraphs. Undo and redo restore text and reconcile but record no history. A failed operation leaves all four structures as they were.
//
// A Session is safe for concurrent use. One mutex serializes all entry points, so at most one patch is ever being resolved. Propose is the one operation that runs
// outside the lock while it waits on the proposer.
package session

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/codalotl/draftpatch/internal/diff"
	"github.com/codalotl/draftpatch/internal/document"
	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/metrics"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/q/health"
	"github.com/codalotl/draftpatch/internal/reconcile"
	"github.com/codalotl/draftpatch/internal/resolve"
	"github.com/codalotl/draftpatch/internal/undo"
)

var (
	// ErrPatchNotFound is returned when a patch ID is not pending.
	ErrPatchNotFound = errors.New("patch not found")

	// ErrAnnotationNotFound is returned by AcceptAnnotation when the literal to replace is empty or absent from the text.
	ErrAnnotationNotFound = errors.New("annotation text not found")
)

// State is a read-only view of the session after an operation.
type State struct {
	Text       string
	Paragraphs []string
	Pending    []patch.Patch
	ActiveID   string
	HistoryLen int
	Version    string // Latest history version.
	CanUndo    bool
	CanRedo    bool
	NoOp       bool // The operation left the text unchanged.
}

// Session is one editing session.
type Session struct {
	mu sync.Mutex

	text   string
	store  *patch.Store
	ledger *history.Ledger
	undo   *undo.Stack

	log         health.Ctx
	metrics     *metrics.Metrics
	resolveOpts resolve.Options
	now         func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.log = health.NewCtx(logger) }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithResolveOptions sets the thresholds used for resolution and reconciliation.
func WithResolveOptions(opts resolve.Options) Option {
	return func(s *Session) { s.resolveOpts = opts }
}

// WithClock sets the time source for history and undo records.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func newSession(opts []Option) *Session {
	s := &Session{now: time.Now, store: patch.NewStore()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// New starts a session on text. Non-empty text is recorded as the initial history entry (v1.0.0); there is nothing to undo yet.
func New(text string, opts ...Option) *Session {
	s := newSession(opts)
	s.ledger = history.New(history.WithClock(s.now))
	s.undo = undo.New(s.now)
	s.text = text
	if text != "" {
		e, _ := s.ledger.Record(text, "Initial draft", history.ChangeInitial)
		s.metrics.RecordHistory(string(history.ChangeInitial))
		s.log.Log("session started", "version", e.Version, "paragraphs", len(document.Paragraphs(text)))
	}
	return s
}

// Text returns the current text.
func (s *Session) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(false)
}

// Pending returns the pending patches in queue order.
func (s *Session) Pending() []patch.Patch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Pending()
}

// Active returns the selected patch, if any.
func (s *Session) Active() (patch.Patch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Active()
}

// History returns all history entries, oldest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Entries()
}

// HistoryEntry returns one history entry.
func (s *Session) HistoryEntry(id string) (history.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ledger.Get(id)
	if !ok {
		return history.Entry{}, history.ErrEntryNotFound
	}
	return e, nil
}

// HistoryDiff returns the line diff between two history entries.
func (s *Session) HistoryDiff(fromID, toID string) (diff.Diff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Diff(fromID, toID)
}

// Select makes id the active patch.
func (s *Session) Select(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Select(id); err != nil {
		return State{}, ErrPatchNotFound
	}
	return s.stateLocked(false), nil
}

// Reorder moves patch id to position index in the queue (clamped).
func (s *Session) Reorder(id string, index int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Reorder(id, index); err != nil {
		return State{}, ErrPatchNotFound
	}
	return s.stateLocked(false), nil
}

// ApplyManualEdit replaces the whole text with a user edit.
func (s *Session) ApplyManualEdit(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(text, "Manual edit", history.ChangeManual)
}

// ImportText replaces the whole text with imported content.
func (s *Session) ImportText(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(text, "Import", history.ChangeImport)
}

// AcceptAnnotation replaces every occurrence of the literal before with after.
func (s *Session) AcceptAnnotation(before, after string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if before == "" || !strings.Contains(s.text, before) {
		return State{}, ErrAnnotationNotFound
	}
	return s.commitLocked(strings.ReplaceAll(s.text, before, after), "Accept suggestion", history.ChangeSuggestion), nil
}

// RevertTo makes the text of history entry id current again, as a new revert entry.
func (s *Session) RevertTo(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ledger.Get(id)
	if !ok {
		return State{}, history.ErrEntryNotFound
	}
	return s.commitLocked(e.Text, "Revert to "+e.Version, history.ChangeRevert), nil
}

// Undo restores the text before the most recent mutation. NoOp is set when there is nothing to undo.
func (s *Session) Undo() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.undo.Undo()
	if !ok {
		return s.stateLocked(true)
	}
	s.setTextLocked(a.Before)
	s.log.Log("undo", "change_type", a.ChangeType, "description", a.Description)
	return s.stateLocked(false)
}

// Redo re-applies the most recently undone mutation. NoOp is set when there is nothing to redo.
func (s *Session) Redo() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.undo.Redo()
	if !ok {
		return s.stateLocked(true)
	}
	s.setTextLocked(a.After)
	s.log.Log("redo", "change_type", a.ChangeType, "description", a.Description)
	return s.stateLocked(false)
}

// commitLocked records a mutation to text: history, undo, reconciliation. Identical text is a logged no-op.
func (s *Session) commitLocked(text, description string, changeType history.ChangeType) State {
	if text == s.text {
		s.log.Log("mutation no-op", "change_type", changeType, "description", description)
		return s.stateLocked(true)
	}

	e, recorded := s.ledger.Record(text, description, changeType)
	if recorded {
		s.metrics.RecordHistory(string(changeType))
	}
	s.undo.Push(s.text, text, description, changeType)
	s.setTextLocked(text)

	s.log.Log("document mutated", "change_type", changeType, "version", e.Version, "recorded", recorded, "pending", s.store.Len())
	return s.stateLocked(false)
}

// setTextLocked replaces the text and reconciles pending patches from the old paragraphs to the new ones.
func (s *Session) setTextLocked(text string) {
	oldParas := document.Paragraphs(s.text)
	s.text = text
	s.reconcileLocked(oldParas)
}

func (s *Session) reconcileLocked(oldParas []string) {
	if s.store.Len() == 0 {
		return
	}
	res := reconcile.AfterMutation(s.store.Pending(), oldParas, document.Paragraphs(s.text), s.resolveOpts)
	s.store.Update(res.Patches)
	s.metrics.RecordStale(len(res.Stale))
	if len(res.Stale) > 0 {
		s.log.Warn("patches left stale after reconciliation", "stale", res.Stale)
	} else {
		s.log.Debug("patches reconciled", "relocated", len(res.Relocated), "refreshed", len(res.Refreshed))
	}
}

func (s *Session) stateLocked(noOp bool) State {
	st := State{
		Text:       s.text,
		Paragraphs: document.Paragraphs(s.text),
		Pending:    s.store.Pending(),
		ActiveID:   s.store.ActiveID(),
		HistoryLen: s.ledger.Len(),
		Version:    s.ledger.Version().String(),
		CanUndo:    s.undo.CanUndo(),
		CanRedo:    s.undo.CanRedo(),
		NoOp:       noOp,
	}
	return st
}
