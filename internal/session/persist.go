package session

import (
	"fmt"

	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/snapshot"
	"github.com/codalotl/draftpatch/internal/undo"
)

// Snapshot captures the whole session.
func (s *Session) Snapshot() snapshot.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.State{
		Format:   snapshot.Format,
		Text:     s.text,
		History:  s.ledger.Entries(),
		Patches:  s.store.Pending(),
		ActiveID: s.store.ActiveID(),
		Undo:     s.undo.UndoActions(),
		Redo:     s.undo.RedoActions(),
		SavedAt:  s.now(),
	}
}

// Restore rebuilds a session from a snapshot. Everything is validated before the session is built: a snapshot that fails any check yields an error and no session.
func Restore(st snapshot.State, opts ...Option) (*Session, error) {
	s := newSession(opts)

	ledger, err := history.Restore(st.History, history.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	for i, p := range st.Patches {
		if err := patch.Validate(p); err != nil {
			return nil, fmt.Errorf("restore session: patch %d: %w", i, err)
		}
	}
	store, err := patch.RestoreStore(st.Patches, st.ActiveID)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}

	s.text = st.Text
	s.ledger = ledger
	s.store = store
	s.undo = undo.Restore(st.Undo, st.Redo, s.now)
	s.log.Debug("session restored", "version", ledger.Version().String(), "pending", store.Len())
	return s, nil
}
