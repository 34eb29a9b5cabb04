// Package undo keeps the linear undo/redo log of text mutations. It is independent of the history ledger: moving through it restores text but records nothing.
package undo

import (
	"time"

	"github.com/codalotl/draftpatch/internal/history"
	"github.com/google/uuid"
)

// Action is one reversible mutation.
type Action struct {
	ID          string             `json:"id"`
	ChangeType  history.ChangeType `json:"change_type"`
	Before      string             `json:"before"`
	After       string             `json:"after"`
	Timestamp   time.Time          `json:"timestamp"`
	Description string             `json:"description"`
}

// Stack holds the undo and redo stacks. Pushing a new action clears the redo stack, so there is never more than one timeline. The zero value is ready to use.
type Stack struct {
	undo []Action
	redo []Action

	now func() time.Time
}

// New returns an empty stack. A nil now uses time.Now.
func New(now func() time.Time) *Stack {
	return &Stack{now: now}
}

// Restore rebuilds a stack from persisted actions (oldest first in each slice).
func Restore(undoActions, redoActions []Action, now func() time.Time) *Stack {
	return &Stack{
		undo: append([]Action(nil), undoActions...),
		redo: append([]Action(nil), redoActions...),
		now:  now,
	}
}

// Push records a mutation from before to after and clears the redo stack.
func (s *Stack) Push(before, after, description string, changeType history.ChangeType) Action {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	a := Action{
		ID:          uuid.NewString(),
		ChangeType:  changeType,
		Before:      before,
		After:       after,
		Timestamp:   now(),
		Description: description,
	}
	s.undo = append(s.undo, a)
	s.redo = nil
	return a
}

// Undo pops the newest action onto the redo stack and returns it. The caller restores a.Before. ok is false when there is nothing to undo.
func (s *Stack) Undo() (a Action, ok bool) {
	if len(s.undo) == 0 {
		return Action{}, false
	}
	a = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, a)
	return a, true
}

// Redo pops the newest undone action back onto the undo stack and returns it. The caller restores a.After.
func (s *Stack) Redo() (a Action, ok bool) {
	if len(s.redo) == 0 {
		return Action{}, false
	}
	a = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, a)
	return a, true
}

func (s *Stack) CanUndo() bool { return len(s.undo) > 0 }
func (s *Stack) CanRedo() bool { return len(s.redo) > 0 }

// UndoActions returns a copy of the undo stack, oldest first.
func (s *Stack) UndoActions() []Action {
	return append([]Action(nil), s.undo...)
}

// RedoActions returns a copy of the redo stack, oldest first (the next Redo returns the last element).
func (s *Stack) RedoActions() []Action {
	return append([]Action(nil), s.redo...)
}
