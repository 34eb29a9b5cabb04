// Package history is the append-only ledger of full-document snapshots. Each recorded change carries a change type and a semantic version computed from the previous
// entry: imports and initial loads bump the major version, AI patches and accepted suggestions the minor version, and manual edits and reverts the patch version.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/codalotl/draftpatch/internal/diff"
	"github.com/codalotl/draftpatch/internal/q/semver"
	"github.com/google/uuid"
)

// ErrEntryNotFound is returned when a history entry ID is unknown.
var ErrEntryNotFound = errors.New("history entry not found")

// ChangeType categorizes a document mutation.
type ChangeType string

const (
	ChangeInitial    ChangeType = "initial"
	ChangeManual     ChangeType = "manual"
	ChangeAI         ChangeType = "ai"
	ChangeSuggestion ChangeType = "suggestion"
	ChangeRevert     ChangeType = "revert"
	ChangeImport     ChangeType = "import"
)

// Valid reports whether c is a known change type.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeInitial, ChangeManual, ChangeAI, ChangeSuggestion, ChangeRevert, ChangeImport:
		return true
	}
	return false
}

// Bump returns the version that follows v for a change of type c. Unknown types bump the patch version.
func (c ChangeType) Bump(v semver.Version) semver.Version {
	switch c {
	case ChangeInitial, ChangeImport:
		return v.BumpMajor()
	case ChangeAI, ChangeSuggestion:
		return v.BumpMinor()
	default:
		return v.BumpPatch()
	}
}

// Entry is one immutable snapshot.
type Entry struct {
	ID          string     `json:"id"`
	Timestamp   time.Time  `json:"timestamp"`
	Text        string     `json:"text"`
	Description string     `json:"description"`
	ChangeType  ChangeType `json:"change_type"`
	Version     string     `json:"version"` // "vMAJOR.MINOR.PATCH"
}

// Ledger is an append-only list of entries. It is not safe for concurrent use.
type Ledger struct {
	entries []Entry
	latest  semver.Version

	now   func() time.Time
	newID func() string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDs sets the entry ID generator.
func WithIDs(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now, newID: uuid.NewString}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Restore rebuilds a ledger from persisted entries. Every entry needs an ID, a known change type and a parsable version, and versions must strictly increase.
func Restore(entries []Entry, opts ...Option) (*Ledger, error) {
	l := New(opts...)
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		if e.ID == "" || seen[e.ID] {
			return nil, fmt.Errorf("history: entry %d: missing or duplicate id", i)
		}
		seen[e.ID] = true
		if !e.ChangeType.Valid() {
			return nil, fmt.Errorf("history: entry %d: unknown change type %q", i, e.ChangeType)
		}
		v, err := semver.Parse(e.Version)
		if err != nil {
			return nil, fmt.Errorf("history: entry %d: %w", i, err)
		}
		if i > 0 && !l.latest.LessThan(v) {
			return nil, fmt.Errorf("history: entry %d: version %s does not follow %s", i, v, l.latest)
		}
		l.entries = append(l.entries, e)
		l.latest = v
	}
	return l, nil
}

// Record appends an entry for text unless text equals the latest entry's text, in which case it returns the latest entry and false.
func (l *Ledger) Record(text, description string, changeType ChangeType) (Entry, bool) {
	if n := len(l.entries); n > 0 && l.entries[n-1].Text == text {
		return l.entries[n-1], false
	}
	v := changeType.Bump(l.latest)
	e := Entry{
		ID:          l.newID(),
		Timestamp:   l.now(),
		Text:        text,
		Description: description,
		ChangeType:  changeType,
		Version:     v.String(),
	}
	l.entries = append(l.entries, e)
	l.latest = v
	return e, true
}

// Revert records the text of entry id as a new revert entry. Reverting to the latest text is a no-op (false).
func (l *Ledger) Revert(id string) (Entry, bool, error) {
	target, ok := l.Get(id)
	if !ok {
		return Entry{}, false, ErrEntryNotFound
	}
	e, recorded := l.Record(target.Text, "Revert to "+target.Version, ChangeRevert)
	return e, recorded, nil
}

// Entries returns a copy of all entries, oldest first.
func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Latest returns the newest entry.
func (l *Ledger) Latest() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Version returns the latest version (v0.0.0 for an empty ledger).
func (l *Ledger) Version() semver.Version {
	return l.latest
}

// Get returns the entry with the given ID.
func (l *Ledger) Get(id string) (Entry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Diff returns the line diff between two entries' texts.
func (l *Ledger) Diff(fromID, toID string) (diff.Diff, error) {
	from, ok := l.Get(fromID)
	if !ok {
		return diff.Diff{}, fmt.Errorf("%w: %s", ErrEntryNotFound, fromID)
	}
	to, ok := l.Get(toID)
	if !ok {
		return diff.Diff{}, fmt.Errorf("%w: %s", ErrEntryNotFound, toID)
	}
	return diff.DiffText(from.Text, to.Text), nil
}
