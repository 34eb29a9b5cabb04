package history

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/codalotl/draftpatch/internal/q/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger() *Ledger {
	n := 0
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return New(
		WithIDs(func() string { n++; return fmt.Sprintf("h%d", n) }),
		WithClock(func() time.Time { return base.Add(time.Duration(n) * time.Minute) }),
	)
}

func TestRecord_Versions(t *testing.T) {
	l := newTestLedger()

	steps := []struct {
		text string
		ct   ChangeType
		want string
	}{
		{"v1", ChangeInitial, "v1.0.0"},
		{"v2", ChangeManual, "v1.0.1"},
		{"v3", ChangeManual, "v1.0.2"},
		{"v4", ChangeAI, "v1.1.0"},
		{"v5", ChangeManual, "v1.1.1"},
		{"v6", ChangeSuggestion, "v1.2.0"},
		{"v7", ChangeRevert, "v1.2.1"},
		{"v8", ChangeImport, "v2.0.0"},
		{"v9", ChangeAI, "v2.1.0"},
	}
	for _, s := range steps {
		e, ok := l.Record(s.text, "desc", s.ct)
		require.True(t, ok)
		assert.Equal(t, s.want, e.Version, s.text)
		assert.Equal(t, s.ct, e.ChangeType)
	}
	assert.Equal(t, len(steps), l.Len())
	assert.Equal(t, "v2.1.0", l.Version().String())
}

func TestRecord_NoOpOnDuplicate(t *testing.T) {
	l := newTestLedger()
	first, ok := l.Record("same", "load", ChangeInitial)
	require.True(t, ok)

	again, ok := l.Record("same", "edit", ChangeManual)
	assert.False(t, ok)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, l.Len())
}

func TestRecord_Monotonic(t *testing.T) {
	l := newTestLedger()
	types := []ChangeType{ChangeManual, ChangeAI, ChangeImport, ChangeManual, ChangeSuggestion, ChangeRevert, ChangeInitial, ChangeManual}
	var prev semver.Version
	for i, ct := range types {
		e, ok := l.Record(fmt.Sprintf("text %d", i), "", ct)
		require.True(t, ok)
		v := semver.MustParse(e.Version)
		assert.True(t, prev.LessThan(v), "%s !< %s", prev, v)
		if ct == ChangeManual {
			assert.Equal(t, prev.Major, v.Major)
			assert.Equal(t, prev.Minor, v.Minor)
		}
		prev = v
	}
}

func TestRecord_EmptyLedgerStartsAtZero(t *testing.T) {
	l := newTestLedger()
	e, _ := l.Record("x", "", ChangeManual)
	assert.Equal(t, "v0.0.1", e.Version)
}

func TestRevert(t *testing.T) {
	l := newTestLedger()
	first, _ := l.Record("draft one", "load", ChangeInitial)
	l.Record("draft two", "edit", ChangeManual)

	e, ok, err := l.Revert(first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "draft one", e.Text)
	assert.Equal(t, ChangeRevert, e.ChangeType)
	assert.Equal(t, "v1.0.2", e.Version)
	assert.Equal(t, "Revert to v1.0.0", e.Description)
	assert.Equal(t, 3, l.Len())

	// Reverting to the current text records nothing.
	_, ok, err = l.Revert(e.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, l.Len())

	_, _, err = l.Revert("nope")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestGetLatestEntries(t *testing.T) {
	l := newTestLedger()
	_, ok := l.Latest()
	assert.False(t, ok)

	a, _ := l.Record("a", "", ChangeInitial)
	b, _ := l.Record("b", "", ChangeManual)

	got, ok := l.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, a, got)

	latest, ok := l.Latest()
	require.True(t, ok)
	assert.Equal(t, b, latest)

	entries := l.Entries()
	entries[0].Text = "mutated"
	got, _ = l.Get(a.ID)
	assert.Equal(t, "a", got.Text)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 5, 5, 0, time.UTC), a.Timestamp)
}

func TestDiff(t *testing.T) {
	l := newTestLedger()
	a, _ := l.Record("one\ntwo\n", "", ChangeInitial)
	b, _ := l.Record("one\nTWO\n", "", ChangeManual)

	d, err := l.Diff(a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, d.Changed())
	assert.Equal(t, "one\ntwo\n", d.OldText)
	assert.Equal(t, "one\nTWO\n", d.NewText)

	_, err = l.Diff(a.ID, "missing")
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestRestore(t *testing.T) {
	l := newTestLedger()
	l.Record("a", "", ChangeInitial)
	l.Record("b", "", ChangeAI)

	restored, err := Restore(l.Entries())
	require.NoError(t, err)
	assert.Equal(t, l.Entries(), restored.Entries())
	e, ok := restored.Record("c", "", ChangeManual)
	require.True(t, ok)
	assert.Equal(t, "v1.1.1", e.Version)
}

func TestRestore_Rejects(t *testing.T) {
	ok := Entry{ID: "1", ChangeType: ChangeInitial, Version: "v1.0.0"}
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"bad version", []Entry{{ID: "1", ChangeType: ChangeInitial, Version: "1.0"}}},
		{"decreasing", []Entry{ok, {ID: "2", ChangeType: ChangeManual, Version: "v0.9.0"}}},
		{"repeated", []Entry{ok, {ID: "2", ChangeType: ChangeManual, Version: "v1.0.0"}}},
		{"duplicate id", []Entry{ok, {ID: "1", ChangeType: ChangeManual, Version: "v1.0.1"}}},
		{"missing id", []Entry{{ChangeType: ChangeInitial, Version: "v1.0.0"}}},
		{"unknown type", []Entry{{ID: "1", ChangeType: "bogus", Version: "v1.0.0"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Restore(tt.entries)
			assert.Error(t, err)
		})
	}
}
