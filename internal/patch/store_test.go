package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(ps []Patch) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func newStore(idList ...string) *Store {
	s := NewStore()
	for _, id := range idList {
		s.Enqueue(validPatch(id))
	}
	return s
}

func TestStore_EnqueueSelectsFirst(t *testing.T) {
	s := NewStore()
	assert.Equal(t, "", s.ActiveID())
	s.Enqueue(validPatch("a"), validPatch("b"))
	assert.Equal(t, "a", s.ActiveID())
	s.Enqueue(validPatch("c"))
	assert.Equal(t, "a", s.ActiveID())

	pending := s.Pending()
	assert.Equal(t, []string{"a", "b", "c"}, ids(pending))
	for i, p := range pending {
		assert.Equal(t, i, p.Position)
	}
}

func TestStore_RemoveRoundRobin(t *testing.T) {
	s := newStore("a", "b", "c")

	require.NoError(t, s.Select("b"))
	require.NoError(t, s.Remove("b"))
	assert.Equal(t, "c", s.ActiveID())

	// Removing the last patch wraps to the first.
	require.NoError(t, s.Remove("c"))
	assert.Equal(t, "a", s.ActiveID())

	require.NoError(t, s.Remove("a"))
	assert.Equal(t, "", s.ActiveID())
	assert.Equal(t, 0, s.Len())

	assert.ErrorIs(t, s.Remove("a"), ErrNotFound)
}

func TestStore_RemoveInactiveKeepsSelection(t *testing.T) {
	s := newStore("a", "b", "c")
	require.NoError(t, s.Select("c"))
	require.NoError(t, s.Remove("a"))
	assert.Equal(t, "c", s.ActiveID())
	assert.Equal(t, []string{"b", "c"}, ids(s.Pending()))
	p, _ := s.Get("c")
	assert.Equal(t, 1, p.Position)
}

func TestStore_Reorder(t *testing.T) {
	s := newStore("a", "b", "c", "d")
	require.NoError(t, s.Reorder("d", 0))
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids(s.Pending()))
	require.NoError(t, s.Reorder("d", 99))
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(s.Pending()))
	require.NoError(t, s.Reorder("a", 2))
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids(s.Pending()))
	assert.ErrorIs(t, s.Reorder("zz", 0), ErrNotFound)
	assert.Equal(t, "a", s.ActiveID())
}

func TestStore_UpdateOnlyTouchesDescriptors(t *testing.T) {
	s := newStore("a", "b")
	upd := validPatch("b")
	upd.Before = "Alfa text."
	upd.Target.Anchor = "p2:12345678"
	upd.After = Single("should not apply")
	upd.Rationale.Goal = "should not apply"
	s.Update([]Patch{upd, validPatch("unknown")})

	got, ok := s.Get("b")
	require.True(t, ok)
	assert.Equal(t, "Alfa text.", got.Before)
	assert.Equal(t, "p2:12345678", got.Target.Anchor)
	assert.Equal(t, "Alpha revised.", got.After.Chosen())
	assert.Equal(t, "clarity", got.Rationale.Goal)
	assert.Equal(t, 2, s.Len())
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := newStore("a")
	p, _ := s.Get("a")
	p.Before = "mutated"
	again, _ := s.Get("a")
	assert.Equal(t, "Alpha text.", again.Before)
}

func TestRestoreStore(t *testing.T) {
	s, err := RestoreStore([]Patch{validPatch("a"), validPatch("b")}, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.ActiveID())

	_, err = RestoreStore([]Patch{validPatch("a")}, "zz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = RestoreStore([]Patch{validPatch("a"), validPatch("a")}, "")
	assert.Error(t, err)
}
