package fsblob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codalotl/draftpatch/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	s, err := New(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	_, err = s.Get(ctx, "draft")
	assert.ErrorIs(t, err, snapshot.ErrNotFound)

	require.NoError(t, s.Put(ctx, "draft", []byte(`{"a":1}`)))
	got, err := s.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Put(ctx, "draft", []byte(`{"a":2}`)))
	got, err = s.Get(ctx, "draft")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))
}

func TestShardedLayout(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "draft", []byte("x")))

	p := s.path("draft")
	rel, err := filepath.Rel(s.Root, p)
	require.NoError(t, err)
	dir, file := filepath.Split(rel)
	assert.Len(t, filepath.Clean(dir), 2)
	assert.Len(t, file, 62)

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRejectsBadKeys(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, s.Put(context.Background(), "../escape", []byte("x")))
	_, err = s.Get(context.Background(), "")
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Put(ctx, "k", []byte("x")), context.Canceled)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, snapshot.Save(ctx, s, "novel", snapshot.State{Text: "Once."}))
	st, err := snapshot.Load(ctx, s, "novel")
	require.NoError(t, err)
	assert.Equal(t, "Once.", st.Text)
}
