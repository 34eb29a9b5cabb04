// Package snapshot serializes a whole editing session (text, history, pending patches, undo/redo) into one JSON blob and moves it through a key-value BlobStore.
//
// A snapshot is written and read as a unit, so a session is always restored atomically. Adapters for concrete stores live in the subpackages.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/codalotl/draftpatch/internal/history"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/codalotl/draftpatch/internal/undo"
)

// Format is the current snapshot format number.
const Format = 1

// ErrNotFound is returned by a BlobStore (and Load) when no blob exists for a key.
var ErrNotFound = errors.New("snapshot not found")

// BlobStore stores opaque blobs by key. Get returns ErrNotFound (possibly wrapped) for a missing key.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// State is everything needed to rebuild a session.
type State struct {
	Format   int             `json:"format"`
	Text     string          `json:"text"`
	History  []history.Entry `json:"history"`
	Patches  []patch.Patch   `json:"patches"`
	ActiveID string          `json:"active_id,omitempty"`
	Undo     []undo.Action   `json:"undo"`
	Redo     []undo.Action   `json:"redo"`
	SavedAt  time.Time       `json:"saved_at"`
}

// Encode marshals st, stamping the current Format.
func Encode(st State) ([]byte, error) {
	st.Format = Format
	return json.MarshalIndent(st, "", "  ")
}

// Decode unmarshals a snapshot and checks its format.
func Decode(data []byte) (State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if st.Format != Format {
		return State{}, fmt.Errorf("decode snapshot: unsupported format %d", st.Format)
	}
	return st, nil
}

// Save encodes st and stores it under key.
func Save(ctx context.Context, store BlobStore, key string, st State) error {
	if store == nil {
		panic("snapshot: nil BlobStore")
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	data, err := Encode(st)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

// Load fetches and decodes the snapshot under key. A missing snapshot yields an error matching ErrNotFound.
func Load(ctx context.Context, store BlobStore, key string) (State, error) {
	if store == nil {
		panic("snapshot: nil BlobStore")
	}
	if err := ValidateKey(key); err != nil {
		return State{}, err
	}
	data, err := store.Get(ctx, key)
	if err != nil {
		return State{}, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return Decode(data)
}

// ValidateKey checks that key is usable by every store: 1-128 characters from [A-Za-z0-9._-], not starting with a dot.
func ValidateKey(key string) error {
	if key == "" || len(key) > 128 {
		return fmt.Errorf("snapshot key %q: must be 1-128 characters", key)
	}
	if key[0] == '.' {
		return fmt.Errorf("snapshot key %q: must not start with '.'", key)
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '.' || c == '_' || c == '-') {
			return fmt.Errorf("snapshot key %q: invalid character %q", key, c)
		}
	}
	return nil
}
