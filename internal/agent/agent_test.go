package agent

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codalotl/draftpatch/internal/anchor"
	"github.com/codalotl/draftpatch/internal/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoPatches = `[
  {"id": "a", "target": {"paragraph": 1, "anchor": "p1:0badf00d"}, "kind": "replace",
   "before": "Alpha text.", "after": "Alpha revised.", "rationale": {"goal": "clarity"}},
  {"id": "b", "target": {"anchor": "p2:0badf00d"}, "kind": "insert",
   "before": "", "after": [" One.", " Two."], "rationale": {"goal": "rhythm", "checks": ["voice"]}}
]`

func TestNewRequest(t *testing.T) {
	req := NewRequest("Alpha text.\n\nBeta text.", "tighten")
	require.Len(t, req.Paragraphs, 2)
	assert.Equal(t, "tighten", req.Instruction)
	assert.Equal(t, Paragraph{Ordinal: 2, Anchor: "p2:" + anchor.Fingerprint("Beta text."), Text: "Beta text."}, req.Paragraphs[1])
}

func TestDecodeStream(t *testing.T) {
	got, err := DecodeStream(context.Background(), strings.NewReader(twoPatches))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, patch.KindReplace, got[0].Kind)
	assert.Equal(t, "Alpha revised.", got[0].After.Chosen())

	assert.True(t, got[1].After.IsAlternatives())
	assert.Equal(t, []string{" One.", " Two."}, got[1].After.Values())
	assert.Equal(t, []string{"voice"}, got[1].Rationale.Checks)
}

func TestDecodeStream_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not array", `{"id": "a"}`},
		{"truncated", `[{"id": "a"}, {"id":`},
		{"bad after", `[{"id": "a", "after": 3}]`},
		{"empty", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeStream(context.Background(), strings.NewReader(tt.in))
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

// cancelAfter cancels ctx once n bytes have been read.
type cancelAfter struct {
	r      io.Reader
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) Read(p []byte) (int, error) {
	if len(p) > 4 {
		p = p[:4]
	}
	n, err := c.r.Read(p)
	c.n -= n
	if c.n <= 0 {
		c.cancel()
	}
	return n, err
}

func TestDecodeStream_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &cancelAfter{r: strings.NewReader(twoPatches), n: 20, cancel: cancel}

	got, err := DecodeStream(ctx, r)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestFileProposer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches.json")
	require.NoError(t, os.WriteFile(path, []byte(twoPatches), 0o644))

	got, err := FileProposer{Path: path}.Propose(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = FileProposer{Path: filepath.Join(t.TempDir(), "missing.json")}.Propose(context.Background(), Request{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProposerFunc(t *testing.T) {
	var seen Request
	p := ProposerFunc(func(ctx context.Context, req Request) ([]patch.Patch, error) {
		seen = req
		return nil, nil
	})
	_, err := p.Propose(context.Background(), NewRequest("x", "do it"))
	require.NoError(t, err)
	assert.Equal(t, "do it", seen.Instruction)
}
