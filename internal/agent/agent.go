// Package agent is the boundary to whatever proposes patches (typically a language model). The session hands a Proposer a Request describing the document and gets
// back a batch of patches, which it validates and reconciles before they reach the queue.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/codalotl/draftpatch/internal/anchor"
	"github.com/codalotl/draftpatch/internal/document"
	"github.com/codalotl/draftpatch/internal/patch"
)

// Paragraph is one paragraph as shown to a proposer, with the anchor it should quote.
type Paragraph struct {
	Ordinal int    `json:"ordinal"` // 1-based.
	Anchor  string `json:"anchor"`
	Text    string `json:"text"`
}

// Request is what a proposer sees: a snapshot of the document at the time of the call.
type Request struct {
	Text        string      `json:"text"`
	Paragraphs  []Paragraph `json:"paragraphs"`
	Instruction string      `json:"instruction,omitempty"`
}

// NewRequest splits text into paragraphs and mints an anchor for each.
func NewRequest(text, instruction string) Request {
	paras := document.Paragraphs(text)
	req := Request{Text: text, Instruction: instruction, Paragraphs: make([]Paragraph, len(paras))}
	for i, p := range paras {
		req.Paragraphs[i] = Paragraph{Ordinal: i + 1, Anchor: anchor.Mint(paras, i).String(), Text: p}
	}
	return req
}

// Proposer produces patches for a request. Implementations must return promptly with ctx.Err() once ctx is done; any patches produced before cancellation are
// discarded by the caller.
type Proposer interface {
	Propose(ctx context.Context, req Request) ([]patch.Patch, error)
}

// ProposerFunc adapts a function to Proposer.
type ProposerFunc func(ctx context.Context, req Request) ([]patch.Patch, error)

func (f ProposerFunc) Propose(ctx context.Context, req Request) ([]patch.Patch, error) {
	return f(ctx, req)
}

// DecodeStream decodes a JSON array of patches one element at a time, checking ctx between elements. On any error (including cancellation) it returns no patches.
func DecodeStream(ctx context.Context, r io.Reader) ([]patch.Patch, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode patches: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, errors.New("decode patches: expected a JSON array")
	}

	var out []patch.Patch
	for dec.More() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var p patch.Patch
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode patch %d: %w", len(out), err)
		}
		out = append(out, p)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode patches: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FileProposer proposes the patches stored as a JSON array in a file. The request is ignored.
type FileProposer struct {
	Path string
}

func (f FileProposer) Propose(ctx context.Context, _ Request) ([]patch.Patch, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return DecodeStream(ctx, fh)
}
