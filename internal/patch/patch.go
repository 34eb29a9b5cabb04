// Package patch defines proposed edits against a manuscript and the ordered queue that holds them until they are accepted or skipped.
//
// A Patch locates its target by textual context (Before) and an anchor hint (Target.Anchor) rather than by byte offsets, so it survives edits made elsewhere in the
// document. Only reconciliation rewrites a queued patch, and only its Target.Paragraph, Target.Anchor and Before fields.
package patch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the kind of edit a patch proposes.
type Kind string

const (
	KindReplace Kind = "replace" // Replace Before with After.
	KindInsert  Kind = "insert"  // Insert After immediately following Before (or at the paragraph's end when Before is empty).
	KindDelete  Kind = "delete"  // Replace Before with After, which is usually "".
	KindMove    Kind = "move"    // Replace Before with After, which holds the rearranged text.
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindReplace, KindInsert, KindDelete, KindMove:
		return true
	}
	return false
}

// RequiresBefore reports whether patches of kind k must carry a non-empty Before excerpt.
func (k Kind) RequiresBefore() bool {
	return k == KindReplace || k == KindDelete
}

// Target describes where a patch applies. Chapter and Scene are caller-supplied and informational; Paragraph is the 1-based paragraph ordinal.
type Target struct {
	Chapter   int    `json:"chapter,omitempty"`
	Scene     int    `json:"scene,omitempty"`
	Paragraph int    `json:"paragraph,omitempty"`
	Anchor    string `json:"anchor" validate:"required"`
}

// Rationale explains why a patch was proposed.
type Rationale struct {
	Goal   string   `json:"goal" validate:"required"`
	Checks []string `json:"checks,omitempty"`
}

// Patch is one proposed, localized edit.
type Patch struct {
	ID        string    `json:"id"`
	Target    Target    `json:"target"`
	Kind      Kind      `json:"kind" validate:"required"`
	Before    string    `json:"before"`
	After     Payload   `json:"after"`
	Rationale Rationale `json:"rationale"`
	Position  int       `json:"position"` // Index in the pending queue; maintained by Store.
}

// Clone returns a deep copy of p.
func (p Patch) Clone() Patch {
	out := p
	out.After = p.After.clone()
	out.Rationale.Checks = append([]string(nil), p.Rationale.Checks...)
	return out
}

// Payload is the After value of a patch: either a single replacement string or an ordered list of alternative phrasings for comparative selection. The zero value is
// undefined, which is distinct from Single("").
//
// In JSON, a Payload is a string, an array of strings, or null (undefined).
type Payload struct {
	values  []string
	multi   bool
	defined bool
}

// Single returns a payload with exactly one replacement.
func Single(s string) Payload {
	return Payload{values: []string{s}, defined: true}
}

// Alternatives returns a payload offering alternative replacements. With no arguments the payload is undefined.
func Alternatives(alts ...string) Payload {
	if len(alts) == 0 {
		return Payload{}
	}
	return Payload{values: append([]string(nil), alts...), multi: true, defined: true}
}

// Defined reports whether the payload carries a value.
func (p Payload) Defined() bool {
	return p.defined
}

// IsAlternatives reports whether the payload is a list of alternatives.
func (p Payload) IsAlternatives() bool {
	return p.multi
}

// Values returns a copy of the payload's strings (one for Single).
func (p Payload) Values() []string {
	return append([]string(nil), p.values...)
}

// Chosen returns the replacement applied when the patch is accepted: the single value, or the first alternative. It returns "" for an undefined payload.
func (p Payload) Chosen() string {
	if len(p.values) == 0 {
		return ""
	}
	return p.values[0]
}

func (p Payload) clone() Payload {
	p.values = append([]string(nil), p.values...)
	return p
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	switch {
	case !p.defined:
		return []byte("null"), nil
	case p.multi:
		return json.Marshal(p.values)
	default:
		return json.Marshal(p.values[0])
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = Payload{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Single(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var alts []string
		if err := json.Unmarshal(data, &alts); err != nil {
			return fmt.Errorf("after: %w", err)
		}
		*p = Alternatives(alts...)
		return nil
	}
	return errors.New("after: expected a string, an array of strings, or null")
}
