package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayload_Variants(t *testing.T) {
	var zero Payload
	assert.False(t, zero.Defined())
	assert.Equal(t, "", zero.Chosen())

	empty := Single("")
	assert.True(t, empty.Defined())
	assert.False(t, empty.IsAlternatives())
	assert.Equal(t, "", empty.Chosen())

	alts := Alternatives("first", "second")
	assert.True(t, alts.IsAlternatives())
	assert.Equal(t, "first", alts.Chosen())
	assert.Equal(t, []string{"first", "second"}, alts.Values())

	assert.False(t, Alternatives().Defined())
}

func TestPayload_JSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Payload
		wantErr bool
	}{
		{name: "string", in: `"Alpha revised."`, want: Single("Alpha revised.")},
		{name: "empty string", in: `""`, want: Single("")},
		{name: "array", in: `["a", "b"]`, want: Alternatives("a", "b")},
		{name: "null", in: `null`, want: Payload{}},
		{name: "empty array is undefined", in: `[]`, want: Payload{}},
		{name: "number", in: `12`, wantErr: true},
		{name: "mixed array", in: `["a", 1]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Payload
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPatch_JSONShape(t *testing.T) {
	p := Patch{
		ID:        "p-1",
		Target:    Target{Chapter: 2, Scene: 1, Paragraph: 3, Anchor: "p3:0badf00d"},
		Kind:      KindReplace,
		Before:    "Alpha text.",
		After:     Alternatives("Alpha revised.", "Alpha, revised."),
		Rationale: Rationale{Goal: "tighten", Checks: []string{"voice"}},
	}
	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "p-1",
		"target": {"chapter": 2, "scene": 1, "paragraph": 3, "anchor": "p3:0badf00d"},
		"kind": "replace",
		"before": "Alpha text.",
		"after": ["Alpha revised.", "Alpha, revised."],
		"rationale": {"goal": "tighten", "checks": ["voice"]},
		"position": 0
	}`, string(b))

	var back Patch
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, p, back)
}

func TestClone_IsDeep(t *testing.T) {
	p := Patch{After: Alternatives("a", "b"), Rationale: Rationale{Checks: []string{"x"}}}
	c := p.Clone()
	c.After.values[0] = "changed"
	c.Rationale.Checks[0] = "changed"
	assert.Equal(t, "a", p.After.Chosen())
	assert.Equal(t, "x", p.Rationale.Checks[0])
}
