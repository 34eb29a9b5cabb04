package patch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPatch(id string) Patch {
	return Patch{
		ID:        id,
		Target:    Target{Paragraph: 1, Anchor: "p1:00000000"},
		Kind:      KindReplace,
		Before:    "Alpha text.",
		After:     Single("Alpha revised."),
		Rationale: Rationale{Goal: "clarity"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(p *Patch)
		wantFields []string
	}{
		{name: "valid", mutate: func(p *Patch) {}},
		{name: "delete with empty after", mutate: func(p *Patch) { p.Kind = KindDelete; p.After = Single("") }},
		{name: "insert without before", mutate: func(p *Patch) { p.Kind = KindInsert; p.Before = "" }},
		{name: "missing anchor", mutate: func(p *Patch) { p.Target.Anchor = "" }, wantFields: []string{"Patch.Target.Anchor"}},
		{name: "missing goal", mutate: func(p *Patch) { p.Rationale.Goal = "" }, wantFields: []string{"Patch.Rationale.Goal"}},
		{name: "replace without before", mutate: func(p *Patch) { p.Before = "" }, wantFields: []string{"Patch.Before"}},
		{name: "delete without before", mutate: func(p *Patch) { p.Kind = KindDelete; p.Before = "" }, wantFields: []string{"Patch.Before"}},
		{name: "undefined after", mutate: func(p *Patch) { p.After = Payload{} }, wantFields: []string{"Patch.After"}},
		{name: "unknown kind", mutate: func(p *Patch) { p.Kind = "rewrite" }, wantFields: []string{"Patch.Kind"}},
		{name: "missing kind", mutate: func(p *Patch) { p.Kind = "" }, wantFields: []string{"Patch.Kind"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validPatch("id-1")
			tt.mutate(&p)
			err := Validate(p)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.ElementsMatch(t, tt.wantFields, ve.Fields)
		})
	}
}

func TestScreen(t *testing.T) {
	noID := validPatch("")
	bad := validPatch("bad")
	bad.Rationale.Goal = ""
	dup := validPatch("a")
	taken := validPatch("taken")

	valid, report := Screen([]Patch{validPatch("a"), noID, bad, dup, taken}, func(id string) bool { return id == "taken" })

	assert.Equal(t, 2, report.Accepted)
	assert.Equal(t, 3, report.Dropped)
	require.Len(t, valid, 2)
	assert.Equal(t, "a", valid[0].ID)
	assert.NotEmpty(t, valid[1].ID)

	require.Len(t, report.Problems, 3)
	assert.Equal(t, 2, report.Problems[0].Index)
	assert.Equal(t, 3, report.Problems[1].Index)
	assert.Contains(t, report.Problems[1].Reason, "duplicate")
	assert.Equal(t, 4, report.Problems[2].Index)
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "Rationale.Goal is required")
}

func TestScreen_AllValid(t *testing.T) {
	valid, report := Screen([]Patch{validPatch("x")}, nil)
	require.Len(t, valid, 1)
	assert.NoError(t, report.Err())
}
