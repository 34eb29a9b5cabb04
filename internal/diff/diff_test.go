package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func concatHunks(d Diff) (string, string) {
	var o, n strings.Builder
	for _, h := range d.Hunks {
		o.WriteString(h.OldText)
		n.WriteString(h.NewText)
	}
	return o.String(), n.String()
}

func TestDiffText_Invariants(t *testing.T) {
	cases := [][2]string{
		{"", ""},
		{"", "a\nb\n"},
		{"a\nb\n", ""},
		{"a\nb\nc\n", "a\nB\nc\n"},
		{"Alpha text.\n\nBeta text.", "Alpha revised.\n\nBeta text."},
		{"one\ntwo\nthree\nfour", "zero\none\ntwo\nfour\nfive"},
	}
	for _, c := range cases {
		d := DiffText(c[0], c[1])
		o, n := concatHunks(d)
		assert.Equal(t, c[0], o)
		assert.Equal(t, c[1], n)
		assert.Equal(t, c[0] != c[1], d.Changed())
		for _, h := range d.Hunks {
			switch h.Op {
			case OpEqual:
				assert.Equal(t, h.OldText, h.NewText)
			case OpInsert:
				assert.Empty(t, h.OldText)
			case OpDelete:
				assert.Empty(t, h.NewText)
			case OpReplace:
				assert.NotEmpty(t, h.OldText)
				assert.NotEmpty(t, h.NewText)
			}
		}
	}
}

func TestDiffText_GroupsReplacement(t *testing.T) {
	d := DiffText("a\nb\nc\n", "a\nB\nc\n")
	require.Len(t, d.Hunks, 3)
	assert.Equal(t, Hunk{Op: OpReplace, OldText: "b\n", NewText: "B\n"}, d.Hunks[1])
}

func TestRenderUnified(t *testing.T) {
	d := DiffText("a\nb\nc\nd\ne\nf\ng\n", "a\nb\nC\nd\ne\nf\ng\n")
	got := d.RenderUnified(false, "v1.0.0", "v1.0.1", 1)
	want := strings.Join([]string{
		"--- v1.0.0",
		"+++ v1.0.1",
		"@@ -2,3 +2,3 @@",
		" b",
		"-c",
		"+C",
		" d",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderUnified_MergesNearbyChanges(t *testing.T) {
	d := DiffText("1\n2\n3\n4\n5\n", "1\nX\n3\nY\n5\n")
	got := d.RenderUnified(false, "old", "new", 1)
	assert.Equal(t, 1, strings.Count(got, "@@ -"))
	assert.Contains(t, got, "@@ -1,5 +1,5 @@")
}

func TestRenderUnified_PureInsertAtStart(t *testing.T) {
	d := DiffText("b\n", "a\nb\n")
	got := d.RenderUnified(false, "old", "new", 0)
	assert.Contains(t, got, "@@ -0,0 +1,1 @@\n+a")
}

func TestRenderUnified_Color(t *testing.T) {
	d := DiffText("a\n", "b\n")
	got := d.RenderUnified(true, "old", "new", 0)
	assert.Contains(t, got, red+"-a"+reset)
	assert.Contains(t, got, green+"+b"+reset)
}

func TestInline(t *testing.T) {
	spans := Inline("Alpha text.", "Alfa text.")
	var o, n strings.Builder
	for _, sp := range spans {
		o.WriteString(sp.OldText)
		n.WriteString(sp.NewText)
	}
	assert.Equal(t, "Alpha text.", o.String())
	assert.Equal(t, "Alfa text.", n.String())

	rendered := RenderInline(spans, false)
	assert.Contains(t, rendered, "[-")
	assert.Contains(t, rendered, "text.")
}

func TestRenderInline_Markers(t *testing.T) {
	spans := []Span{
		{Op: OpEqual, OldText: "The ", NewText: "The "},
		{Op: OpReplace, OldText: "cat", NewText: "dog"},
		{Op: OpInsert, NewText: " barked"},
		{Op: OpDelete, OldText: " quietly"},
	}
	assert.Equal(t, "The [-cat-]{+dog+}{+ barked+}[- quietly-]", RenderInline(spans, false))
}
