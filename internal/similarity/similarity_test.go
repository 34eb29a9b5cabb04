package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "both empty", a: "", b: "", want: 1},
		{name: "identical", a: "Alpha text.", b: "Alpha text.", want: 1},
		{name: "one empty", a: "abc", b: "", want: 0},
		{name: "fully different", a: "abc", b: "xyz", want: 0},
		{name: "typo", a: "Alpha text.", b: "Alfa text.", want: 1 - 2.0/11.0},
		{name: "single substitution", a: "kitten", b: "sitten", want: 1 - 1.0/6.0},
		{name: "runes not bytes", a: "café", b: "cafe", want: 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, Score(tt.b, tt.a), 1e-9)
		})
	}
}

func TestScore_Range(t *testing.T) {
	pairs := [][2]string{{"a", "bcdef"}, {"hello world", "world hello"}, {"", "x"}, {"same", "same"}}
	for _, p := range pairs {
		s := Score(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestBestWindow_ExactOccurrence(t *testing.T) {
	w, ok := BestWindow("The quick brown fox.", "brown", 0.5)
	require.True(t, ok)
	assert.Equal(t, "brown", w.Text)
	assert.Equal(t, 10, w.Start)
	assert.Equal(t, 15, w.End)
	assert.Equal(t, 1.0, w.Score)
}

func TestBestWindow_ShorterTextUsesWholeText(t *testing.T) {
	w, ok := BestWindow("Alfa text.", "Alpha text.", 0.5)
	require.True(t, ok)
	assert.Equal(t, "Alfa text.", w.Text)
	assert.InDelta(t, 0.818, w.Score, 0.001)
}

func TestBestWindow_SlidesAcrossParagraph(t *testing.T) {
	text := "She walked slowly to the old oak tree and sat down."
	w, ok := BestWindow(text, "the old oek tree", 0.5)
	require.True(t, ok)
	assert.Equal(t, "the old oak tree", w.Text)
	assert.Equal(t, text[w.Start:w.End], w.Text)
	assert.InDelta(t, 1-1.0/16.0, w.Score, 1e-9)
}

func TestBestWindow_BelowMinimum(t *testing.T) {
	_, ok := BestWindow("Completely unrelated content here.", "Alpha text.", 0.5)
	assert.False(t, ok)
}

func TestBestWindow_EmptyPattern(t *testing.T) {
	_, ok := BestWindow("anything", "", 0)
	assert.False(t, ok)
}

func TestBestWindow_MultibyteOffsets(t *testing.T) {
	text := "¡Hola, señor Núñez!"
	w, ok := BestWindow(text, "senor", 0.5)
	require.True(t, ok)
	assert.Equal(t, "señor", w.Text)
	assert.Equal(t, text[w.Start:w.End], w.Text)
}
