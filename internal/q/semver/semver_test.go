package semver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"v0.0.0", Version{}},
		{"v1.2.3", Version{1, 2, 3}},
		{"1.2.3", Version{1, 2, 3}},
		{"V10.0.42", Version{10, 0, 42}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		in     string
		offset int
	}{
		{"", -1},
		{"v", 1},
		{"v1", 2},
		{"v1.2", 4},
		{"v1.2.", 5},
		{"v01.2.3", 1},
		{"v1.2.3-rc1", 6},
		{"v1.x.3", 3},
		{"v99999999999999999999.0.0", 1},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "err=%v", err)
			assert.Equal(t, tt.offset, pe.Offset)
			assert.Equal(t, tt.in, pe.Input)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"v1.0.0", "v2.0.0", -1},
		{"v2.0.0", "v1.9.9", 1},
		{"v1.2.0", "v1.10.0", -1},
		{"v1.2.3", "v1.2.4", -1},
		{"v1.2.5", "v1.2.4", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, tt.want < 0, a.LessThan(b))
		})
	}
}

func TestBump(t *testing.T) {
	v := MustParse("v1.4.2")
	assert.Equal(t, "v2.0.0", v.BumpMajor().String())
	assert.Equal(t, "v1.5.0", v.BumpMinor().String())
	assert.Equal(t, "v1.4.3", v.BumpPatch().String())
	assert.Equal(t, "v1.0.0", Version{}.BumpMajor().String())
}

func TestString_RoundTrip(t *testing.T) {
	for _, s := range []string{"v0.0.1", "v3.14.159", "v100.0.0"} {
		assert.Equal(t, s, MustParse(s).String())
	}
}
