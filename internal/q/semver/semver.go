// Package semver parses, compares and bumps the three-part version tags ("v1.4.2") attached to document history entries.
//
// Pre-release and build metadata are not part of the format.
package semver

import (
	"strconv"
	"strings"
)

// Version is a MAJOR.MINOR.PATCH triple. The zero value is v0.0.0.
type Version struct {
	Major uint64
	Minor uint64
	Patch uint64
}

// ParseError describes a failure to parse a version tag.
type ParseError struct {
	Input   string // The rejected input.
	Message string // Human-readable description of the failure.
	Offset  int    // Byte offset of the failure within Input, or -1 if no specific position applies.
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return "semver: " + e.Message + " at position " + strconv.Itoa(e.Offset) + " in " + strconv.Quote(e.Input)
	}
	return "semver: " + e.Message + " in " + strconv.Quote(e.Input)
}

// Parse parses a tag of the form "vMAJOR.MINOR.PATCH". The "v" prefix is optional; all three components are required and must not carry leading zeros.
func Parse(input string) (Version, error) {
	if input == "" {
		return Version{}, &ParseError{Input: input, Message: "empty input", Offset: -1}
	}
	idx := 0
	if input[0] == 'v' || input[0] == 'V' {
		idx++
	}

	var parts [3]uint64
	for i := range parts {
		if i > 0 {
			if idx >= len(input) || input[idx] != '.' {
				return Version{}, &ParseError{Input: input, Message: "expected '.'", Offset: idx}
			}
			idx++
		}
		n, next, err := parseNumber(input, idx)
		if err != nil {
			return Version{}, err
		}
		parts[i] = n
		idx = next
	}
	if idx != len(input) {
		return Version{}, &ParseError{Input: input, Message: "unexpected trailing characters", Offset: idx}
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(input string) Version {
	v, err := Parse(input)
	if err != nil {
		panic(err)
	}
	return v
}

func parseNumber(input string, start int) (uint64, int, error) {
	end := start
	for end < len(input) && '0' <= input[end] && input[end] <= '9' {
		end++
	}
	if end == start {
		return 0, start, &ParseError{Input: input, Message: "expected digit", Offset: start}
	}
	if end-start > 1 && input[start] == '0' {
		return 0, start, &ParseError{Input: input, Message: "leading zero", Offset: start}
	}
	n, err := strconv.ParseUint(input[start:end], 10, 64)
	if err != nil {
		return 0, start, &ParseError{Input: input, Message: "number out of range", Offset: start}
	}
	return n, end, nil
}

// Compare returns -1 if v < other, 1 if v > other, and 0 if they are equal.
func (v Version) Compare(other Version) int {
	switch {
	case v.Major != other.Major:
		return cmp(v.Major, other.Major)
	case v.Minor != other.Minor:
		return cmp(v.Minor, other.Minor)
	default:
		return cmp(v.Patch, other.Patch)
	}
}

func cmp(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare returns v.Compare(other) for use with slices.SortFunc and friends.
func Compare(a, b Version) int {
	return a.Compare(b)
}

// LessThan reports whether v sorts before other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// BumpMajor returns the next major version, with minor and patch reset.
func (v Version) BumpMajor() Version {
	return Version{Major: v.Major + 1}
}

// BumpMinor returns the next minor version, with patch reset.
func (v Version) BumpMinor() Version {
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// BumpPatch returns the next patch version.
func (v Version) BumpPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// String formats v as "vMAJOR.MINOR.PATCH".
func (v Version) String() string {
	var b strings.Builder
	b.Grow(16)
	b.WriteByte('v')
	b.WriteString(strconv.FormatUint(v.Major, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Minor, 10))
	b.WriteByte('.')
	b.WriteString(strconv.FormatUint(v.Patch, 10))
	return b.String()
}
