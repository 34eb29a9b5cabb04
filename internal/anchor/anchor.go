// Package anchor mints and parses paragraph anchors of the form "p<N>:<hash>".
//
// N is the 1-based paragraph ordinal and hash is the Fingerprint of that paragraph's text at the time the anchor was minted. An anchor is a hint: by the time it is
// read, the paragraph at N may have moved or changed.
package anchor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashLen is the number of hex digits in a fingerprint.
const HashLen = 8

// Anchor is a parsed anchor. A zero Ordinal or empty Hash means that component was missing or malformed.
type Anchor struct {
	Ordinal int    // 1-based paragraph ordinal; 0 if unknown.
	Hash    string // lowercase hex fingerprint; "" if unknown.
}

// Fingerprint returns a fast, non-cryptographic hash of text: the low 32 bits of xxHash64, as 8 lowercase hex digits.
func Fingerprint(text string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(text)))
}

// Mint returns the anchor for paragraphs[index] (index is 0-based). It panics if index is out of range.
func Mint(paragraphs []string, index int) Anchor {
	return Anchor{Ordinal: index + 1, Hash: Fingerprint(paragraphs[index])}
}

// String formats a as "p<N>:<hash>".
func (a Anchor) String() string {
	return "p" + strconv.Itoa(a.Ordinal) + ":" + a.Hash
}

// Index returns the 0-based paragraph index and whether the ordinal is known.
func (a Anchor) Index() (int, bool) {
	if a.Ordinal <= 0 {
		return 0, false
	}
	return a.Ordinal - 1, true
}

// Parse parses s leniently. Each component is returned independently: "p3:zz" yields Ordinal 3 with no Hash, and "px:0badf00d" yields the Hash with no Ordinal. A missing
// colon means only the ordinal part is considered. Parse never fails; callers check the fields they need.
func Parse(s string) Anchor {
	s = strings.TrimSpace(s)
	ordPart, hashPart, _ := strings.Cut(s, ":")

	var a Anchor
	if rest, ok := strings.CutPrefix(ordPart, "p"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			a.Ordinal = n
		}
	}
	if isHex(hashPart) {
		a.Hash = strings.ToLower(hashPart)
	}
	return a
}

// Valid reports whether s is a well-formed anchor with both components present.
func Valid(s string) bool {
	a := Parse(s)
	return a.Ordinal > 0 && a.Hash != ""
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
