package namematch

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/cespare/xxhash/v2"
)

// hash64Seed is the fixed key mixed into every hash64 call so the
// function is stable across builds and across build/query symmetry
// (spec.md §3: "hash64 must be deterministic, stable across builds,
// and the same function must be used at query time").
var hash64Seed = [8]byte{0x6e, 0x6d, 0x78, 0x31, 0x73, 0x65, 0x65, 0x64} // "nmx1seed"

// splitWords splits on the ASCII space character only; other
// whitespace is preserved within tokens (spec.md §4.1).
func splitWords(s string) []string {
	if s == "" {
		return nil
	}
	var words []string
	start := -1
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

// isValidWord reports whether w has at least 2 code points and does
// not begin with an ASCII digit (spec.md §4.1).
func isValidWord(w string) bool {
	if utf8Length(w) < 2 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(w)
	return r < '0' || r > '9'
}

// utf8Length is the code-point (rune) length of s.
func utf8Length(s string) int {
	return utf8.RuneCountInString(s)
}

// hash64 is a stable, non-cryptographic 64-bit hash of s with good
// avalanche, implemented with xxhash64 seeded by a fixed key prepended
// to the input (spec.md §3, §4.1). Collisions are tolerated by design:
// they only produce candidate name_hashes that the scorer later
// discards via its per-(name_id,word_id) edit-distance reduction.
func hash64(s string) uint64 {
	d := xxhash.New()
	d.Write(hash64Seed[:])
	d.Write([]byte(s))
	return d.Sum64()
}

// levenshteinDistance is the standard code-point Levenshtein distance
// between a and b (spec.md §4.1), computed by agext/levenshtein rather
// than a hand-rolled DP table.
func levenshteinDistance(a, b string) int {
	return levenshtein.Distance(a, b, nil)
}

// asciiProject narrows a UTF-8 word to its ASCII subsequence, the
// input double_metaphone consumes (spec.md §3: "the input to hash64
// [for metaphone keys] is the double-metaphone of an ASCII projection
// of the word"). Non-ASCII runes are dropped, not transliterated;
// behavior on all-non-ASCII tokens is implementation-defined per
// spec.md §9 and degenerates here to metaphone-of-empty-string.
func asciiProject(w string) string {
	out := make([]byte, 0, len(w))
	for _, r := range w {
		if r > 0 && r < 0x80 {
			out = append(out, byte(r))
		}
	}
	return string(out)
}
