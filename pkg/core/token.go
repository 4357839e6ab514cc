package core

import (
	"strconv"
	"strings"
)

// Token is the bound satisfied by any alphabet unit the token engines can
// index: map-key equality for free via comparable, plus a stable string
// projection via Stringer used only for key encoding (spec.md §3). This
// expresses the source's "any value with equality and a canonical string
// projection" in a statically typed form instead of boxing into any.
type Token interface {
	comparable
	String() string
}

// StringToken is the common-case Token implementation: a bare string
// wrapped so it satisfies Stringer. Most callers indexing lexer tokens,
// identifiers, or other string-shaped symbols can use this directly instead
// of writing their own Token type.
type StringToken string

// String returns the token's own text, unchanged.
func (s StringToken) String() string { return string(s) }

// EncodeWindow produces the deterministic window/context key from spec.md
// §3: "<length>:<tok0>|<tok1>|...|<tokN-1>". The length prefix disambiguates
// windows of different sizes that would otherwise collide after joining
// (e.g. a single token "2|3" vs. the two-token window [2, 3]).
func EncodeWindow[T Token](tokens []T) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(tokens)))
	b.WriteByte(':')
	for i, t := range tokens {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(t.String())
	}
	return b.String()
}

// ASCIIFold lowercases the ASCII letters in s and leaves every other byte
// untouched. Shared by the string-alphabet engines' case-insensitive mode
// instead of strings.ToLower, which performs full Unicode case mapping
// (multi-rune expansions, locale-specific casing) that spec.md §1's Non-goal
// on Unicode normalization explicitly excludes.
func ASCIIFold(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c - 'A' + 'a'
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// SequenceEqual reports whether two token sequences hold the same tokens in
// the same order. Used for the cached-input idempotence check on
// TokenFuzzy.Search / TokenPredict.Predict (spec.md §9's fix for the
// source's "=" vs "==" typo).
func SequenceEqual[T Token](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
