// Package normalize canonicalizes artist and title strings so that cache
// keys stay stable across casing, punctuation, and edition-suffix variants
// ("Don't Stop (Live)" and "dont stop" map to the same entity).
package normalize

import (
	"regexp"
	"strings"
)

// KeySeparator joins the normalized artist and title halves of a cache key.
const KeySeparator = "::"

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	nonAlphanumPattern   = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)

	quoteReplacer = strings.NewReplacer(
		"‘", "'", // left single quote
		"’", "'", // right single quote
		"“", `"`, // left double quote
		"”", `"`, // right double quote
	)
)

// Normalize canonicalizes a free-text artist or title string. The step
// order is fixed: trim, lowercase, unify curly quotes, strip parenthesized
// substrings, strip everything outside [a-z0-9 whitespace], collapse
// whitespace runs, trim again. Total and idempotent; empty input yields "".
func Normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = quoteReplacer.Replace(s)
	s = parentheticalPattern.ReplaceAllString(s, " ")
	s = nonAlphanumPattern.ReplaceAllString(s, "")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CacheKey builds the cache key for an (artist, title) pair. Two songs with
// the same normalized key are the same entity regardless of raw casing or
// punctuation.
func CacheKey(artist, title string) string {
	return Normalize(artist) + KeySeparator + Normalize(title)
}
