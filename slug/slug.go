// Package slug derives URL-safe post identifiers from titles.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// Fallback is used when a title strips down to nothing, e.g. a title
// made entirely of punctuation.
const Fallback = "post"

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Make derives the base slug from a title: lower-case, strip anything
// outside [a-z0-9\s-], collapse whitespace and hyphen runs to single
// hyphens, trim edge hyphens. An empty result falls back to Fallback.
func Make(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}

// Pick returns the first free slug in the sequence base, base-1,
// base-2, … according to taken. The walk is sequential and
// deterministic; it terminates because the set of taken slugs is
// finite.
func Pick(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !taken(candidate) {
			return candidate
		}
	}
}
