// Package answer decides whether a typed response matches a clue's accepted
// answers. Matching is forgiving: punctuation, casing, a leading "what is" and
// a leading article are ignored, partial answers of three or more characters
// are accepted, and small typos are tolerated.
package answer

import (
	"regexp"
	"strings"

	"github.com/agext/levenshtein"
)

var (
	disallowed    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	interrogative = regexp.MustCompile(`^(what|who|where|when)\s+(is|are|was|were)\s+`)
	article       = regexp.MustCompile(`^(a|an|the)\s+`)
)

// minContainedLen guards substring matches against degenerate inputs like "a".
const minContainedLen = 3

// Normalize lowercases s, strips everything but ASCII letters, digits and
// whitespace, collapses whitespace, then drops one leading question clause
// and one leading article.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = disallowed.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = interrogative.ReplaceAllString(s, "")
	s = article.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Tolerance is the edit distance allowed against an accepted answer of the
// given normalized length.
func Tolerance(acceptedLen int) int {
	switch {
	case acceptedLen <= 5:
		return 1
	case acceptedLen <= 10:
		return 2
	default:
		return 3
	}
}

// IsAccepted reports whether input matches any of the accepted answers.
func IsAccepted(input string, accepted []string) bool {
	in := Normalize(input)
	if in == "" {
		return false
	}

	for _, candidate := range accepted {
		if matches(in, Normalize(candidate)) {
			return true
		}
	}
	return false
}

func matches(in, want string) bool {
	if want == "" {
		return false
	}
	if in == want {
		return true
	}
	if len(in) >= minContainedLen && strings.Contains(want, in) {
		return true
	}
	if len(want) >= minContainedLen && strings.Contains(in, want) {
		return true
	}
	return levenshtein.Distance(in, want, nil) <= Tolerance(len(want))
}
