package sandbox

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher decides whether captured output satisfies an expected value.
// Implementations are selected at project construction time.
type Matcher interface {
	Match(expected, actual string) (bool, error)
	Describe() string
}

// ExactMatcher requires byte equality after line-ending normalization.
// This is the default strategy.
type ExactMatcher struct{}

func (ExactMatcher) Match(expected, actual string) (bool, error) {
	return normalizeNewlines(expected) == normalizeNewlines(actual), nil
}

func (ExactMatcher) Describe() string {
	return "exact match"
}

// RegexMatcher treats the expected value as a regular expression and
// succeeds when the captured output contains a match anywhere.
type RegexMatcher struct{}

func (RegexMatcher) Match(expected, actual string) (bool, error) {
	re, err := regexp.Compile(expected)
	if err != nil {
		return false, fmt.Errorf("invalid pattern %q: %w", expected, err)
	}
	return re.MatchString(actual), nil
}

func (RegexMatcher) Describe() string {
	return "regular expression match"
}

// normalizeNewlines folds Windows line endings so comparisons are
// stable across platforms.
func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
