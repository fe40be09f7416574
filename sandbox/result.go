package sandbox

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"
)

// CommandResult is the captured outcome of one subject invocation:
// full stdout and stderr and the process exit code. It is immutable
// once produced.
//
// Methods named with an imperative (WithStdout, EmptyStderr) fail the
// bound test immediately on mismatch, so a single call doubles as an
// assertion. Boolean-returning methods never fail implicitly.
type CommandResult struct {
	Args     []string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration

	t        testing.TB
	matcher  Matcher
	renderer DiffRenderer
}

// Code returns the raw exit status of the subject process.
func (r *CommandResult) Code() int {
	return r.ExitCode
}

// Success reports whether the subject exited with code zero.
func (r *CommandResult) Success() bool {
	return r.ExitCode == 0
}

// WithStdout asserts that the captured stdout satisfies expected
// under the configured matcher: byte equality after line-ending
// normalization by default, a regular expression match when the regex
// strategy is selected.
func (r *CommandResult) WithStdout(expected string) *CommandResult {
	r.check("stdout", expected, r.Stdout)
	return r
}

// WithStderr is WithStdout for the captured stderr.
func (r *CommandResult) WithStderr(expected string) *CommandResult {
	r.check("stderr", expected, r.Stderr)
	return r
}

// WithCode asserts on the subject's exit code.
func (r *CommandResult) WithCode(expected int) *CommandResult {
	if r.ExitCode != expected {
		r.fail("exit code mismatch: expected %d, got %d (args %v)", expected, r.ExitCode, r.Args)
	}
	return r
}

// EmptyStdout asserts that the captured stdout is empty or
// whitespace-only.
func (r *CommandResult) EmptyStdout() *CommandResult {
	if !isBlank(r.Stdout) {
		r.fail("expected empty stdout, got:\n%s", r.Stdout)
	}
	return r
}

// EmptyStderr asserts that the captured stderr is empty or
// whitespace-only.
func (r *CommandResult) EmptyStderr() *CommandResult {
	if !isBlank(r.Stderr) {
		r.fail("expected empty stderr, got:\n%s", r.Stderr)
	}
	return r
}

// StdoutMatches reports whether the captured stdout contains a match
// of the pattern anywhere. An invalid pattern panics, as with
// regexp.MustCompile.
func (r *CommandResult) StdoutMatches(pattern string) bool {
	return regexp.MustCompile(pattern).MatchString(r.Stdout)
}

// StderrMatches is StdoutMatches for the captured stderr.
func (r *CommandResult) StderrMatches(pattern string) bool {
	return regexp.MustCompile(pattern).MatchString(r.Stderr)
}

// StdoutContains reports whether the captured stdout contains the
// substring.
func (r *CommandResult) StdoutContains(s string) bool {
	return strings.Contains(r.Stdout, s)
}

// StderrContains reports whether the captured stderr contains the
// substring.
func (r *CommandResult) StderrContains(s string) bool {
	return strings.Contains(r.Stderr, s)
}

// StdoutWarns reports whether the captured stdout contains a
// "warning:" marker. Useful for checking compiler-style warnings.
func (r *CommandResult) StdoutWarns() bool {
	return strings.Contains(r.Stdout, "warning:")
}

// StderrWarns is StdoutWarns for the captured stderr.
func (r *CommandResult) StderrWarns() bool {
	return strings.Contains(r.Stderr, "warning:")
}

func (r *CommandResult) check(stream, expected, actual string) {
	ok, err := r.matcher.Match(expected, actual)
	if err != nil {
		r.fail("%s assertion: %v", stream, err)
		return
	}
	if ok {
		return
	}

	mismatch := &MismatchError{
		Stream:   stream,
		Expected: expected,
		Actual:   actual,
		Diff:     r.renderer.Render(normalizeNewlines(expected), normalizeNewlines(actual)),
	}
	r.fail("%v", mismatch)
}

func (r *CommandResult) fail(format string, args ...any) {
	if r.t != nil {
		r.t.Helper()
		r.t.Fatalf(format, args...)
		return
	}
	panic(fmt.Sprintf(format, args...))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
