package sandbox

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffRenderer renders an expected/actual divergence for failure
// messages.
type DiffRenderer interface {
	Render(expected, actual string) string
}

// UnifiedDiff renders a line-based unified diff. This is the default
// (pretty) strategy.
type UnifiedDiff struct{}

func (UnifiedDiff) Render(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return PlainDiff{}.Render(expected, actual)
	}
	return diff
}

// PlainDiff dumps both values verbatim.
type PlainDiff struct{}

func (PlainDiff) Render(expected, actual string) string {
	return fmt.Sprintf("expected:\n%s\nactual:\n%s", expected, actual)
}
