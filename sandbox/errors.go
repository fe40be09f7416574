package sandbox

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that an expected file is absent from the project.
var ErrNotFound = errors.New("file not found")

// ErrBinaryNotFound reports that the subject binary artifact for the
// selected profile does not exist on disk.
var ErrBinaryNotFound = errors.New("subject binary not found")

// PathEscapeError reports a relative path that would resolve outside
// the project directory.
type PathEscapeError struct {
	Path string
}

func (e *PathEscapeError) Error() string {
	return fmt.Sprintf("path escapes the project directory: %s", e.Path)
}

// SpawnError reports that the subject binary could not be launched at
// all. A non-zero exit code from a launched process is not a
// SpawnError; it is recorded in the CommandResult.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to launch %s: %v", e.Binary, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// MismatchError carries both sides of a failed comparison for
// diagnostic rendering. Stream names what was compared: "stdout",
// "stderr", or a file path.
type MismatchError struct {
	Stream   string
	Expected string
	Actual   string
	Diff     string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch:\n%s", e.Stream, e.Diff)
}
