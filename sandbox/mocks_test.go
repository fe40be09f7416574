package sandbox

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
)

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	mu    sync.Mutex
	calls []MockCall

	RunFunc func(ctx context.Context, bin string, args []string, dir string, env []string) (string, string, int, error)

	stdout   string
	stderr   string
	exitCode int
	err      error
}

// MockCall records one invocation seen by the mock
type MockCall struct {
	Bin  string
	Args []string
	Dir  string
	Env  []string
}

func (m *MockCommandRunner) RunCommand(ctx context.Context, bin string, args []string, dir string, env []string) (string, string, int, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Bin: bin, Args: args, Dir: dir, Env: env})
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, bin, args, dir, env)
	}
	return m.stdout, m.stderr, m.exitCode, m.err
}

func (m *MockCommandRunner) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// MockFileSystem implements FileSystem for testing. Unset maps fall
// back to permissive defaults.
type MockFileSystem struct {
	mkdirTempErr    error
	existsResults   map[string]bool
	readFileResults map[string][]byte
	removeAllPaths  []string
}

func (m *MockFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	if m.mkdirTempErr != nil {
		return "", m.mkdirTempErr
	}
	return os.MkdirTemp(dir, pattern)
}

func (*MockFileSystem) MkdirAll(string, os.FileMode) error {
	return nil
}

func (*MockFileSystem) WriteFile(string, []byte, os.FileMode) error {
	return nil
}

func (m *MockFileSystem) ReadFile(filename string) ([]byte, error) {
	if data, exists := m.readFileResults[filename]; exists {
		return data, nil
	}
	return nil, os.ErrNotExist
}

func (*MockFileSystem) Remove(string) error {
	return nil
}

func (m *MockFileSystem) RemoveAll(path string) error {
	m.removeAllPaths = append(m.removeAllPaths, path)
	return nil
}

func (m *MockFileSystem) FileExists(path string) (bool, error) {
	if result, exists := m.existsResults[path]; exists {
		return result, nil
	}
	return true, nil
}

// recordingT captures Fatalf calls so failing assertions can be
// observed without failing the enclosing test.
type recordingT struct {
	testing.TB
	failed  bool
	message string
}

func newRecordingT(t *testing.T) *recordingT {
	return &recordingT{TB: t}
}

func (r *recordingT) Helper() {}

func (r *recordingT) Fatalf(format string, args ...any) {
	r.failed = true
	r.message = fmt.Sprintf(format, args...)
	// Unwind like the real Fatalf would, so assertion chains stop.
	panic(r)
}

// expectFailure runs fn and reports the recorded failure message,
// requiring that fn failed the recording TB.
func expectFailure(t *testing.T, fn func(rt *recordingT)) (message string) {
	t.Helper()

	rt := newRecordingT(t)
	defer func() {
		if recovered := recover(); recovered != nil && recovered != any(rt) {
			panic(recovered)
		}
		if !rt.failed {
			t.Fatalf("expected the assertion to fail")
		}
		message = rt.message
	}()
	fn(rt)
	return
}
