package sandbox

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/isdmx/clisandbox/config"
)

// Project is an isolated temporary directory plus the operations
// scoped to it. Every file operation and command invocation is
// confined to the project's directory subtree.
type Project struct {
	id      string
	dir     string
	keep    bool
	timeout time.Duration

	t        testing.TB
	logger   *zap.Logger
	fs       FileSystem
	runner   CommandRunner
	locator  *Locator
	matcher  Matcher
	renderer DiffRenderer

	mu     sync.Mutex
	closed bool
}

// Option defines a functional option for Project
type Option func(*Project)

// WithKeepDir leaves the project directory on disk after Close, for
// postmortem inspection.
func WithKeepDir() Option {
	return func(p *Project) {
		p.keep = true
	}
}

// WithTimeout bounds each command invocation. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Project) {
		p.timeout = d
	}
}

// WithT binds a testing.TB. Imperative assertions fail the test
// instead of panicking, with t.Helper applied.
func WithT(t testing.TB) Option {
	return func(p *Project) {
		p.t = t
	}
}

// WithLogger sets the logger for Project
func WithLogger(logger *zap.Logger) Option {
	return func(p *Project) {
		p.logger = logger
	}
}

// WithFileSystem sets the FileSystem for Project
func WithFileSystem(fs FileSystem) Option {
	return func(p *Project) {
		p.fs = fs
	}
}

// WithCommandRunner sets the CommandRunner for Project
func WithCommandRunner(runner CommandRunner) Option {
	return func(p *Project) {
		p.runner = runner
	}
}

// WithLocator sets the subject binary locator for Project
func WithLocator(locator *Locator) Option {
	return func(p *Project) {
		p.locator = locator
	}
}

// WithMatcher sets the assertion matcher strategy for Project
func WithMatcher(matcher Matcher) Option {
	return func(p *Project) {
		p.matcher = matcher
	}
}

// WithDiffRenderer sets the mismatch rendering strategy for Project
func WithDiffRenderer(renderer DiffRenderer) Option {
	return func(p *Project) {
		p.renderer = renderer
	}
}

// New creates a Project with a freshly provisioned directory under the
// system temp root. The directory name is unique per instance; the
// caller owns the handle and releases it with Close.
func New(opts ...Option) (*Project, error) {
	p := &Project{
		id:       uuid.NewString(),
		logger:   zap.NewNop(),
		fs:       &RealFileSystem{},
		runner:   &RealCommandRunner{},
		matcher:  &ExactMatcher{},
		renderer: &UnifiedDiff{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.locator == nil {
		p.locator = SharedLocator()
	}

	dir, err := p.fs.MkdirTemp("", "clisandbox-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}
	p.dir = dir

	p.logger.Debug("project created",
		zap.String("id", p.id),
		zap.String("dir", p.dir))

	return p, nil
}

// FromConfig creates a Project whose strategies follow the harness
// configuration: cleanup policy, command timeout, regex assertions,
// and diff rendering. Explicit options win over config values.
func FromConfig(cfg *config.Config, opts ...Option) (*Project, error) {
	fromCfg := []Option{
		WithTimeout(cfg.GetTimeout()),
		WithLocator(NewLocator(cfg.Subject)),
	}
	if cfg.Sandbox.KeepDirs {
		fromCfg = append(fromCfg, WithKeepDir())
	}
	if cfg.Assert.Regex {
		fromCfg = append(fromCfg, WithMatcher(&RegexMatcher{}))
	}
	if !cfg.Assert.Pretty {
		fromCfg = append(fromCfg, WithDiffRenderer(&PlainDiff{}))
	}
	return New(append(fromCfg, opts...)...)
}

// Open creates a Project bound to t. Cleanup is automatic via
// t.Cleanup; there is no need to call Close.
func Open(t testing.TB, opts ...Option) *Project {
	t.Helper()

	p, err := New(append([]Option{WithT(t)}, opts...)...)
	if err != nil {
		t.Fatalf("sandbox: open: %v", err)
	}
	t.Cleanup(func() {
		if err := p.Close(); err != nil {
			t.Errorf("sandbox: close: %v", err)
		}
	})
	return p
}

// ID returns the unique identifier of this project.
func (p *Project) ID() string {
	return p.id
}

// Path returns the absolute path of the project directory.
func (p *Project) Path() string {
	return p.dir
}

// Close removes the project directory and everything under it, unless
// the keep policy is set. Idempotent: closing an already-closed
// project is not an error.
func (p *Project) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.keep {
		p.logger.Info("keeping project directory",
			zap.String("id", p.id),
			zap.String("dir", p.dir))
		return nil
	}

	if err := p.fs.RemoveAll(p.dir); err != nil {
		return fmt.Errorf("failed to remove project directory %s: %w", p.dir, err)
	}

	p.logger.Debug("project removed", zap.String("id", p.id))
	return nil
}

// fail reports an assertion failure through the bound testing.TB, or
// panics when the project is used outside a test.
func (p *Project) fail(format string, args ...any) {
	if p.t != nil {
		p.t.Helper()
		p.t.Fatalf(format, args...)
		return
	}
	panic(fmt.Sprintf(format, args...))
}
