package sandbox

import (
	"fmt"
	"path"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/isdmx/clisandbox/config"
)

// MetadataFunc resolves the subject binary name from build metadata.
// It is a seam so tests can count and control resolutions.
type MetadataFunc func() (string, error)

// Locator resolves the filesystem path of the subject binary for one
// build profile. Resolution happens at most once per Locator, even
// under concurrent use; the result is read-only afterwards.
type Locator struct {
	name     string
	binDir   string
	profile  string
	fs       FileSystem
	metadata MetadataFunc

	once sync.Once
	path string
	err  error
}

// LocatorOption defines a functional option for Locator
type LocatorOption func(*Locator)

// WithLocatorFileSystem sets the FileSystem for Locator
func WithLocatorFileSystem(fs FileSystem) LocatorOption {
	return func(l *Locator) {
		l.fs = fs
	}
}

// WithMetadataFunc sets the build metadata lookup for Locator
func WithMetadataFunc(fn MetadataFunc) LocatorOption {
	return func(l *Locator) {
		l.metadata = fn
	}
}

// NewLocator creates a Locator for the given subject configuration.
func NewLocator(sub config.Subject, opts ...LocatorOption) *Locator {
	l := &Locator{
		name:     sub.Name,
		binDir:   sub.BinDir,
		profile:  sub.Profile,
		fs:       &RealFileSystem{},
		metadata: moduleBinaryName,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Resolve returns the absolute path of the subject binary, computing
// it on first call and caching it for the remainder of the process.
// A missing artifact yields ErrBinaryNotFound, never a spawn failure.
func (l *Locator) Resolve() (string, error) {
	l.once.Do(l.resolve)
	return l.path, l.err
}

func (l *Locator) resolve() {
	name := l.name
	if name == "" {
		var err error
		name, err = l.metadata()
		if err != nil {
			l.err = fmt.Errorf("failed to determine subject name: %w", err)
			return
		}
	}
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	binPath, err := filepath.Abs(filepath.Join(l.binDir, l.profile, name))
	if err != nil {
		l.err = fmt.Errorf("failed to resolve subject path: %w", err)
		return
	}

	exists, err := l.fs.FileExists(binPath)
	if err != nil {
		l.err = fmt.Errorf("failed to stat subject binary %s: %w", binPath, err)
		return
	}
	if !exists {
		l.err = fmt.Errorf("%w: %s (%s profile); build the subject before running tests", ErrBinaryNotFound, binPath, l.profile)
		return
	}

	l.path = binPath
}

// moduleBinaryName derives the subject name from the module path of
// the running test binary.
func moduleBinaryName() (string, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path == "" {
		return "", fmt.Errorf("build metadata unavailable; set subject.name explicitly")
	}
	return path.Base(info.Main.Path), nil
}

var (
	sharedLocatorOnce sync.Once
	sharedLocator     *Locator
)

// SharedLocator returns the process-wide Locator built from the
// harness configuration. All projects that do not inject their own
// locator share this one, so the metadata lookup runs at most once
// per test process.
func SharedLocator() *Locator {
	sharedLocatorOnce.Do(func() {
		cfg, err := config.New()
		if err != nil {
			cfg = config.Default()
		}
		sharedLocator = NewLocator(cfg.Subject)
	})
	return sharedLocator
}
