package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// resolvePath maps a relative path to its absolute location inside the
// project directory, rejecting absolute paths and any traversal that
// would escape the sandbox.
func (p *Project) resolvePath(rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", &PathEscapeError{Path: rel}
	}

	cleanName := filepath.Clean(rel)
	if cleanName == ".." || strings.HasPrefix(cleanName, ".."+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: rel}
	}

	filePath := filepath.Join(p.dir, cleanName)
	if filePath != p.dir && !strings.HasPrefix(filePath, p.dir+string(filepath.Separator)) {
		return "", &PathEscapeError{Path: rel}
	}

	return filePath, nil
}

// NewFile writes contents to rel under the project directory, creating
// intermediate directories as needed.
func (p *Project) NewFile(rel, contents string) error {
	return p.WriteFile(rel, []byte(contents))
}

// WriteFile is the byte-content form of NewFile.
func (p *Project) WriteFile(rel string, data []byte) error {
	filePath, err := p.resolvePath(rel)
	if err != nil {
		return err
	}

	if err := p.fs.MkdirAll(filepath.Dir(filePath), DirPermission); err != nil {
		return fmt.Errorf("failed to create parent directories for %s: %w", rel, err)
	}

	if err := p.fs.WriteFile(filePath, data, FilePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}

	p.logger.Debug("file staged",
		zap.String("id", p.id),
		zap.String("path", rel),
		zap.Int("bytes", len(data)))

	return nil
}

// ReadFile reads a file from the project directory.
func (p *Project) ReadFile(rel string) ([]byte, error) {
	filePath, err := p.resolvePath(rel)
	if err != nil {
		return nil, err
	}

	data, err := p.fs.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", rel, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	return data, nil
}

// RemoveFile deletes a file from the project directory.
func (p *Project) RemoveFile(rel string) error {
	filePath, err := p.resolvePath(rel)
	if err != nil {
		return err
	}

	exists, err := p.fs.FileExists(filePath)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", rel, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", rel, ErrNotFound)
	}

	if err := p.fs.Remove(filePath); err != nil {
		return fmt.Errorf("failed to remove %s: %w", rel, err)
	}
	return nil
}

// CheckFile reads rel and compares it against expected, byte for byte
// after line-ending normalization. A divergence yields a
// MismatchError carrying both values and a rendered diff; an absent
// file yields ErrNotFound.
func (p *Project) CheckFile(rel, expected string) error {
	data, err := p.ReadFile(rel)
	if err != nil {
		return err
	}

	actual := normalizeNewlines(string(data))
	want := normalizeNewlines(expected)
	if actual == want {
		return nil
	}

	return &MismatchError{
		Stream:   rel,
		Expected: want,
		Actual:   actual,
		Diff:     p.renderer.Render(want, actual),
	}
}

// RequireFile is the failing form of CheckFile: a mismatch or missing
// file fails the bound test immediately.
func (p *Project) RequireFile(rel, expected string) {
	if p.t != nil {
		p.t.Helper()
	}
	if err := p.CheckFile(rel, expected); err != nil {
		p.fail("%v", err)
	}
}

// Manifest describes a set of files to stage in one call.
type Manifest struct {
	Files []ManifestFile `yaml:"files"`
}

// ManifestFile is one (relative path, content) pair of a Manifest.
type ManifestFile struct {
	Path     string `yaml:"path"`
	Contents string `yaml:"contents"`
}

// StageManifest stages every file listed in a YAML manifest of the form:
//
//	files:
//	  - path: input/a.py
//	    contents: |
//	      print(1)
func (p *Project) StageManifest(data []byte) error {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	for _, f := range m.Files {
		if f.Path == "" {
			return fmt.Errorf("manifest entry with empty path")
		}
		if err := p.NewFile(f.Path, f.Contents); err != nil {
			return err
		}
	}
	return nil
}
