package sandbox

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestProjectNew(t *testing.T) {
	t.Run("CreatesDirectory", func(t *testing.T) {
		p, err := New(WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		defer p.Close()

		info, err := os.Stat(p.Path())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		assert.NotEmpty(t, p.ID())
	})

	t.Run("UniqueDirectories", func(t *testing.T) {
		p1, err := New()
		require.NoError(t, err)
		defer p1.Close()

		p2, err := New()
		require.NoError(t, err)
		defer p2.Close()

		assert.NotEqual(t, p1.Path(), p2.Path())
		assert.NotEqual(t, p1.ID(), p2.ID())
	})

	t.Run("ProvisioningFailure", func(t *testing.T) {
		fs := &MockFileSystem{mkdirTempErr: errors.New("disk full")}
		_, err := New(WithFileSystem(fs))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create project directory")
	})
}

func TestProjectClose(t *testing.T) {
	t.Run("RemovesDirectory", func(t *testing.T) {
		p, err := New()
		require.NoError(t, err)

		dir := p.Path()
		require.NoError(t, p.Close())

		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("Idempotent", func(t *testing.T) {
		p, err := New()
		require.NoError(t, err)

		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
	})

	t.Run("KeepDirPolicy", func(t *testing.T) {
		p, err := New(WithKeepDir())
		require.NoError(t, err)

		dir := p.Path()
		require.NoError(t, p.Close())

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		// Manual cleanup since the policy left it behind.
		require.NoError(t, os.RemoveAll(dir))
	})
}

func TestProjectOpen(t *testing.T) {
	p := Open(t)

	info, err := os.Stat(p.Path())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
