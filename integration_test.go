package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/isdmx/clisandbox/config"
	"github.com/isdmx/clisandbox/logger"
	"github.com/isdmx/clisandbox/mcpserver"
	"github.com/isdmx/clisandbox/sandbox"
)

// TestIntegrationConfigLoggerSandbox tests the integration between the
// config, logger, and sandbox packages
func TestIntegrationConfigLoggerSandbox(t *testing.T) {
	t.Run("ConfigAndLoggerIntegration", func(t *testing.T) {
		cfg := config.Default()
		require.NoError(t, cfg.Validate())

		testLogger, err := logger.New(cfg.Logging.Mode, cfg.Logging.Level)
		require.NoError(t, err)
		require.NotNil(t, testLogger)

		testLogger.Info("Integration test started")
		_ = testLogger.Sync()
	})

	t.Run("ProjectFromConfig", func(t *testing.T) {
		cfg := config.Default()
		cfg.Assert.Regex = true
		cfg.Sandbox.TimeoutSec = 5

		proj, err := sandbox.FromConfig(cfg, sandbox.WithLogger(zaptest.NewLogger(t)))
		require.NoError(t, err)
		defer proj.Close()

		require.NoError(t, proj.NewFile("seed.txt", "alpha\nbeta\n"))
		require.NoError(t, proj.CheckFile("seed.txt", "alpha\nbeta\n"))
	})

	t.Run("ParallelProjectsAreIsolated", func(t *testing.T) {
		const workers = 8
		done := make(chan string, workers)

		for i := 0; i < workers; i++ {
			go func() {
				proj, err := sandbox.New()
				if err != nil {
					done <- ""
					return
				}
				defer proj.Close()

				if err := proj.NewFile("marker.txt", proj.ID()); err != nil {
					done <- ""
					return
				}
				if err := proj.CheckFile("marker.txt", proj.ID()); err != nil {
					done <- ""
					return
				}
				done <- proj.Path()
			}()
		}

		seen := make(map[string]bool)
		for i := 0; i < workers; i++ {
			path := <-done
			require.NotEmpty(t, path)
			assert.False(t, seen[path], "two projects shared a directory: %s", path)
			seen[path] = true
		}
	})
}

// TestIntegrationMCPServer wires config, logger, and the MCP server
// together the way cmd/server does
func TestIntegrationMCPServer(t *testing.T) {
	cfg := config.Default()
	cfg.Subject.BinDir = t.TempDir()

	testLogger, err := logger.NewFromConfig(cfg)
	require.NoError(t, err)

	server, err := mcpserver.New(cfg, testLogger)
	require.NoError(t, err)
	require.NotNil(t, server)
	assert.NotNil(t, server.GetMCPServer())
}

// TestIntegrationFuzzStaging stages randomized content and verifies
// the round-trip law with a reproducible seed
func TestIntegrationFuzzStaging(t *testing.T) {
	proj := sandbox.Open(t)
	fuzz := sandbox.NewFuzzSource(20240815, zaptest.NewLogger(t))

	content := fuzz.Lines(50, 72)
	require.NoError(t, proj.NewFile("fuzz/body.txt", content))
	require.NoError(t, proj.CheckFile("fuzz/body.txt", content))

	replay := sandbox.NewFuzzSource(20240815, nil)
	assert.Equal(t, content, replay.Lines(50, 72))
}
