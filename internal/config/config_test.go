package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30.0, cfg.Solver.AvgSpeedKmh)
	assert.Equal(t, 20, cfg.Solver.VisitBufferMinutes)
	assert.EqualValues(t, 1_000_000, cfg.Solver.DropPenalty)
	assert.Equal(t, 5*time.Second, cfg.SolveTimeout())
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logLevel: debug
server:
  addr: ":9090"
solver:
  avgSpeedKmh: 45
  timeLimitSeconds: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 45.0, cfg.Solver.AvgSpeedKmh)
	assert.Equal(t, 10*time.Second, cfg.SolveTimeout())
	// Untouched keys keep their defaults.
	assert.Equal(t, 20, cfg.Solver.VisitBufferMinutes)
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("PORT", "3000")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
