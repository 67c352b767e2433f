package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/BoxPack/internal/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "boxpack.yaml", `
log:
  level: debug
server:
  addr: ":9090"
  read_timeout: 5s
solver:
  algorithm: local-search
  placement: bottom-left
  repack: bottom-left
  max_iterations: 500
  overlap:
    relax_boxes: 2
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, model.AlgorithmLocalSearch, cfg.Solver.Algorithm)
	assert.Equal(t, model.PlacementBottomLeft, cfg.Solver.Placement)
	assert.Equal(t, 500, cfg.Solver.MaxIterations)
	assert.Equal(t, 2, cfg.Solver.Overlap.RelaxBoxes)
	// Untouched keys keep their defaults.
	assert.Equal(t, model.DefaultSettings().NumNeighbors, cfg.Solver.NumNeighbors)
	assert.Equal(t, model.DefaultPenaltyWeights(), cfg.Solver.Penalty)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "boxpack.json", `{"solver": {"seed": 1, "strategy": "hill-climbing"}}`)
	t.Setenv("BOXPACK_SOLVER_SEED", "99")
	t.Setenv("BOXPACK_SOLVER_OVERLAP_DECAY_EXPONENT", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Solver.Seed)
	assert.Equal(t, 3.0, cfg.Solver.Overlap.DecayExponent)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("BOXPACK_SOLVER_PLACEMENT", "shelf-first-fit")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("placement", "bottom-left", "")
	fs.Int("iterations", 10, "")
	require.NoError(t, fs.Parse([]string{"--placement", "bottom-left"}))

	l := NewLoader()
	require.NoError(t, l.BindFlag("solver.placement", fs.Lookup("placement")))
	require.NoError(t, l.BindFlag("solver.max_iterations", fs.Lookup("iterations")))
	cfg, err := l.Load("")
	require.NoError(t, err)

	assert.Equal(t, model.PlacementBottomLeft, cfg.Solver.Placement)
	assert.Equal(t, model.DefaultSettings().MaxIterations, cfg.Solver.MaxIterations, "unset flags do not override defaults")

	assert.Error(t, l.BindFlag("solver.seed", fs.Lookup("missing")))
}

func TestLoad_RejectsInvalidSettings(t *testing.T) {
	path := writeFile(t, "bad.yaml", `
solver:
  algorithm: local-search
  neighborhood: overlap
  objective: utilization
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, model.ErrInvalidOption)

	path = writeFile(t, "bad-server.yaml", "server:\n  addr: \"\"\n")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "broken.yaml", "solver: [unterminated")
	_, err := Load(path)
	assert.Error(t, err)
}
