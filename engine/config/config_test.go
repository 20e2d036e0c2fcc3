package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.4, *cfg.Control.Low)
	assert.Equal(t, 0.6, *cfg.Control.High)
	assert.Equal(t, float32(0.1), cfg.Control.CameraStep)
	assert.Equal(t, 10, cfg.Control.ExtendEvery)
	assert.Equal(t, float32(1.5), cfg.World.LaneOffset)
	assert.Equal(t, float32(1.5), cfg.World.Step)
	assert.Equal(t, 10, cfg.World.InitialSteps)
	assert.Equal(t, 1, cfg.World.MinHeight)
	assert.Equal(t, 2, cfg.World.MaxHeight)
	assert.Equal(t, float32(2), *cfg.Camera.StartZ)
	assert.Equal(t, float32(0.5), *cfg.Camera.Height)
	assert.Equal(t, float32(0.0001), cfg.Frame.TimeScale)
}

func TestParseKeepsExplicitValues(t *testing.T) {
	cfg, err := Parse([]byte(`
renderer:
  backend: headless
camera:
  start_z: 0
control:
  extend_every: 3
classifier:
  kind: scripted
  values: [0.1, 0.9]
  loop: true
capture:
  source: pattern
`))
	require.NoError(t, err)

	assert.Equal(t, "headless", cfg.Renderer.Backend)
	assert.Equal(t, float32(0), *cfg.Camera.StartZ)
	assert.Equal(t, 3, cfg.Control.ExtendEvery)
	assert.Equal(t, []float64{0.1, 0.9}, cfg.Classifier.Values)
	assert.True(t, cfg.Classifier.Loop)
	assert.Equal(t, "pattern", cfg.Capture.Source)
	assert.Equal(t, 0.4, *cfg.Control.Low, "unset fields fall back to defaults")
}

func TestParseKeepsExplicitZeroThresholds(t *testing.T) {
	cfg, err := Parse([]byte(`
control:
  low: 0
  high: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, *cfg.Control.Low)
	assert.Equal(t, 0.0, *cfg.Control.High)

	cfg, err = Parse([]byte(`
control:
  low: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0.0, *cfg.Control.Low)
	assert.Equal(t, 0.6, *cfg.Control.High)
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`
control:
  low: 0.8
  high: 0.2
world:
  min_height: 3
  max_height: 2
renderer:
  backend: opengl
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control.low")
	assert.Contains(t, err.Error(), "world.min_height")
	assert.Contains(t, err.Error(), "renderer.backend")
}

func TestLoadFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corridor.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world:\n  seed: 42\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.World.Seed)
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
