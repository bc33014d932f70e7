package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.InDelta(t, 1.0/60.0, cfg.Loop.FixedDelta, 1e-12)
	assert.InDelta(t, 1.0/200.0, cfg.Loop.MaxFrameDelta, 1e-12)
	assert.Equal(t, 16*time.Millisecond, cfg.Loop.DriverInterval)
	assert.Equal(t, [3]float64{0, -9.81, 0}, cfg.Physics.Gravity)
	assert.Equal(t, "normalized", cfg.Physics.ImpulseModel)
	assert.Equal(t, "eased", cfg.Animation.Interpolation)
	assert.Equal(t, 60, cfg.Telemetry.Window)
	assert.False(t, cfg.Feed.Enabled)
}

func TestLoadOverridesOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  max_frame_delta: 0.25\nphysics:\n  impulse_model: raw\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Loop.MaxFrameDelta)
	assert.InDelta(t, 1.0/60.0, cfg.Loop.FixedDelta, 1e-12)
	assert.Equal(t, "raw", cfg.Physics.ImpulseModel)
	assert.Equal(t, 0.5, cfg.Animation.BlendDuration)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loop:\n  fixed_delta: 0\nanimation:\n  interpolation: cubic\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFixedDelta)
	assert.ErrorIs(t, err, ErrInvalidInterpolation)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Feed.Enabled = true
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
