package injector

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/scenecore/internal/core/loop"
	"github.com/zeusync/scenecore/internal/telemetry"
)

func writeConfig(t *testing.T, body string) ConfigPath {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return ConfigPath(path)
}

func TestInitializeRuntimeDefaults(t *testing.T) {
	rt, cleanup, err := InitializeRuntime(writeConfig(t, "log:\n  level: silent\n"))
	require.NoError(t, err)
	defer cleanup()

	assert.NotNil(t, rt.Engine)
	assert.NotNil(t, rt.Monitor)
	assert.Nil(t, rt.Recorder)
	assert.Nil(t, rt.Feed)
}

func TestInitializeRuntimeWiresTelemetryAndFeed(t *testing.T) {
	csvDir := filepath.Join(t.TempDir(), "out")
	rt, cleanup, err := InitializeRuntime(writeConfig(t, `
log:
  level: silent
telemetry:
  window: 30
  csv_dir: `+csvDir+`
feed:
  enabled: true
  addr: 127.0.0.1:0
  every_frames: 10
`))
	require.NoError(t, err)
	require.NotNil(t, rt.Feed)
	require.NotNil(t, rt.Recorder)

	require.NoError(t, rt.Engine.BuildDemo())
	require.NoError(t, rt.Engine.Run(context.Background(), loop.Repeat(1.0/60, 90)))

	assert.Equal(t, uint64(9), rt.Feed.Stats().Published)
	last := rt.Monitor.Last()
	assert.Equal(t, uint64(89), last.Frame)
	assert.InDelta(t, 60.0, last.AvgFPS, 1e-6)
	assert.Equal(t, rt.Engine.Scene().Len(), last.Entities)
	assert.Positive(t, last.EventsTotal)

	require.Positive(t, rt.Engine.Bus().Subscribers())
	cleanup()
	assert.Zero(t, rt.Engine.Bus().Subscribers())

	reports, err := telemetry.ReadReports(filepath.Join(csvDir, "frames.csv"))
	require.NoError(t, err)
	require.Len(t, reports, 3)
	// The first window includes the demo's entity.created events.
	assert.GreaterOrEqual(t, reports[0].Events, rt.Engine.Scene().Len())
	assert.FileExists(t, filepath.Join(csvDir, "config.yaml"))
}

func TestInitializeRuntimeBadConfig(t *testing.T) {
	_, _, err := InitializeRuntime(writeConfig(t, "loop:\n  fixed_delta: -1\n"))
	assert.Error(t, err)

	_, _, err = InitializeRuntime(writeConfig(t, "log:\n  level: chatty\n"))
	assert.Error(t, err)
}
