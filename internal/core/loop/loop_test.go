package loop

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journal implements Scene, Physics and Scripts and records each call.
type journal struct {
	calls []string
	ticks int
}

func (j *journal) Update(dt float64) {
	j.calls = append(j.calls, fmt.Sprintf("scripts.update(%.3f)", dt))
}
func (j *journal) FixedUpdate(dt float64) { j.calls = append(j.calls, "scripts.fixed") }
func (j *journal) LateUpdate(dt float64)  { j.calls = append(j.calls, "scripts.late") }
func (j *journal) Step(dt float64)        { j.calls = append(j.calls, "physics.step"); j.ticks++ }

type sceneJournal struct{ j *journal }

func (s sceneJournal) Update(float64) { s.j.calls = append(s.j.calls, "scene.update") }

func newLoop(t *testing.T, cfg Config) (*Loop, *journal) {
	t.Helper()
	j := &journal{}
	l, err := New(cfg, sceneJournal{j}, j, j, nil)
	require.NoError(t, err)
	return l, j
}

func TestPhaseOrder(t *testing.T) {
	l, j := newLoop(t, Config{FixedDelta: 0.1, MaxFrameDelta: 1})
	require.NoError(t, l.Start())

	stats, err := l.Frame(0.25)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"scripts.update(0.250)",
		"physics.step", "scripts.fixed",
		"physics.step", "scripts.fixed",
		"scene.update",
		"scripts.late",
	}, j.calls)
	assert.Equal(t, 2, stats.Ticks)
	assert.InDelta(t, 0.05, stats.Accumulator, 1e-9)
}

func TestOversizedDeltaIsClampedBeforeAccumulation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"default clamp", DefaultConfig()},
		{"quarter second clamp", Config{FixedDelta: 1.0 / 60, MaxFrameDelta: 0.25}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l, j := newLoop(t, tc.cfg)
			require.NoError(t, l.Start())

			stats, err := l.Frame(5)
			require.NoError(t, err)

			assert.Equal(t, tc.cfg.MaxFrameDelta, stats.Clamped)
			assert.Equal(t, 5.0, stats.Raw)
			bound := int(math.Floor(tc.cfg.MaxFrameDelta/tc.cfg.FixedDelta + 1e-9))
			assert.LessOrEqual(t, stats.Ticks, bound)
			assert.Equal(t, stats.Ticks, j.ticks)
			assert.Less(t, stats.Accumulator, tc.cfg.FixedDelta)
		})
	}
}

func TestAccumulatorCarriesAcrossFrames(t *testing.T) {
	l, j := newLoop(t, DefaultConfig())
	require.NoError(t, l.Start())
	for range 21 {
		_, err := l.Frame(1)
		require.NoError(t, err)
	}
	// 21 frames clamped to 1/200 s is 0.105 s of simulation: six whole 1/60 s ticks.
	assert.Equal(t, 6, j.ticks)
	assert.InDelta(t, 0.105, l.SimTime(), 1e-12)
	assert.Equal(t, uint64(21), l.FrameCount())
}

func TestNegativeAndNaNDeltas(t *testing.T) {
	l, _ := newLoop(t, DefaultConfig())
	require.NoError(t, l.Start())
	for _, raw := range []float64{-1, math.NaN()} {
		stats, err := l.Frame(raw)
		require.NoError(t, err)
		assert.Zero(t, stats.Clamped)
	}
}

func TestStateMachine(t *testing.T) {
	l, _ := newLoop(t, DefaultConfig())
	assert.Equal(t, Idle, l.State())

	_, err := l.Frame(0.01)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, l.Start())
	assert.ErrorIs(t, l.Start(), ErrAlreadyStarted)

	l.Stop()
	assert.Equal(t, Stopped, l.State())
	assert.ErrorIs(t, l.Start(), ErrStopped)
	_, err = l.Frame(0.01)
	assert.ErrorIs(t, err, ErrNotRunning)
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(Config{FixedDelta: 0, MaxFrameDelta: 1}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNilSubsystems(t *testing.T) {
	l, err := New(DefaultConfig(), nil, nil, nil, nil)
	require.NoError(t, err)
	require.NoError(t, l.Start())
	_, err = l.Frame(1)
	assert.NoError(t, err)
}

func TestObserversAndRender(t *testing.T) {
	l, _ := newLoop(t, DefaultConfig())
	var frames []uint64
	rendered := 0
	l.AddObserver(ObserverFunc(func(s FrameStats) { frames = append(frames, s.Frame) }))
	l.SetRender(func(FrameStats) { rendered++ })

	require.NoError(t, l.Run(context.Background(), Repeat(0.004, 3)))

	assert.Equal(t, []uint64{0, 1, 2}, frames)
	assert.Equal(t, 3, rendered)
	assert.Equal(t, Stopped, l.State())
}

func TestRunStopsOnCancel(t *testing.T) {
	l, _ := newLoop(t, DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	l.AddObserver(ObserverFunc(func(s FrameStats) {
		if s.Frame == 2 {
			cancel()
		}
	}))

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, NewTickerDriver(time.Millisecond)) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancel")
	}
	assert.Equal(t, Stopped, l.State())
	assert.GreaterOrEqual(t, l.FrameCount(), uint64(3))
}

func TestManualDriver(t *testing.T) {
	d := NewManualDriver(0.1, 0.2)
	ctx := context.Background()
	dt, err := d.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.1, dt)
	assert.Equal(t, 1, d.Remaining())
	_, _ = d.Next(ctx)
	_, err = d.Next(ctx)
	assert.ErrorIs(t, err, ErrDriverDone)
}
