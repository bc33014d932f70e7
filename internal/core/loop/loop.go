// Package loop drives a simulation with a variable-rate frame step layered over a
// fixed-rate physics step.
package loop

import (
	"context"
	"errors"
	"math"

	"github.com/zeusync/scenecore/internal/core/observability/log"
)

var (
	ErrAlreadyStarted = errors.New("loop: already started")
	ErrStopped        = errors.New("loop: stopped loops cannot restart")
	ErrNotRunning     = errors.New("loop: not running")
	ErrInvalidConfig  = errors.New("loop: fixed and max frame delta must be positive")
)

type State uint8

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// Scene is stepped once per frame with the clamped delta.
type Scene interface {
	Update(dt float64)
}

// Physics is stepped once per fixed tick.
type Physics interface {
	Step(dt float64)
}

// Scripts receives the three behavior phases.
type Scripts interface {
	Update(dt float64)
	FixedUpdate(dt float64)
	LateUpdate(dt float64)
}

// Observer is notified after every frame.
type Observer interface {
	OnFrame(FrameStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameStats)

func (f ObserverFunc) OnFrame(s FrameStats) { f(s) }

// FrameStats describes one completed frame.
type FrameStats struct {
	Frame       uint64  `csv:"frame"`
	Raw         float64 `csv:"raw_delta"`
	Clamped     float64 `csv:"clamped_delta"`
	Ticks       int     `csv:"ticks"`
	Accumulator float64 `csv:"accumulator"`
	SimTime     float64 `csv:"sim_time"`
	FixedTime   float64 `csv:"fixed_time"`
}

type Config struct {
	FixedDelta    float64
	MaxFrameDelta float64
}

func DefaultConfig() Config {
	return Config{FixedDelta: 1.0 / 60, MaxFrameDelta: 1.0 / 200}
}

// Loop owns the accumulator and phase ordering. It is single-threaded: Frame and
// Run must be called from the simulation goroutine only.
type Loop struct {
	cfg     Config
	state   State
	scene   Scene
	physics Physics
	scripts Scripts

	accumulator float64
	frame       uint64
	simTime     float64
	fixedTime   float64

	render    func(FrameStats)
	observers []Observer
	log       log.Log
}

// New builds an idle loop. Any of scene, physics and scripts may be nil.
func New(cfg Config, scene Scene, physics Physics, scripts Scripts, logger log.Log) (*Loop, error) {
	if !(cfg.FixedDelta > 0) || !(cfg.MaxFrameDelta > 0) {
		return nil, ErrInvalidConfig
	}
	return &Loop{
		cfg:     cfg,
		scene:   scene,
		physics: physics,
		scripts: scripts,
		log:     log.OrNop(logger).With(log.String("component", "loop")),
	}, nil
}

func (l *Loop) State() State                  { return l.state }
func (l *Loop) Config() Config                { return l.cfg }
func (l *Loop) FrameCount() uint64            { return l.frame }
func (l *Loop) Accumulator() float64          { return l.accumulator }
func (l *Loop) SimTime() float64              { return l.simTime }
func (l *Loop) SetRender(fn func(FrameStats)) { l.render = fn }

func (l *Loop) AddObserver(o Observer) {
	if o != nil {
		l.observers = append(l.observers, o)
	}
}

// Start moves an idle loop to running.
func (l *Loop) Start() error {
	switch l.state {
	case Running:
		return ErrAlreadyStarted
	case Stopped:
		return ErrStopped
	}
	l.state = Running
	l.log.Info("loop started",
		log.Float64("fixed_delta", l.cfg.FixedDelta),
		log.Float64("max_frame_delta", l.cfg.MaxFrameDelta))
	return nil
}

// Stop moves a running loop to stopped. Stopping twice is a no-op.
func (l *Loop) Stop() {
	if l.state != Running {
		return
	}
	l.state = Stopped
	l.log.Info("loop stopped", log.Uint64("frames", l.frame), log.Float64("sim_time", l.simTime))
}

// Frame advances the simulation by one host frame. The raw delta is clamped before
// it reaches the accumulator, which bounds the ticks per frame to
// MaxFrameDelta/FixedDelta.
func (l *Loop) Frame(raw float64) (FrameStats, error) {
	if l.state != Running {
		return FrameStats{}, ErrNotRunning
	}
	dt := raw
	if math.IsNaN(dt) || dt < 0 {
		dt = 0
	}
	dt = math.Min(dt, l.cfg.MaxFrameDelta)

	if l.scripts != nil {
		l.scripts.Update(dt)
	}

	l.accumulator += dt
	ticks := 0
	for l.accumulator >= l.cfg.FixedDelta {
		if l.physics != nil {
			l.physics.Step(l.cfg.FixedDelta)
		}
		if l.scripts != nil {
			l.scripts.FixedUpdate(l.cfg.FixedDelta)
		}
		l.accumulator -= l.cfg.FixedDelta
		l.fixedTime += l.cfg.FixedDelta
		ticks++
	}

	if l.scene != nil {
		l.scene.Update(dt)
	}
	if l.scripts != nil {
		l.scripts.LateUpdate(dt)
	}

	l.simTime += dt
	stats := FrameStats{
		Frame:       l.frame,
		Raw:         raw,
		Clamped:     dt,
		Ticks:       ticks,
		Accumulator: l.accumulator,
		SimTime:     l.simTime,
		FixedTime:   l.fixedTime,
	}
	l.frame++

	if l.render != nil {
		l.render(stats)
	}
	for _, o := range l.observers {
		o.OnFrame(stats)
	}
	return stats, nil
}

// Run starts the loop if needed and pulls deltas from d until ctx is cancelled or
// the driver runs dry, then stops the loop. Cancellation is a clean shutdown and
// returns nil.
func (l *Loop) Run(ctx context.Context, d Driver) error {
	if l.state == Idle {
		if err := l.Start(); err != nil {
			return err
		}
	}
	if l.state != Running {
		return ErrNotRunning
	}
	defer l.Stop()

	for {
		dt, err := d.Next(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrDriverDone), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil
		default:
			l.log.Error("driver failed", log.Error(err))
			return err
		}
		if _, err := l.Frame(dt); err != nil {
			return err
		}
	}
}
