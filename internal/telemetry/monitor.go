// Package telemetry tracks frame timing, bus traffic and world size over a rolling
// window and optionally writes window reports to CSV.
package telemetry

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/zeusync/scenecore/internal/core/events/bus"
	"github.com/zeusync/scenecore/internal/core/loop"
)

// Gauges are point-in-time world counts sampled at the end of each window.
type Gauges struct {
	Entities  int
	Bodies    int
	Colliders int
	Scripts   int
	Particles int
	// EventsTotal is the bus publish count since start.
	EventsTotal uint64
}

// Report summarizes one window of frames.
type Report struct {
	Frame         uint64  `csv:"frame" json:"frame"`
	SimTime       float64 `csv:"sim_time" json:"sim_time"`
	AvgFPS        float64 `csv:"avg_fps" json:"avg_fps"`
	FrameTimeMS   float64 `csv:"frame_time_ms" json:"frame_time_ms"`
	FrameStdDevMS float64 `csv:"frame_stddev_ms" json:"frame_stddev_ms"`
	TicksPerFrame float64 `csv:"ticks_per_frame" json:"ticks_per_frame"`
	Entities      int     `csv:"entities" json:"entities"`
	Bodies        int     `csv:"bodies" json:"bodies"`
	Colliders     int     `csv:"colliders" json:"colliders"`
	Scripts       int     `csv:"scripts" json:"scripts"`
	Particles     int     `csv:"particles" json:"particles"`
	Events        int     `csv:"events" json:"events"`
	EventErrors   int     `csv:"event_errors" json:"event_errors"`
	EventsTotal   uint64  `csv:"events_total" json:"events_total"`
}

// Sink receives a report at the end of every window.
type Sink interface {
	WriteReport(Report) error
}

// Monitor is a loop.Observer keeping the last Window frames. It is also a
// bus.Observer counting the events published within the current window. Last may
// be called from other goroutines.
type Monitor struct {
	mu     sync.Mutex
	window int
	fps    []float64
	frames []float64
	ticks  []float64
	seen   int
	events int
	failed int
	last   Report

	gauges func() Gauges
	sink   Sink
	onErr  func(error)
}

var (
	_ loop.Observer = (*Monitor)(nil)
	_ bus.Observer  = (*Monitor)(nil)
)

func NewMonitor(window int) *Monitor {
	if window <= 0 {
		window = 60
	}
	return &Monitor{window: window}
}

// SetGauges installs the callback sampled when a window closes.
func (m *Monitor) SetGauges(fn func() Gauges) { m.gauges = fn }

// SetSink installs a report sink; onErr receives its write failures.
func (m *Monitor) SetSink(s Sink, onErr func(error)) {
	m.sink = s
	m.onErr = onErr
}

func push(buf []float64, v float64, n int) []float64 {
	buf = append(buf, v)
	if len(buf) > n {
		buf = buf[len(buf)-n:]
	}
	return buf
}

func (m *Monitor) OnFrame(s loop.FrameStats) {
	m.mu.Lock()
	if s.Raw > 0 {
		m.fps = push(m.fps, 1/s.Raw, m.window)
		m.frames = push(m.frames, s.Raw*1000, m.window)
	}
	m.ticks = push(m.ticks, float64(s.Ticks), m.window)
	m.seen++
	closing := m.seen%m.window == 0
	var r Report
	if closing {
		r = m.reportLocked(s)
		m.last = r
		m.events, m.failed = 0, 0
	}
	m.mu.Unlock()

	if closing && m.sink != nil {
		if err := m.sink.WriteReport(r); err != nil && m.onErr != nil {
			m.onErr(err)
		}
	}
}

// OnPublish counts ev toward the open window.
func (m *Monitor) OnPublish(bus.Event) {
	m.mu.Lock()
	m.events++
	m.mu.Unlock()
}

func (m *Monitor) OnDelivered(_ bus.Event, _ int, err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()
}

func (m *Monitor) reportLocked(s loop.FrameStats) Report {
	r := Report{Frame: s.Frame, SimTime: s.SimTime, Events: m.events, EventErrors: m.failed}
	if len(m.fps) > 0 {
		r.AvgFPS = stat.Mean(m.fps, nil)
		r.FrameTimeMS = stat.Mean(m.frames, nil)
	}
	if len(m.frames) > 1 {
		r.FrameStdDevMS = stat.StdDev(m.frames, nil)
	}
	if len(m.ticks) > 0 {
		r.TicksPerFrame = stat.Mean(m.ticks, nil)
	}
	if m.gauges != nil {
		g := m.gauges()
		r.Entities, r.Bodies, r.Colliders = g.Entities, g.Bodies, g.Colliders
		r.Scripts, r.Particles = g.Scripts, g.Particles
		r.EventsTotal = g.EventsTotal
	}
	for _, v := range []*float64{&r.AvgFPS, &r.FrameTimeMS, &r.FrameStdDevMS, &r.TicksPerFrame} {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			*v = 0
		}
	}
	return r
}

// Last returns the most recent window report.
func (m *Monitor) Last() Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Reset forgets every sample.
func (m *Monitor) Reset() {
	m.mu.Lock()
	m.fps, m.frames, m.ticks = nil, nil, nil
	m.seen, m.events, m.failed = 0, 0, 0
	m.last = Report{}
	m.mu.Unlock()
}
