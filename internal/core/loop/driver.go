package loop

import (
	"context"
	"errors"
	"time"
)

// ErrDriverDone tells Run that a driver has no more frames.
var ErrDriverDone = errors.New("loop: driver exhausted")

// Driver supplies frame deltas in seconds. Next blocks until the next frame is due.
type Driver interface {
	Next(ctx context.Context) (float64, error)
}

// TickerDriver paces frames with a wall-clock ticker and reports the real elapsed
// time between them.
type TickerDriver struct {
	interval time.Duration
	now      func() time.Time
	ticker   *time.Ticker
	last     time.Time
}

func NewTickerDriver(interval time.Duration) *TickerDriver {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &TickerDriver{interval: interval, now: time.Now}
}

func (d *TickerDriver) Next(ctx context.Context) (float64, error) {
	if d.ticker == nil {
		d.ticker = time.NewTicker(d.interval)
		d.last = d.now()
	}
	select {
	case <-ctx.Done():
		d.Close()
		return 0, ctx.Err()
	case <-d.ticker.C:
		now := d.now()
		dt := now.Sub(d.last).Seconds()
		d.last = now
		return dt, nil
	}
}

// Close releases the ticker.
func (d *TickerDriver) Close() {
	if d.ticker != nil {
		d.ticker.Stop()
		d.ticker = nil
	}
}

// ManualDriver replays a fixed list of deltas, then reports ErrDriverDone.
type ManualDriver struct {
	deltas []float64
	pos    int
}

func NewManualDriver(deltas ...float64) *ManualDriver {
	return &ManualDriver{deltas: deltas}
}

// Repeat builds a driver yielding dt n times.
func Repeat(dt float64, n int) *ManualDriver {
	deltas := make([]float64, n)
	for i := range deltas {
		deltas[i] = dt
	}
	return NewManualDriver(deltas...)
}

func (d *ManualDriver) Next(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if d.pos >= len(d.deltas) {
		return 0, ErrDriverDone
	}
	dt := d.deltas[d.pos]
	d.pos++
	return dt, nil
}

func (d *ManualDriver) Remaining() int { return len(d.deltas) - d.pos }
