package session

import (
	"context"
	"errors"
	"time"
)

// ErrDriverStopped is returned by calls made after Run has returned.
var ErrDriverStopped = errors.New("session: driver stopped")

// Driver owns a Session on a single goroutine and feeds it wall time. Input
// from any goroutine is queued onto that goroutine, so the frame, spawn and
// combo tasks never race with pointer or click handling.
type Driver struct {
	s        *Session
	interval time.Duration
	inbox    chan func(*Session)
	stopped  chan struct{}
}

// NewDriver wraps s. Observers and metrics must be attached to s before Run.
func NewDriver(s *Session, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = s.cfg.FrameInterval()
	}
	return &Driver{
		s:        s,
		interval: interval,
		inbox:    make(chan func(*Session), 64),
		stopped:  make(chan struct{}),
	}
}

// Run pumps frames until ctx is cancelled. A running session is ended as
// cancelled on the way out.
func (d *Driver) Run(ctx context.Context) error {
	defer close(d.stopped)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.s.End()
			return ctx.Err()
		case fn := <-d.inbox:
			fn(d.s)
		case now := <-ticker.C:
			elapsed := now.Sub(last)
			last = now
			d.s.Advance(elapsed)
		}
	}
}

// Do queues fn to run on the session goroutine and returns immediately.
func (d *Driver) Do(fn func(*Session)) error {
	select {
	case <-d.stopped:
		return ErrDriverStopped
	default:
	}
	select {
	case d.inbox <- fn:
		return nil
	case <-d.stopped:
		return ErrDriverStopped
	}
}

// Call runs fn on the session goroutine and waits for it to finish.
func (d *Driver) Call(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	err := d.Do(func(s *Session) {
		fn(s)
		close(done)
	})
	if err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-d.stopped:
		return ErrDriverStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) Start() error { return d.Do(func(s *Session) { s.Start() }) }

func (d *Driver) End() error {
	return d.Do(func(s *Session) { s.End() })
}

func (d *Driver) SetPointer(x, y float64) error {
	return d.Do(func(s *Session) { s.SetPointer(x, y) })
}

func (d *Driver) TrackPointer(x, y float64) error {
	return d.Do(func(s *Session) { s.TrackPointer(x, y) })
}

func (d *Driver) SetHover(locked bool) error {
	return d.Do(func(s *Session) { s.SetHover(locked) })
}

func (d *Driver) Click(id int) error {
	return d.Do(func(s *Session) { s.Click(id) })
}

func (d *Driver) ClickAt(x, y float64) error {
	return d.Do(func(s *Session) { s.ClickAt(x, y) })
}

// Snapshot fetches the current state from the session goroutine.
func (d *Driver) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := d.Call(ctx, func(s *Session) { snap = s.Snapshot() })
	return snap, err
}
