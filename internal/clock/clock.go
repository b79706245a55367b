// Package clock tracks the countdown of a timed session.
package clock

import (
	"fmt"
	"time"
)

type Clock struct {
	total     float64
	remaining float64
	elapsed   float64
	ticks     int
}

func New(total float64) *Clock {
	return &Clock{total: total, remaining: total}
}

func (c *Clock) Reset() {
	c.remaining = c.total
	c.elapsed = 0
	c.ticks = 0
}

// Tick consumes delta seconds.
func (c *Clock) Tick(delta float64) {
	c.remaining -= delta
	c.elapsed += delta
	c.ticks++
}

func (c *Clock) Total() float64     { return c.total }
func (c *Clock) Remaining() float64 { return c.remaining }
func (c *Clock) Elapsed() float64   { return c.elapsed }
func (c *Clock) Ticks() int         { return c.ticks }
func (c *Clock) Expired() bool      { return c.remaining <= 0 }

// String formats the remaining time for display.
func (c *Clock) String() string {
	return Format(c.remaining)
}

// Format renders seconds with two decimals, never below zero.
func Format(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%.2f", seconds)
}

// Delta picks the seconds a frame consumes. Fixed deltas reproduce the
// reference pacing; measured deltas keep the countdown aligned with the host.
type Delta struct {
	Fixed   bool
	Nominal float64

	last time.Duration
}

func (d *Delta) Reset(now time.Duration) {
	d.last = now
}

// Next returns the delta for a frame firing at now.
func (d *Delta) Next(now time.Duration) float64 {
	if d.Fixed {
		d.last = now
		return d.Nominal
	}
	dt := (now - d.last).Seconds()
	d.last = now
	return dt
}
