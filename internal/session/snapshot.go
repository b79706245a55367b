package session

import (
	"time"

	"github.com/san-kum/focusdrift/internal/clock"
	"github.com/san-kum/focusdrift/internal/drift"
	"github.com/san-kum/focusdrift/internal/spawner"
)

const (
	maxBlur    = 8.0
	SignalLock = "SIGNAL_LOCK"
	SignalLost = "SIGNAL_LOST"
)

// Snapshot is an immutable copy of everything a presentation layer needs to
// draw one frame.
type Snapshot struct {
	Running bool
	Ended   bool
	Now     time.Duration

	Remaining float64
	Elapsed   float64
	Ticks     int

	Stress    float64
	MaxStress float64
	Focus     float64
	Combo     int
	BestCombo int
	Cleared   int

	Body    drift.Body
	Bounds  drift.Bounds
	Tether  drift.Tether
	Pointer drift.Vec
	Locked  bool

	Distractions []spawner.Distraction
	Particles    []spawner.Particle

	GlitchAt float64
	AlarmAt  float64
}

func (s *Session) Snapshot() Snapshot {
	particles := make([]spawner.Particle, len(s.particles))
	copy(particles, s.particles)

	return Snapshot{
		Running:      s.running,
		Ended:        s.started && !s.running,
		Now:          s.sched.Now(),
		Remaining:    s.clock.Remaining(),
		Elapsed:      s.clock.Elapsed(),
		Ticks:        s.clock.Ticks(),
		Stress:       s.meters.Stress,
		MaxStress:    s.cfg.MaxStress,
		Focus:        s.meters.Focus,
		Combo:        s.meters.Combo.Count,
		BestCombo:    s.meters.Combo.Best,
		Cleared:      s.meters.Cleared,
		Body:         s.body,
		Bounds:       s.engine.Bounds(),
		Tether:       s.tether,
		Pointer:      s.pointer,
		Locked:       s.hover,
		Distractions: s.spawner.Live(),
		Particles:    particles,
		GlitchAt:     s.cfg.GlitchAt,
		AlarmAt:      s.cfg.AlarmAt,
	}
}

// RemainingText is the countdown with two decimals.
func (s Snapshot) RemainingText() string { return clock.Format(s.Remaining) }

// ComboVisible reports whether a combo counter should be shown.
func (s Snapshot) ComboVisible() bool { return s.Combo > 0 }

// Blur maps stress to a 0..8 blur radius. Stopped sessions report none.
func (s Snapshot) Blur() float64 {
	if !s.Running {
		return 0
	}
	return s.Stress / 100 * maxBlur
}

// Saturation maps stress to a 50..100 percent saturation.
func (s Snapshot) Saturation() float64 {
	if !s.Running {
		return 100
	}
	return 100 - s.Stress/2
}

// Glitch reports whether the high-stress overlay is on.
func (s Snapshot) Glitch() bool { return s.Running && s.Stress > s.GlitchAt }

// Alarm reports whether the body should switch to its warning colour.
func (s Snapshot) Alarm() bool { return s.Stress > s.AlarmAt }

func (s Snapshot) Signal() string {
	if s.Locked {
		return SignalLock
	}
	return SignalLost
}
