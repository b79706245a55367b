// Package session runs one focus session: the frame loop, the spawn interval
// and the combo expiry, all driven by a virtual-time scheduler.
//
// A Session is NOT safe for concurrent use. Every method, including the
// scheduler callbacks it arms, must run on one goroutine. [Driver] provides
// that for hosts that receive input from elsewhere.
package session

import (
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/san-kum/focusdrift/internal/clock"
	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/drift"
	"github.com/san-kum/focusdrift/internal/meter"
	"github.com/san-kum/focusdrift/internal/sched"
	"github.com/san-kum/focusdrift/internal/spawner"
)

type Session struct {
	cfg   *config.Config
	log   *slog.Logger
	rng   *rand.Rand
	sched *sched.Scheduler

	clock   *clock.Clock
	delta   clock.Delta
	meters  *meter.Model
	engine  *drift.Engine
	spawner *spawner.Spawner

	body      drift.Body
	tether    drift.Tether
	pointer   drift.Vec
	hover     bool
	tracking  bool
	particles []spawner.Particle

	running bool
	started bool
	summary Summary

	frame *sched.Timer
	spawn *sched.Timer
	combo *sched.Timer

	observers []Observer
	metrics   []Metric
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRand replaces the seeded source used for drift and spawning.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithScheduler shares an existing scheduler instead of creating one.
func WithScheduler(sc *sched.Scheduler) Option {
	return func(s *Session) {
		if sc != nil {
			s.sched = sc
		}
	}
}

// WithPointerTracking derives hover contact from the pointer and the body on
// every frame, so a body drifting under or away from a still pointer gains or
// loses the lock.
func WithPointerTracking() Option {
	return func(s *Session) { s.tracking = true }
}

// New builds an idle session. cfg is copied; a zero Seed picks a time-based
// one.
func New(cfg *config.Config, opts ...Option) *Session {
	cfg = cfg.Clone()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Session{
		cfg:   cfg,
		log:   slog.New(slog.DiscardHandler),
		rng:   rand.New(rand.NewSource(seed)),
		sched: sched.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	vp := cfg.Viewport
	bounds := drift.Bounds{
		Width:      vp.Width,
		Height:     vp.Height,
		BodyWidth:  vp.BodySize,
		BodyHeight: vp.BodySize,
	}

	s.clock = clock.New(cfg.TotalTime)
	s.delta = clock.Delta{Fixed: cfg.FixedStep, Nominal: cfg.FrameStep}
	s.meters = meter.New(meter.Rates{
		FocusGain:       cfg.FocusGain,
		FocusLoss:       cfg.FocusLoss,
		StressGainIdle:  cfg.StressGainIdle,
		StressHealClick: cfg.StressHealClick,
		FocusStressHeal: cfg.FocusStressHeal,
		MaxStress:       cfg.MaxStress,
	})
	s.meters.Reset(cfg.StartFocus)
	s.engine = drift.NewEngine(bounds, drift.Params{
		MaxSpeed:     cfg.BrainSpeed,
		InitialSpeed: cfg.InitialSpeed,
		DriftChance:  cfg.DriftChance,
		DriftKick:    cfg.DriftKick,
	}, s.rng)
	s.spawner = spawner.New(spawner.Params{
		Cap:          cfg.MaxDistractions,
		StickyChance: cfg.StickyChance,
		Width:        vp.DistractionWidth,
		Height:       vp.DistractionHeight,
		ViewWidth:    vp.Width,
		ViewHeight:   vp.Height,
	}, s.rng)
	s.body = s.engine.Spawn()
	return s
}

func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Session) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }

func (s *Session) Config() *config.Config      { return s.cfg }
func (s *Session) Scheduler() *sched.Scheduler { return s.sched }
func (s *Session) Running() bool               { return s.running }

// Start resets all state and begins a session. Any timers left from a
// previous session are cancelled before new ones are armed, so calling Start
// repeatedly never stacks loops.
func (s *Session) Start() {
	s.cancelTimers()

	s.clock.Reset()
	s.meters.Reset(s.cfg.StartFocus)
	s.spawner.Reset()
	s.particles = nil
	s.body = s.engine.Spawn()
	if s.tracking {
		s.setHover(s.contains())
	}
	s.tether = drift.NewTether(s.pointer, s.body, s.engine.Bounds(), s.hover)
	s.summary = Summary{}
	for _, m := range s.metrics {
		m.Reset()
	}

	now := s.sched.Now()
	s.delta.Reset(now)
	s.running = true
	s.started = true

	s.frame = s.sched.RequestFrame(s.step)
	s.spawn = s.sched.Every(s.cfg.SpawnRate, s.spawnTick)

	s.log.Info("session started",
		"total", s.cfg.TotalTime,
		"fixed_step", s.cfg.FixedStep,
		"spawn_rate", s.cfg.SpawnRate)

	snap := s.Snapshot()
	for _, o := range s.observers {
		o.OnStart(snap)
	}
}

// End stops a running session as cancelled. It reports whether this call
// ended the session; ending an ended session returns the existing summary.
func (s *Session) End() (Summary, bool) {
	if !s.running {
		return s.summary, false
	}
	s.finish(ReasonCancelled)
	return s.summary, true
}

// Advance moves virtual time forward by d and then pulses one frame. Timers
// due within d fire before the frame.
func (s *Session) Advance(d time.Duration) {
	s.sched.Advance(d)
	s.sched.Frame()
}

// SetPointer records the latest pointer position.
func (s *Session) SetPointer(x, y float64) {
	s.pointer = drift.Vec{X: x, Y: y}
}

// SetHover records the hover-contact state reported by the adapter. It turns
// pointer tracking off: the reported state holds until the next call.
func (s *Session) SetHover(locked bool) {
	s.tracking = false
	s.setHover(locked)
}

// TrackPointer sets the pointer and derives hover contact from the body's
// current position. It turns pointer tracking on, so later frames keep
// deriving hover from the same pointer as the body moves.
func (s *Session) TrackPointer(x, y float64) bool {
	s.SetPointer(x, y)
	s.tracking = true
	s.setHover(s.contains())
	return s.hover
}

// Tracking reports whether hover is derived from the pointer each frame.
func (s *Session) Tracking() bool { return s.tracking }

func (s *Session) setHover(locked bool) {
	if s.hover != locked {
		s.log.Debug("hover changed", "locked", locked)
	}
	s.hover = locked
}

func (s *Session) contains() bool {
	return s.body.Contains(s.engine.Bounds(), s.pointer)
}

func (s *Session) Hover() bool          { return s.hover }
func (s *Session) Pointer() drift.Vec   { return s.pointer }
func (s *Session) Body() drift.Body     { return s.body }
func (s *Session) Bounds() drift.Bounds { return s.engine.Bounds() }

// Click clears the distraction with the given id. Clicks on unknown ids or
// while stopped are ignored.
func (s *Session) Click(id int) bool {
	if !s.running {
		return false
	}
	d, ok := s.spawner.Remove(id)
	if !ok {
		return false
	}

	now := s.sched.Now()
	cx, cy := d.Center()
	s.particles = append(s.particles,
		spawner.Burst(s.rng, cx, cy, now, s.cfg.ParticleCount, s.cfg.ParticleLife)...)

	healed := s.meters.Clear()

	s.combo.Stop()
	s.combo = s.sched.After(s.cfg.ComboWindow, s.expireCombo)

	s.log.Debug("distraction cleared",
		"id", d.ID,
		"text", d.Text,
		"healed", healed,
		"combo", s.meters.Combo.Count)
	return true
}

// ClickAt clears the topmost distraction under (x, y).
func (s *Session) ClickAt(x, y float64) (int, bool) {
	if !s.running {
		return 0, false
	}
	d, ok := s.spawner.At(x, y)
	if !ok {
		return 0, false
	}
	return d.ID, s.Click(d.ID)
}

// Summary returns the result of the last ended session.
func (s *Session) Summary() Summary { return s.summary }

func (s *Session) step(now time.Duration) {
	s.frame = nil
	if !s.running {
		return
	}

	s.clock.Tick(s.delta.Next(now))
	s.engine.Step(&s.body)
	if s.tracking {
		s.setHover(s.contains())
	}
	s.tether = drift.NewTether(s.pointer, s.body, s.engine.Bounds(), s.hover)
	s.meters.Apply(s.hover)
	s.particles = spawner.Prune(s.particles, now)

	snap := s.Snapshot()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
	for _, o := range s.observers {
		o.OnTick(snap)
	}

	switch {
	case s.meters.Overloaded():
		s.finish(ReasonOverload)
	case s.clock.Expired():
		s.finish(ReasonTimeout)
	default:
		s.frame = s.sched.RequestFrame(s.step)
	}
}

func (s *Session) spawnTick(now time.Duration) {
	if !s.running {
		return
	}
	d, ok := s.spawner.Spawn(now)
	if !ok {
		s.log.Debug("spawn skipped at cap", "live", s.spawner.Len())
		return
	}
	s.log.Debug("distraction spawned", "id", d.ID, "text", d.Text, "sticky", d.Sticky)
}

func (s *Session) expireCombo(time.Duration) {
	s.combo = nil
	s.meters.Combo.Expire()
}

func (s *Session) cancelTimers() {
	s.frame.Stop()
	s.spawn.Stop()
	s.combo.Stop()
	s.frame, s.spawn, s.combo = nil, nil, nil
}

func (s *Session) finish(reason Reason) {
	s.running = false
	s.cancelTimers()
	s.spawner.Clear()
	s.particles = nil

	status := StatusComplete
	if s.meters.Overloaded() {
		status = StatusOverload
	}

	values := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		values[m.Name()] = m.Value()
	}

	s.summary = Summary{
		FocusPercent: int(math.Floor(s.meters.Focus)),
		Focus:        s.meters.Focus,
		Stress:       s.meters.Stress,
		Cleared:      s.meters.Cleared,
		BestCombo:    s.meters.Combo.Best,
		Status:       status,
		Reason:       reason,
		Elapsed:      s.clock.Elapsed(),
		Ticks:        s.clock.Ticks(),
		Metrics:      values,
	}

	s.log.Info("session ended",
		"status", status,
		"reason", reason,
		"focus", s.summary.FocusPercent,
		"cleared", s.summary.Cleared,
		"ticks", s.summary.Ticks)

	for _, o := range s.observers {
		o.OnEnd(s.summary)
	}
}
