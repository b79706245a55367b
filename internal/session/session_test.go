package session_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/session"
)

var _ = Describe("Session", func() {
	var (
		cfg *config.Config
		s   *session.Session
	)

	BeforeEach(func() {
		cfg = referenceConfig()
	})

	JustBeforeEach(func() {
		s = session.New(cfg)
	})

	Describe("Start", func() {
		It("begins with the reference initial state", func() {
			s.Start()
			snap := s.Snapshot()

			Expect(snap.Running).To(BeTrue())
			Expect(snap.Remaining).To(Equal(30.0))
			Expect(snap.Stress).To(BeZero())
			Expect(snap.Focus).To(Equal(50.0))
			Expect(snap.Combo).To(BeZero())
			Expect(snap.Cleared).To(BeZero())
			Expect(snap.Distractions).To(BeEmpty())
			Expect(snap.Body.X).To(Equal(565.0))
			Expect(snap.Body.Y).To(Equal(285.0))
		})

		It("resets everything after an overloaded session", func() {
			s.Start()
			frames(s, 150)
			id := s.Snapshot().Distractions[0].ID
			Expect(s.Click(id)).To(BeTrue())
			Expect(untilEnd(s, 2000)).To(BeNumerically(">", 0))
			Expect(s.Summary().Status).To(Equal(session.StatusOverload))

			s.Start()
			snap := s.Snapshot()
			Expect(snap.Remaining).To(Equal(30.0))
			Expect(snap.Stress).To(BeZero())
			Expect(snap.Focus).To(Equal(50.0))
			Expect(snap.Combo).To(BeZero())
			Expect(snap.BestCombo).To(BeZero())
			Expect(snap.Cleared).To(BeZero())
			Expect(snap.Ticks).To(BeZero())
			Expect(snap.Distractions).To(BeEmpty())
		})

		It("never stacks loops when called repeatedly", func() {
			s.Start()
			s.Start()
			s.Start()

			frames(s, 10)
			Expect(s.Snapshot().Ticks).To(Equal(10))
			Expect(s.Scheduler().Pending()).To(Equal(2))

			frames(s, 140)
			Expect(s.Snapshot().Distractions).To(HaveLen(2))
		})

		It("restarts a running session from scratch", func() {
			s.Start()
			frames(s, 100)
			s.Start()
			Expect(s.Snapshot().Ticks).To(BeZero())
			Expect(s.Snapshot().Stress).To(BeZero())
		})
	})

	Describe("locked for the whole session", func() {
		It("completes on time with full focus", func() {
			s.SetHover(true)
			s.Start()

			n := untilEnd(s, 2000)
			Expect(n).To(BeNumerically(">=", 1875))
			Expect(n).To(BeNumerically("<=", 1876))

			sum := s.Summary()
			Expect(sum.Status).To(Equal(session.StatusComplete))
			Expect(sum.Reason).To(Equal(session.ReasonTimeout))
			Expect(sum.Focus).To(Equal(100.0))
			Expect(sum.FocusPercent).To(Equal(100))
			Expect(sum.Stress).To(BeZero())
			Expect(sum.Message()).To(Equal("STATUS: COMPLETE"))
		})
	})

	Describe("idle for the whole session", func() {
		It("overloads at frame 667", func() {
			s.Start()

			Expect(untilEnd(s, 2000)).To(Equal(667))

			sum := s.Summary()
			Expect(sum.Status).To(Equal(session.StatusOverload))
			Expect(sum.Reason).To(Equal(session.ReasonOverload))
			Expect(sum.Stress).To(Equal(100.0))
			Expect(sum.Focus).To(BeZero())
			Expect(sum.Elapsed).To(BeNumerically("~", 10.672, 1e-6))
			Expect(sum.Message()).To(Equal("STATUS: SENSORY_OVERLOAD"))
		})
	})

	Describe("meters", func() {
		It("stay within range under random input", func() {
			rng := rand.New(rand.NewSource(7))
			s.AddObserver(session.Funcs{Tick: func(snap session.Snapshot) {
				Expect(snap.Stress).To(BeNumerically(">=", 0))
				Expect(snap.Stress).To(BeNumerically("<=", 100))
				Expect(snap.Focus).To(BeNumerically(">=", 0))
				Expect(snap.Focus).To(BeNumerically("<=", 100))
			}})
			s.Start()

			for i := 0; i < 1875 && s.Running(); i++ {
				if rng.Intn(30) == 0 {
					s.SetHover(!s.Hover())
				}
				if live := s.Snapshot().Distractions; len(live) > 0 && rng.Intn(20) == 0 {
					s.Click(live[0].ID)
				}
				s.Advance(frame)
			}
		})
	})

	Describe("clearing distractions", func() {
		JustBeforeEach(func() {
			s.Start()
			frames(s, 150)
			Expect(s.Snapshot().Distractions).To(HaveLen(2))
		})

		It("heals, counts and bumps the combo", func() {
			before := s.Snapshot()
			Expect(before.Stress).To(BeNumerically("~", 22.5, 1e-9))

			d := before.Distractions[0]
			Expect(s.Click(d.ID)).To(BeTrue())

			after := s.Snapshot()
			Expect(after.Stress).To(BeNumerically("~", before.Stress-8, 1e-9))
			Expect(after.Cleared).To(Equal(1))
			Expect(after.Combo).To(Equal(1))
			Expect(after.ComboVisible()).To(BeTrue())
			Expect(after.Distractions).To(HaveLen(1))
			Expect(after.Particles).To(HaveLen(8))
		})

		It("never heals below zero", func() {
			s.SetHover(true)
			frames(s, 450)
			Expect(s.Snapshot().Stress).To(BeNumerically("<", 8))

			live := s.Snapshot().Distractions
			Expect(s.Click(live[0].ID)).To(BeTrue())
			Expect(s.Snapshot().Stress).To(BeZero())
		})

		It("builds a combo for clears within the window", func() {
			live := s.Snapshot().Distractions
			s.Click(live[0].ID)
			frames(s, 10)
			s.Click(live[1].ID)

			Expect(s.Snapshot().Combo).To(Equal(2))
			Expect(s.Snapshot().BestCombo).To(Equal(2))
		})

		It("restarts the combo after the window lapses", func() {
			live := s.Snapshot().Distractions
			s.Click(live[0].ID)

			frames(s, 93)
			Expect(s.Snapshot().Combo).To(Equal(1))
			frames(s, 1)
			Expect(s.Snapshot().Combo).To(BeZero())
			Expect(s.Snapshot().ComboVisible()).To(BeFalse())

			s.Click(live[1].ID)
			Expect(s.Snapshot().Combo).To(Equal(1))
		})

		It("re-arms the expiry on every clear", func() {
			live := s.Snapshot().Distractions
			s.Click(live[0].ID)
			frames(s, 80)
			s.Click(live[1].ID)
			frames(s, 80)
			Expect(s.Snapshot().Combo).To(Equal(2))
		})

		It("hits the topmost box under the pointer", func() {
			d := s.Snapshot().Distractions[1]
			cx, cy := d.Center()

			id, ok := s.ClickAt(cx, cy)
			Expect(ok).To(BeTrue())
			Expect(id).To(Equal(d.ID))
		})

		It("ignores unknown ids", func() {
			Expect(s.Click(9999)).To(BeFalse())
			Expect(s.Snapshot().Cleared).To(BeZero())
		})
	})

	Describe("the spawner", func() {
		It("never exceeds the cap", func() {
			cfg.SpawnRate = frame
			s = session.New(cfg)
			s.SetHover(true)

			peak := 0
			s.AddObserver(session.Funcs{Tick: func(snap session.Snapshot) {
				Expect(len(snap.Distractions)).To(BeNumerically("<=", 15))
				if len(snap.Distractions) > peak {
					peak = len(snap.Distractions)
				}
			}})
			s.Start()
			frames(s, 500)
			Expect(peak).To(Equal(15))
		})

		It("spawns on the wall-clock interval, not per frame", func() {
			s.SetHover(true)
			s.Start()
			frames(s, 74)
			Expect(s.Snapshot().Distractions).To(BeEmpty())
			frames(s, 1)
			Expect(s.Snapshot().Distractions).To(HaveLen(1))
		})
	})

	Describe("End", func() {
		It("tears down every live distraction", func() {
			s.SetHover(true)
			s.Start()
			frames(s, 400)
			live := s.Snapshot().Distractions
			Expect(live).NotTo(BeEmpty())

			sum, ended := s.End()
			Expect(ended).To(BeTrue())
			Expect(sum.Reason).To(Equal(session.ReasonCancelled))
			Expect(sum.Status).To(Equal(session.StatusComplete))

			snap := s.Snapshot()
			Expect(snap.Distractions).To(BeEmpty())
			Expect(snap.Particles).To(BeEmpty())
			for _, d := range live {
				Expect(s.Click(d.ID)).To(BeFalse())
				cx, cy := d.Center()
				_, ok := s.ClickAt(cx, cy)
				Expect(ok).To(BeFalse())
			}
			Expect(s.Snapshot().Cleared).To(Equal(sum.Cleared))
		})

		It("is idempotent", func() {
			s.Start()
			frames(s, 10)
			first, ended := s.End()
			Expect(ended).To(BeTrue())

			second, ended := s.End()
			Expect(ended).To(BeFalse())
			Expect(second).To(Equal(first))
		})

		It("cancels every timer", func() {
			s.Start()
			frames(s, 80)
			s.Click(s.Snapshot().Distractions[0].ID)
			Expect(s.Scheduler().Pending()).To(Equal(3))

			s.End()
			Expect(s.Scheduler().Pending()).To(BeZero())

			frames(s, 500)
			Expect(s.Snapshot().Ticks).To(Equal(80))
			Expect(s.Snapshot().Distractions).To(BeEmpty())
		})

		It("does nothing before the first start", func() {
			_, ended := s.End()
			Expect(ended).To(BeFalse())
			frames(s, 10)
			Expect(s.Snapshot().Ticks).To(BeZero())
		})

		It("resets the visual intensity", func() {
			s.Start()
			frames(s, 600)
			Expect(s.Snapshot().Glitch()).To(BeTrue())
			Expect(s.Snapshot().Blur()).To(BeNumerically(">", 7))

			s.End()
			snap := s.Snapshot()
			Expect(snap.Ended).To(BeTrue())
			Expect(snap.Blur()).To(BeZero())
			Expect(snap.Saturation()).To(Equal(100.0))
			Expect(snap.Glitch()).To(BeFalse())
		})
	})

	Describe("physics", func() {
		BeforeEach(func() {
			cfg.DriftChance = 0
		})

		It("keeps the body inside the viewport", func() {
			s.SetHover(true)
			s.AddObserver(session.Funcs{Tick: func(snap session.Snapshot) {
				slack := cfg.BrainSpeed
				Expect(snap.Body.X).To(BeNumerically(">=", -slack))
				Expect(snap.Body.X).To(BeNumerically("<=", snap.Bounds.MaxX()+slack))
				Expect(snap.Body.Y).To(BeNumerically(">=", -slack))
				Expect(snap.Body.Y).To(BeNumerically("<=", snap.Bounds.MaxY()+slack))
			}})
			s.Start()
			Expect(untilEnd(s, 2000)).To(BeNumerically(">", 0))
		})

		It("points the tether from the pointer to the body centre", func() {
			s.SetPointer(10, 20)
			s.Start()
			frames(s, 1)

			snap := s.Snapshot()
			c := snap.Body.Center(snap.Bounds)
			Expect(snap.Tether.From.X).To(Equal(10.0))
			Expect(snap.Tether.From.Y).To(Equal(20.0))
			Expect(snap.Tether.To).To(Equal(c))
			Expect(snap.Tether.Locked).To(BeFalse())
			Expect(snap.Signal()).To(Equal(session.SignalLost))
		})

		It("derives hover from the pointer position", func() {
			s.Start()
			c := s.Body().Center(s.Bounds())
			Expect(s.TrackPointer(c.X, c.Y)).To(BeTrue())
			Expect(s.Snapshot().Signal()).To(Equal(session.SignalLock))
			Expect(s.TrackPointer(0, 0)).To(BeFalse())
		})

		It("drops the lock when the body drifts off a still pointer", func() {
			s.Start()
			c := s.Body().Center(s.Bounds())
			Expect(s.TrackPointer(c.X, c.Y)).To(BeTrue())

			lost := 0
			for i := 1; i <= 300 && s.Running(); i++ {
				s.Advance(frame)
				if !s.Hover() {
					lost = i
					break
				}
			}
			Expect(lost).To(BeNumerically(">", 0))

			snap := s.Snapshot()
			Expect(snap.Pointer).To(Equal(c))
			Expect(snap.Body.Contains(snap.Bounds, snap.Pointer)).To(BeFalse())
			Expect(snap.Locked).To(BeFalse())
			Expect(snap.Signal()).To(Equal(session.SignalLost))

			frames(s, 10)
			Expect(s.Snapshot().Focus).To(BeNumerically("<", snap.Focus))
		})

		It("gains the lock when the body drifts under a still pointer", func() {
			s.Start()
			b := s.Body()
			c := b.Center(s.Bounds())
			Expect(s.TrackPointer(c.X+b.VX*50, c.Y+b.VY*50)).To(BeFalse())

			gained := 0
			for i := 1; i <= 300 && s.Running(); i++ {
				s.Advance(frame)
				if s.Hover() {
					gained = i
					break
				}
			}
			Expect(gained).To(BeNumerically(">", 0))
			Expect(s.Snapshot().Locked).To(BeTrue())
		})

		It("keeps a reported hover state until the next report", func() {
			s.Start()
			c := s.Body().Center(s.Bounds())
			s.TrackPointer(c.X, c.Y)
			Expect(s.Tracking()).To(BeTrue())

			s.SetHover(true)
			Expect(s.Tracking()).To(BeFalse())
			frames(s, 300)
			Expect(s.Hover()).To(BeTrue())
		})
	})

	Describe("measured frame delta", func() {
		BeforeEach(func() {
			cfg.FixedStep = false
		})

		It("follows virtual time instead of the nominal step", func() {
			s.SetHover(true)
			s.Start()
			s.Advance(2 * frame)
			s.Advance(frame)
			Expect(s.Snapshot().Remaining).To(BeNumerically("~", 30-0.048, 1e-9))
			Expect(s.Snapshot().Ticks).To(Equal(2))
		})
	})

	Describe("metrics and observers", func() {
		It("report lifecycle events in order", func() {
			var events []string
			s.AddObserver(session.Funcs{
				Start: func(session.Snapshot) { events = append(events, "start") },
				Tick: func(session.Snapshot) {
					if len(events) == 1 {
						events = append(events, "tick")
					}
				},
				End: func(session.Summary) { events = append(events, "end") },
			})
			s.Start()
			frames(s, 3)
			s.End()
			Expect(events).To(Equal([]string{"start", "tick", "end"}))
		})

		It("records history", func() {
			h := session.NewHistory()
			s.AddObserver(h)
			s.Start()
			frames(s, 25)
			Expect(h.Samples).To(HaveLen(25))
			Expect(h.Samples[24].Tick).To(Equal(25))
			Expect(h.Series(func(x session.Sample) float64 { return x.Stress })[24]).
				To(BeNumerically("~", 25*0.15, 1e-9))
		})
	})
})
