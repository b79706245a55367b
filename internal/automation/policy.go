package automation

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/focusdrift/internal/session"
)

var ErrUnknownPolicy = errors.New("automation: unknown policy")

// reactionTime is how long a clicking policy waits before clearing a
// distraction.
const reactionTime = 300 * time.Millisecond

// Policy plays a session by feeding it input once per frame.
type Policy interface {
	Name() string
	Act(s *session.Session, snap session.Snapshot)
}

type policyFunc struct {
	name string
	act  func(s *session.Session, snap session.Snapshot)
}

func (p policyFunc) Name() string                                   { return p.name }
func (p policyFunc) Act(s *session.Session, snap session.Snapshot) { p.act(s, snap) }

// Policies maps names to policy constructors.
var Policies = map[string]func(rng *rand.Rand) Policy{
	"lock": func(*rand.Rand) Policy {
		return policyFunc{"lock", track}
	},
	"idle": func(*rand.Rand) Policy {
		return policyFunc{"idle", release}
	},
	"clicker": func(*rand.Rand) Policy {
		return policyFunc{"clicker", func(s *session.Session, snap session.Snapshot) {
			release(s, snap)
			clearDue(s, snap)
		}}
	},
	"focused": func(*rand.Rand) Policy {
		return policyFunc{"focused", func(s *session.Session, snap session.Snapshot) {
			track(s, snap)
			clearDue(s, snap)
		}}
	},
	"wander": func(rng *rand.Rand) Policy {
		return &wander{rng: rng}
	},
}

func NewPolicy(name string, rng *rand.Rand) (Policy, error) {
	ctor, ok := Policies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPolicy, name)
	}
	return ctor(rng), nil
}

func ListPolicies() []string {
	names := make([]string, 0, len(Policies))
	for name := range Policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// track keeps the pointer on the body centre.
func track(s *session.Session, snap session.Snapshot) {
	c := snap.Body.Center(snap.Bounds)
	s.TrackPointer(c.X, c.Y)
}

func release(s *session.Session, _ session.Snapshot) {
	s.SetPointer(0, 0)
	s.SetHover(false)
}

// clearDue clicks every distraction that has been visible for reactionTime.
func clearDue(s *session.Session, snap session.Snapshot) {
	for _, d := range snap.Distractions {
		if snap.Now-d.Born >= reactionTime {
			s.Click(d.ID)
		}
	}
}

// wander drifts the pointer randomly and lets geometry decide hover.
type wander struct {
	rng  *rand.Rand
	x, y float64
	init bool
}

const wanderStep = 40.0

func (w *wander) Name() string { return "wander" }

func (w *wander) Act(s *session.Session, snap session.Snapshot) {
	if !w.init {
		w.x, w.y = snap.Bounds.Width/2, snap.Bounds.Height/2
		w.init = true
	}
	w.x = clamp(w.x+(w.rng.Float64()-0.5)*2*wanderStep, 0, snap.Bounds.Width)
	w.y = clamp(w.y+(w.rng.Float64()-0.5)*2*wanderStep, 0, snap.Bounds.Height)
	s.TrackPointer(w.x, w.y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
