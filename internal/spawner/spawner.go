// Package spawner generates the transient distractions a player must clear.
package spawner

import (
	"math/rand"
	"time"
)

// Vocabulary is the fixed set of distraction texts.
var Vocabulary = []string{
	"DID_I_LOCK_DOOR?",
	"CHECK_DISCORD",
	"HUNGER_LEVEL_LOW",
	"LEG_SHAKING",
	"EARWORM_DETECTED",
	"TASK_ABORT?",
	"TEXT_MSG",
	"ITCH_DETECTED",
	"AUDIO_TOO_LOUD",
	"BOREDOM",
	"HOMEWORK_MISSING",
	"SOCIAL_ANXIETY",
	"FOCUS_ERROR",
	"EXECUTE_TASK",
}

// Distraction is a clickable object. Sticky is a cosmetic tag with no
// behaviour of its own.
type Distraction struct {
	ID            int
	Text          string
	X, Y          float64
	Width, Height float64
	Sticky        bool
	Born          time.Duration
}

func (d Distraction) Contains(x, y float64) bool {
	return x >= d.X && x <= d.X+d.Width && y >= d.Y && y <= d.Y+d.Height
}

func (d Distraction) Center() (float64, float64) {
	return d.X + d.Width/2, d.Y + d.Height/2
}

type Params struct {
	Cap           int
	StickyChance  float64
	Width, Height float64
	ViewWidth     float64
	ViewHeight    float64
}

type Spawner struct {
	params  Params
	rng     *rand.Rand
	live    []Distraction
	nextID  int
	skipped int
}

func New(params Params, rng *rand.Rand) *Spawner {
	return &Spawner{params: params, rng: rng, nextID: 1}
}

// Spawn creates a distraction unless the live count is already at the cap.
// Skipped spawns are dropped, never queued.
func (s *Spawner) Spawn(now time.Duration) (Distraction, bool) {
	if len(s.live) >= s.params.Cap {
		s.skipped++
		return Distraction{}, false
	}

	d := Distraction{
		ID:     s.nextID,
		Text:   Vocabulary[s.rng.Intn(len(Vocabulary))],
		X:      s.rng.Float64() * (s.params.ViewWidth - s.params.Width),
		Y:      s.rng.Float64() * (s.params.ViewHeight - s.params.Height),
		Width:  s.params.Width,
		Height: s.params.Height,
		Sticky: s.rng.Float64() < s.params.StickyChance,
		Born:   now,
	}
	s.nextID++
	s.live = append(s.live, d)
	return d, true
}

// Remove deletes the distraction with the given id.
func (s *Spawner) Remove(id int) (Distraction, bool) {
	for i, d := range s.live {
		if d.ID == id {
			s.live = append(s.live[:i], s.live[i+1:]...)
			return d, true
		}
	}
	return Distraction{}, false
}

// At returns the topmost (most recently spawned) distraction under (x, y).
func (s *Spawner) At(x, y float64) (Distraction, bool) {
	for i := len(s.live) - 1; i >= 0; i-- {
		if s.live[i].Contains(x, y) {
			return s.live[i], true
		}
	}
	return Distraction{}, false
}

// Live returns a copy of the live distractions in spawn order.
func (s *Spawner) Live() []Distraction {
	out := make([]Distraction, len(s.live))
	copy(out, s.live)
	return out
}

func (s *Spawner) Len() int     { return len(s.live) }
func (s *Spawner) Skipped() int { return s.skipped }

// Clear removes every live distraction and returns how many there were.
func (s *Spawner) Clear() int {
	n := len(s.live)
	s.live = s.live[:0]
	return n
}

// Reset clears and restarts id numbering for a new session.
func (s *Spawner) Reset() {
	s.Clear()
	s.nextID = 1
	s.skipped = 0
}
