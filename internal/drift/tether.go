package drift

import "math"

// Tether is the line from the pointer to the body centre. It is recomputed
// every frame and never stored between frames.
type Tether struct {
	From   Vec
	To     Vec
	Locked bool
}

func NewTether(pointer Vec, b Body, bounds Bounds, locked bool) Tether {
	return Tether{From: pointer, To: b.Center(bounds), Locked: locked}
}

func (t Tether) Length() float64 {
	return math.Hypot(t.To.X-t.From.X, t.To.Y-t.From.Y)
}

// Dash returns the stroke dash pattern: solid while locked, short dashes
// otherwise.
func (t Tether) Dash() string {
	if t.Locked {
		return "0"
	}
	return "10,10"
}
