// Package drift moves the focus target: a bounded random walk with
// elastic reflection off the viewport edges.
//
// It is deliberately not a physical simulation. There is no mass and no
// restitution loss; a wall contact only turns the velocity component back
// toward the interior, so the body may overshoot a wall for one frame.
package drift

import "math/rand"

type Vec struct {
	X, Y float64
}

// Bounds describes the viewport and the body's fixed visual size.
type Bounds struct {
	Width, Height         float64
	BodyWidth, BodyHeight float64
}

// MaxX is the largest in-bounds x for the body's top-left corner.
func (b Bounds) MaxX() float64 { return b.Width - b.BodyWidth }

// MaxY is the largest in-bounds y for the body's top-left corner.
func (b Bounds) MaxY() float64 { return b.Height - b.BodyHeight }

// Body is the focus target. X and Y locate its top-left corner.
type Body struct {
	X, Y   float64
	VX, VY float64
}

func (b Body) Center(bounds Bounds) Vec {
	return Vec{X: b.X + bounds.BodyWidth/2, Y: b.Y + bounds.BodyHeight/2}
}

// Contains reports whether p lies on the body.
func (b Body) Contains(bounds Bounds, p Vec) bool {
	return p.X >= b.X && p.X <= b.X+bounds.BodyWidth &&
		p.Y >= b.Y && p.Y <= b.Y+bounds.BodyHeight
}

type Params struct {
	MaxSpeed     float64
	InitialSpeed float64
	DriftChance  float64
	DriftKick    float64
}

// Contact records which axes touched a wall during a step.
type Contact uint8

const (
	ContactX Contact = 1 << iota
	ContactY
)

func (c Contact) Has(flag Contact) bool { return c&flag != 0 }

type Engine struct {
	bounds Bounds
	params Params
	rng    *rand.Rand
}

func NewEngine(bounds Bounds, params Params, rng *rand.Rand) *Engine {
	return &Engine{bounds: bounds, params: params, rng: rng}
}

func (e *Engine) Bounds() Bounds { return e.bounds }

// Spawn places a body at the viewport centre moving diagonally with a random
// sign on each axis.
func (e *Engine) Spawn() Body {
	return Body{
		X:  e.bounds.Width/2 - e.bounds.BodyWidth/2,
		Y:  e.bounds.Height/2 - e.bounds.BodyHeight/2,
		VX: e.sign() * e.params.InitialSpeed,
		VY: e.sign() * e.params.InitialSpeed,
	}
}

// Step advances b by one frame: random kick, speed cap, integrate, reflect.
func (e *Engine) Step(b *Body) Contact {
	if e.rng.Float64() < e.params.DriftChance {
		b.VX += (e.rng.Float64() - 0.5) * 2 * e.params.DriftKick
	}
	if e.rng.Float64() < e.params.DriftChance {
		b.VY += (e.rng.Float64() - 0.5) * 2 * e.params.DriftKick
	}

	limit := e.params.MaxSpeed
	b.VX = clamp(b.VX, -limit, limit)
	b.VY = clamp(b.VY, -limit, limit)

	b.X += b.VX
	b.Y += b.VY

	var contact Contact
	if v, hit := bounce(b.X, b.VX, e.bounds.MaxX()); hit {
		b.VX = v
		contact |= ContactX
	}
	if v, hit := bounce(b.Y, b.VY, e.bounds.MaxY()); hit {
		b.VY = v
		contact |= ContactY
	}
	return contact
}

// bounce turns v toward the interior when pos touches either wall. For a
// body arriving at a wall this is a plain sign flip. It differs from a flip
// on every contact when the body is past a wall and already heading back in:
// v is kept, so the body cannot oscillate outside the wall.
func bounce(pos, v, limit float64) (float64, bool) {
	switch {
	case pos <= 0:
		if v < 0 {
			v = -v
		}
		return v, true
	case pos >= limit:
		if v > 0 {
			v = -v
		}
		return v, true
	}
	return v, false
}

func (e *Engine) sign() float64 {
	if e.rng.Float64() < 0.5 {
		return 1
	}
	return -1
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
