package spawner

import (
	"math/rand"
	"time"
)

// burstSpread is the side of the square particles fly out into.
const burstSpread = 100.0

// Particle is a short-lived cosmetic spark from a cleared distraction.
type Particle struct {
	X, Y   float64
	DX, DY float64
	Hue    float64
	Born   time.Duration
	Life   time.Duration
}

// Burst emits count particles at (x, y) with random hue and outward offset.
func Burst(rng *rand.Rand, x, y float64, now time.Duration, count int, life time.Duration) []Particle {
	ps := make([]Particle, count)
	for i := range ps {
		ps[i] = Particle{
			X:    x,
			Y:    y,
			DX:   (rng.Float64() - 0.5) * burstSpread,
			DY:   (rng.Float64() - 0.5) * burstSpread,
			Hue:  rng.Float64() * 360,
			Born: now,
			Life: life,
		}
	}
	return ps
}

// Progress is 0 at birth and 1 at the end of life.
func (p Particle) Progress(now time.Duration) float64 {
	if p.Life <= 0 {
		return 1
	}
	t := float64(now-p.Born) / float64(p.Life)
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func (p Particle) Alive(now time.Duration) bool {
	return now-p.Born < p.Life
}

// Position eases the particle out toward its destination.
func (p Particle) Position(now time.Duration) (float64, float64) {
	t := p.Progress(now)
	e := 1 - (1-t)*(1-t)
	return p.X + p.DX*e, p.Y + p.DY*e
}

// Scale shrinks from 1 to 0 over the particle's life.
func (p Particle) Scale(now time.Duration) float64 {
	return 1 - p.Progress(now)
}

// Prune drops dead particles in place.
func Prune(ps []Particle, now time.Duration) []Particle {
	out := ps[:0]
	for _, p := range ps {
		if p.Alive(now) {
			out = append(out, p)
		}
	}
	return out
}
