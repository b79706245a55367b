// Package meter holds the stress and focus meters and the rules that move them.
package meter

const MaxFocus = 100.0

type Rates struct {
	FocusGain       float64
	FocusLoss       float64
	StressGainIdle  float64
	StressHealClick float64
	FocusStressHeal float64
	MaxStress       float64
}

// Model is the numeric state of a session. Both meters are clamped after
// every update.
type Model struct {
	Stress  float64
	Focus   float64
	Cleared int
	Combo   Combo

	rates Rates
}

func New(rates Rates) *Model {
	if rates.MaxStress <= 0 {
		rates.MaxStress = 100
	}
	return &Model{rates: rates}
}

func (m *Model) Rates() Rates { return m.rates }

// Reset starts a fresh session with the given focus.
func (m *Model) Reset(startFocus float64) {
	m.Stress = 0
	m.Focus = clamp(startFocus, 0, MaxFocus)
	m.Cleared = 0
	m.Combo = Combo{}
}

// Apply runs one frame of the meter rules.
func (m *Model) Apply(locked bool) {
	if locked {
		m.Focus = clamp(m.Focus+m.rates.FocusGain, 0, MaxFocus)
		m.Stress = clamp(m.Stress-m.rates.FocusStressHeal, 0, m.rates.MaxStress)
		return
	}
	m.Focus = clamp(m.Focus-m.rates.FocusLoss, 0, MaxFocus)
	m.Stress = clamp(m.Stress+m.rates.StressGainIdle, 0, m.rates.MaxStress)
}

// Clear rewards a cleared distraction and returns the stress removed.
func (m *Model) Clear() float64 {
	before := m.Stress
	m.Stress = clamp(m.Stress-m.rates.StressHealClick, 0, m.rates.MaxStress)
	m.Cleared++
	m.Combo.Hit()
	return before - m.Stress
}

func (m *Model) Overloaded() bool {
	return m.Stress >= m.rates.MaxStress
}

// Combo counts consecutive clears. Expiry timing belongs to the caller.
type Combo struct {
	Count int
	Best  int
}

func (c *Combo) Hit() int {
	c.Count++
	if c.Count > c.Best {
		c.Best = c.Count
	}
	return c.Count
}

func (c *Combo) Expire() { c.Count = 0 }

func (c Combo) Visible() bool { return c.Count > 0 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
