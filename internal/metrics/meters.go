package metrics

import (
	"math"

	"github.com/san-kum/focusdrift/internal/session"
)

type MeanFocus struct {
	name    string
	total   float64
	samples int
}

func NewMeanFocus() *MeanFocus {
	return &MeanFocus{name: "mean_focus"}
}

func (m *MeanFocus) Name() string { return m.name }

func (m *MeanFocus) Observe(s session.Snapshot) {
	m.total += s.Focus
	m.samples++
}

func (m *MeanFocus) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanFocus) Reset() {
	m.total = 0
	m.samples = 0
}

type PeakStress struct {
	name string
	peak float64
}

func NewPeakStress() *PeakStress {
	return &PeakStress{name: "peak_stress"}
}

func (p *PeakStress) Name() string { return p.name }

func (p *PeakStress) Observe(s session.Snapshot) {
	p.peak = math.Max(p.peak, s.Stress)
}

func (p *PeakStress) Value() float64 { return p.peak }

func (p *PeakStress) Reset() { p.peak = 0 }
