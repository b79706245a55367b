package metrics

import "github.com/san-kum/focusdrift/internal/session"

// ClearRate is distractions cleared per simulated second.
type ClearRate struct {
	name    string
	cleared int
	elapsed float64
}

func NewClearRate() *ClearRate {
	return &ClearRate{
		name: "clear_rate",
	}
}

func (c *ClearRate) Name() string {
	return c.name
}

func (c *ClearRate) Observe(s session.Snapshot) {
	c.cleared = s.Cleared
	c.elapsed = s.Elapsed
}

func (c *ClearRate) Value() float64 {
	if c.elapsed <= 0 {
		return 0
	}
	return float64(c.cleared) / c.elapsed
}

func (c *ClearRate) Reset() {
	c.cleared = 0
	c.elapsed = 0
}

// Defaults returns a fresh instance of every built-in metric.
func Defaults() []session.Metric {
	return []session.Metric{
		NewLockRatio(),
		NewMeanFocus(),
		NewPeakStress(),
		NewClearRate(),
	}
}
