package metrics

import "github.com/san-kum/focusdrift/internal/session"

// LockRatio is the fraction of ticks spent locked onto the target.
type LockRatio struct {
	name    string
	locked  int
	samples int
}

func NewLockRatio() *LockRatio {
	return &LockRatio{
		name: "lock_ratio",
	}
}

func (l *LockRatio) Name() string {
	return l.name
}

func (l *LockRatio) Observe(s session.Snapshot) {
	l.samples++
	if s.Locked {
		l.locked++
	}
}

func (l *LockRatio) Value() float64 {
	if l.samples == 0 {
		return 0
	}
	return float64(l.locked) / float64(l.samples)
}

func (l *LockRatio) Reset() {
	l.locked = 0
	l.samples = 0
}
