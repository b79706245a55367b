package viz

import (
	"sync"

	"github.com/san-kum/focusdrift/internal/session"
)

// Feed is a session observer that hands frames to the UI goroutine. The
// session writes from its own goroutine; the UI polls the latest state on
// its tick, so a slow terminal drops frames instead of stalling the game.
type Feed struct {
	mu      sync.Mutex
	gen     int
	snap    session.Snapshot
	summary *session.Summary
	stress  []float64
	focus   []float64
}

func NewFeed() *Feed { return &Feed{} }

func (f *Feed) OnStart(s session.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.snap = s
	f.summary = nil
	f.stress = f.stress[:0]
	f.focus = f.focus[:0]
}

func (f *Feed) OnTick(s session.Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = s
	f.stress = append(f.stress, s.Stress)
	f.focus = append(f.focus, s.Focus)
}

func (f *Feed) OnEnd(sum session.Summary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap.Running = false
	f.snap.Ended = true
	f.summary = &sum
}

// Generation counts session starts seen so far.
func (f *Feed) Generation() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// Latest returns the newest frame and, once the session has ended, its
// summary.
func (f *Feed) Latest() (session.Snapshot, *session.Summary, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.summary, f.gen
}

// Series copies the recorded stress and focus curves.
func (f *Feed) Series() (stress, focus []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.stress...), append([]float64(nil), f.focus...)
}
