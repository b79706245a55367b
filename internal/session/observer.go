package session

// Observer receives lifecycle events. Callbacks run on the session's
// goroutine and must not block.
type Observer interface {
	OnStart(Snapshot)
	OnTick(Snapshot)
	OnEnd(Summary)
}

// Metric reduces a session's ticks to one number reported in the summary.
type Metric interface {
	Name() string
	Observe(Snapshot)
	Value() float64
	Reset()
}

// Funcs adapts plain functions to Observer. Nil fields are skipped.
type Funcs struct {
	Start func(Snapshot)
	Tick  func(Snapshot)
	End   func(Summary)
}

func (f Funcs) OnStart(s Snapshot) {
	if f.Start != nil {
		f.Start(s)
	}
}

func (f Funcs) OnTick(s Snapshot) {
	if f.Tick != nil {
		f.Tick(s)
	}
}

func (f Funcs) OnEnd(s Summary) {
	if f.End != nil {
		f.End(s)
	}
}

// Sample is one recorded tick.
type Sample struct {
	Tick      int     `json:"tick"`
	Elapsed   float64 `json:"elapsed"`
	Remaining float64 `json:"remaining"`
	Stress    float64 `json:"stress"`
	Focus     float64 `json:"focus"`
	Combo     int     `json:"combo"`
	Cleared   int     `json:"cleared"`
	Locked    bool    `json:"locked"`
	Live      int     `json:"live"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// History records every tick of the current session.
type History struct {
	Samples []Sample
}

func NewHistory() *History {
	return &History{}
}

func (h *History) OnStart(Snapshot) { h.Samples = h.Samples[:0] }

func (h *History) OnTick(s Snapshot) {
	h.Samples = append(h.Samples, Sample{
		Tick:      s.Ticks,
		Elapsed:   s.Elapsed,
		Remaining: s.Remaining,
		Stress:    s.Stress,
		Focus:     s.Focus,
		Combo:     s.Combo,
		Cleared:   s.Cleared,
		Locked:    s.Locked,
		Live:      len(s.Distractions),
		X:         s.Body.X,
		Y:         s.Body.Y,
	})
}

func (h *History) OnEnd(Summary) {}

// Series extracts one column for plotting.
func (h *History) Series(pick func(Sample) float64) []float64 {
	out := make([]float64, len(h.Samples))
	for i, s := range h.Samples {
		out[i] = pick(s)
	}
	return out
}
