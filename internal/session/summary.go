package session

import (
	"fmt"
	"sort"
	"strings"
)

type Status string

const (
	StatusComplete Status = "COMPLETE"
	StatusOverload Status = "SENSORY_OVERLOAD"
)

// Reason records what ended a session. Status alone cannot tell a timeout
// from a player cancel.
type Reason string

const (
	ReasonTimeout   Reason = "timeout"
	ReasonOverload  Reason = "overload"
	ReasonCancelled Reason = "cancelled"
)

type Summary struct {
	FocusPercent int                `json:"focus_percent"`
	Focus        float64            `json:"focus"`
	Stress       float64            `json:"stress"`
	Cleared      int                `json:"cleared"`
	BestCombo    int                `json:"best_combo"`
	Status       Status             `json:"status"`
	Reason       Reason             `json:"reason"`
	Elapsed      float64            `json:"elapsed"`
	Ticks        int                `json:"ticks"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// Message is the status line shown on the summary screen.
func (s Summary) Message() string {
	return "STATUS: " + string(s.Status)
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", s.Message(), s.Reason)
	fmt.Fprintf(&b, "focus:        %d%%\n", s.FocusPercent)
	fmt.Fprintf(&b, "cleared:      %d\n", s.Cleared)
	fmt.Fprintf(&b, "best combo:   %d\n", s.BestCombo)
	fmt.Fprintf(&b, "elapsed:      %.2fs (%d ticks)\n", s.Elapsed, s.Ticks)

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%-13s %.4f\n", name+":", s.Metrics[name])
	}
	return b.String()
}
