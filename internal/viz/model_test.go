package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/drift"
	"github.com/san-kum/focusdrift/internal/session"
)

type fakeCommander struct {
	starts, ends int
	tracked      []drift.Vec
	clicked      []drift.Vec
	err          error
}

func (f *fakeCommander) Start() error { f.starts++; return f.err }
func (f *fakeCommander) End() error   { f.ends++; return f.err }

func (f *fakeCommander) TrackPointer(x, y float64) error {
	f.tracked = append(f.tracked, drift.Vec{X: x, Y: y})
	return f.err
}

func (f *fakeCommander) ClickAt(x, y float64) error {
	f.clicked = append(f.clicked, drift.Vec{X: x, Y: y})
	return f.err
}

func newTestModel() (Model, *fakeCommander, *Feed) {
	cmd := &fakeCommander{}
	feed := NewFeed()
	m := NewModel(cmd, feed, config.DefaultConfig().Viewport, DefaultTheme)
	m = update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, cmd, feed
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func runningSnapshot() session.Snapshot {
	return session.Snapshot{
		Running:   true,
		Remaining: 12.5,
		Stress:    10,
		MaxStress: 100,
		Focus:     50,
		Bounds:    drift.Bounds{Width: 1280, Height: 720, BodyWidth: 150, BodyHeight: 150},
		Body:      drift.Body{X: 500, Y: 300},
		GlitchAt:  80,
		AlarmAt:   60,
	}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestModelStartsOnEnter(t *testing.T) {
	m, cmd, _ := newTestModel()

	if !strings.Contains(m.View(), "FOCUS DRIFT") {
		t.Errorf("expected intro title in view")
	}

	m = update(m, enter)
	if cmd.starts != 1 {
		t.Errorf("expected 1 start, got %d", cmd.starts)
	}
	if m.phase != phasePlay {
		t.Errorf("expected play phase, got %d", m.phase)
	}

	m = update(m, enter)
	if cmd.starts != 1 {
		t.Errorf("expected enter to be ignored while playing, got %d starts", cmd.starts)
	}
}

func TestModelShowsHUD(t *testing.T) {
	m, _, feed := newTestModel()
	m = update(m, enter)

	snap := runningSnapshot()
	feed.OnStart(snap)
	feed.OnTick(snap)
	m = update(m, TickMsg{})

	view := m.View()
	for _, want := range []string{"12.50", session.SignalLost, "STRESS", "FOCUS"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
	if strings.Contains(view, "COMBO") {
		t.Errorf("expected no combo counter at zero")
	}

	snap.Locked = true
	snap.Combo = 3
	feed.OnTick(snap)
	m = update(m, TickMsg{})
	view = m.View()
	if !strings.Contains(view, session.SignalLock) || !strings.Contains(view, "x3 COMBO") {
		t.Errorf("expected locked signal and combo, got:\n%s", view)
	}
}

func TestModelShowsSummaryWhenSessionEnds(t *testing.T) {
	m, _, feed := newTestModel()
	m = update(m, enter)

	snap := runningSnapshot()
	feed.OnStart(snap)
	for i := 0; i < 5; i++ {
		snap.Stress += 20
		feed.OnTick(snap)
	}
	feed.OnEnd(session.Summary{FocusPercent: 42, Status: session.StatusOverload, Reason: session.ReasonOverload})
	m = update(m, TickMsg{})

	if m.phase != phaseSummary {
		t.Fatalf("expected summary phase, got %d", m.phase)
	}
	view := m.View()
	if !strings.Contains(view, "STATUS: SENSORY_OVERLOAD") || !strings.Contains(view, "42%") {
		t.Errorf("expected overload summary, got:\n%s", view)
	}
}

func TestModelRestartIgnoresStaleSummary(t *testing.T) {
	m, cmd, feed := newTestModel()
	m = update(m, enter)
	feed.OnStart(runningSnapshot())
	feed.OnEnd(session.Summary{Status: session.StatusComplete})
	m = update(m, TickMsg{})
	if m.phase != phaseSummary {
		t.Fatalf("expected summary phase, got %d", m.phase)
	}

	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd.starts != 2 {
		t.Errorf("expected restart, got %d starts", cmd.starts)
	}

	// The driver has not processed the start yet.
	m = update(m, TickMsg{})
	if m.phase != phasePlay {
		t.Errorf("expected play phase while start is pending, got %d", m.phase)
	}

	feed.OnStart(runningSnapshot())
	m = update(m, TickMsg{})
	if m.phase != phasePlay || !m.snap.Running {
		t.Errorf("expected running frame after restart")
	}
}

func TestModelEscapeEndsSession(t *testing.T) {
	m, cmd, _ := newTestModel()

	m = update(m, esc)
	if cmd.ends != 0 {
		t.Errorf("expected escape on intro to do nothing, got %d ends", cmd.ends)
	}

	m = update(m, enter)
	update(m, esc)
	if cmd.ends != 1 {
		t.Errorf("expected 1 end, got %d", cmd.ends)
	}
}

func TestModelMouseMapsToViewport(t *testing.T) {
	m, cmd, _ := newTestModel()

	// Mouse input before a session starts is ignored.
	m = update(m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionMotion})
	if len(cmd.tracked) != 0 {
		t.Errorf("expected no tracking on intro, got %d", len(cmd.tracked))
	}

	m = update(m, enter)
	m = update(m, tea.MouseMsg{X: 40, Y: 11, Action: tea.MouseActionMotion})
	if len(cmd.tracked) != 1 {
		t.Fatalf("expected 1 tracked point, got %d", len(cmd.tracked))
	}
	// 80x20 arena below a one-row HUD over a 1280x720 viewport.
	got := cmd.tracked[0]
	if got.X != 648 || got.Y != 378 {
		t.Errorf("expected (648, 378), got (%v, %v)", got.X, got.Y)
	}

	update(m, tea.MouseMsg{X: 0, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(cmd.clicked) != 1 {
		t.Fatalf("expected 1 click, got %d", len(cmd.clicked))
	}
	if c := cmd.clicked[0]; c.X != 8 || c.Y != 18 {
		t.Errorf("expected (8, 18), got (%v, %v)", c.X, c.Y)
	}
}

func TestModelCyclesTheme(t *testing.T) {
	m, _, _ := newTestModel()
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	if m.theme.Name != Themes[1].Name {
		t.Errorf("expected theme %s, got %s", Themes[1].Name, m.theme.Name)
	}
}

func TestModelQuitsWhenDriverStops(t *testing.T) {
	m, cmd, _ := newTestModel()
	cmd.err = session.ErrDriverStopped

	_, quit := m.Update(enter)
	if quit == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := quit().(tea.QuitMsg); !ok {
		t.Errorf("expected QuitMsg")
	}

	cmd.err = errors.New("boom")
	m, _, _ = newTestModel()
	m.cmd = cmd
	_, next := m.Update(enter)
	if next != nil {
		t.Errorf("expected other errors to keep the program running")
	}
}
