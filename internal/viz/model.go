package viz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/session"
)

const (
	hudRows    = 1
	footerRows = 3
	minCols    = 20
	minRows    = 6
	barWidth   = 20
)

// Commander is the input side of a session. *session.Driver satisfies it.
type Commander interface {
	Start() error
	End() error
	TrackPointer(x, y float64) error
	ClickAt(x, y float64) error
}

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

type phase int

const (
	phaseIntro phase = iota
	phasePlay
	phaseSummary
)

// Model holds UI state only; game state arrives through the Feed.
type Model struct {
	cmd      Commander
	feed     *Feed
	viewport config.ViewportConfig
	theme    Theme
	keys     keyMap
	help     help.Model

	phase   phase
	want    int
	snap    session.Snapshot
	summary *session.Summary
	err     error

	width, height int
	canvas        *Canvas
}

func NewModel(cmd Commander, feed *Feed, vp config.ViewportConfig, theme Theme) Model {
	m := Model{
		cmd:      cmd,
		feed:     feed,
		viewport: vp,
		theme:    theme,
		keys:     defaultKeyMap(),
		help:     help.New(),
		width:    80,
		height:   24,
	}
	m.resize()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Theme):
			m.theme = NextTheme(m.theme.Name)
		case key.Matches(msg, m.keys.Cancel):
			if m.phase == phasePlay {
				m.err = m.cmd.End()
			}
		case key.Matches(msg, m.keys.Start):
			if m.phase != phasePlay {
				m.start()
			}
		}
	case tea.MouseMsg:
		if m.phase != phasePlay {
			break
		}
		x, y := m.pointer(msg.X, msg.Y)
		switch {
		case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
			m.err = errors.Join(m.cmd.TrackPointer(x, y), m.cmd.ClickAt(x, y))
		case msg.Action == tea.MouseActionMotion:
			m.err = m.cmd.TrackPointer(x, y)
		}
	case TickMsg:
		m.poll()
		return m, tick()
	}

	if errors.Is(m.err, session.ErrDriverStopped) {
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) start() {
	m.want = m.feed.Generation() + 1
	m.summary = nil
	m.phase = phasePlay
	m.err = m.cmd.Start()
}

// poll takes the newest frame. Frames from before the last start request
// are ignored so a restart never shows the previous summary.
func (m *Model) poll() {
	snap, sum, gen := m.feed.Latest()
	if gen < m.want {
		return
	}
	m.snap = snap
	if m.phase == phasePlay && sum != nil {
		m.summary = sum
		m.phase = phaseSummary
	}
}

func (m *Model) resize() {
	cols := max(minCols, m.width)
	rows := max(minRows, m.height-hudRows-footerRows)
	m.canvas = NewCanvas(cols, rows)
}

func (m Model) arena() Arena {
	return Arena{
		Cols:   m.canvas.Width,
		Rows:   m.canvas.Height,
		Width:  m.viewport.Width,
		Height: m.viewport.Height,
	}
}

// pointer converts a terminal cell to viewport coordinates. Cells outside
// the arena map outside the viewport.
func (m Model) pointer(col, row int) (float64, float64) {
	return m.arena().ToViewport(col, row-hudRows)
}

func (m Model) View() string {
	switch m.phase {
	case phasePlay:
		return m.viewPlay()
	case phaseSummary:
		return m.viewSummary()
	}
	return m.viewIntro()
}

func (m Model) title() string {
	return lipgloss.NewStyle().Foreground(m.theme.Secondary).Bold(true).Render("FOCUS DRIFT")
}

func (m Model) viewIntro() string {
	sub := lipgloss.NewStyle().Foreground(m.theme.Muted)
	text := lipgloss.NewStyle().Foreground(m.theme.Text)

	var b strings.Builder
	b.WriteString("\n\n    " + m.title() + "\n")
	b.WriteString("    " + sub.Render("hold the signal, clear the noise") + "\n")
	b.WriteString("    " + Separator(32) + "\n\n")
	b.WriteString("    " + text.Render("Keep the pointer on the drifting target to build focus.") + "\n")
	b.WriteString("    " + text.Render("Losing it raises stress. Click thoughts to clear them.") + "\n")
	b.WriteString("    " + text.Render("Stress at the limit ends the session.") + "\n\n")
	b.WriteString("    " + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) viewPlay() string {
	m.arena().Draw(m.canvas, m.snap, m.theme)

	var b strings.Builder
	b.WriteString(m.hud() + "\n")
	b.WriteString(m.canvas.String() + "\n")
	b.WriteString(m.meters() + "\n")
	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(m.theme.Error).Render(m.err.Error()) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) hud() string {
	snap := m.snap

	clockStyle := lipgloss.NewStyle().Foreground(m.theme.Text).Bold(true)
	if snap.Remaining < 5 {
		clockStyle = clockStyle.Foreground(m.theme.Warning)
	}

	signal := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Error)
	if snap.Locked {
		signal = signal.Foreground(m.theme.Success)
	}

	parts := []string{m.title(), clockStyle.Render(snap.RemainingText()), signal.Render(snap.Signal())}
	if snap.ComboVisible() {
		combo := lipgloss.NewStyle().Foreground(m.theme.Accent).Bold(true)
		parts = append(parts, combo.Render(fmt.Sprintf("x%d COMBO", snap.Combo)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) meters() string {
	snap := m.snap
	maxStress := snap.MaxStress
	if maxStress <= 0 {
		maxStress = config.DefaultMaxStress
	}

	label := lipgloss.NewStyle().Foreground(m.theme.Muted)
	return fmt.Sprintf("%s %s %3.0f   %s %s %3.0f%%   %s %d",
		label.Render("STRESS"), ProgressBar(snap.Stress/maxStress, barWidth, true), snap.Stress,
		label.Render("FOCUS"), ProgressBar(snap.Focus/100, barWidth, false), snap.Focus,
		label.Render("CLEARED"), snap.Cleared)
}

func (m Model) viewSummary() string {
	sum := m.summary
	if sum == nil {
		return m.viewIntro()
	}

	status := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Success)
	if sum.Status == session.StatusOverload {
		status = status.Foreground(m.theme.Error)
	}
	value := MetricValue.Foreground(m.theme.Primary)

	var b strings.Builder
	b.WriteString("\n    " + m.title() + "\n\n")
	b.WriteString("    " + status.Render(sum.Message()) + "\n\n")
	b.WriteString("    " + MetricLabel.Render("Focus") + value.Render(fmt.Sprintf("%d%%", sum.FocusPercent)) + "\n")
	b.WriteString("    " + MetricLabel.Render("Cleared") + value.Render(fmt.Sprintf("%d", sum.Cleared)) + "\n")
	b.WriteString("    " + MetricLabel.Render("Best combo") + value.Render(fmt.Sprintf("%d", sum.BestCombo)) + "\n")
	b.WriteString("    " + MetricLabel.Render("Elapsed") + value.Render(fmt.Sprintf("%.2fs", sum.Elapsed)) + "\n")
	b.WriteString("    " + MetricLabel.Render("Ended by") + value.Render(string(sum.Reason)) + "\n")

	stress, focus := m.feed.Series()
	if len(stress) > 1 {
		chart := asciigraph.PlotMany([][]float64{stress, focus},
			asciigraph.Height(8),
			asciigraph.Width(max(10, min(60, m.width-16))),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
			asciigraph.Caption("stress / focus"))
		b.WriteString(graphStyle.Render(indent(chart, "    ")) + "\n")
		b.WriteString("    " + MetricLabel.Render("Stress") + SparklineChart(stress, 40) + "\n")
	}

	b.WriteString("\n    " + m.help.View(m.keys) + "\n")
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Run plays sessions in the terminal until the player quits or ctx ends.
// The driver must already be running with feed attached as an observer.
func Run(ctx context.Context, cmd Commander, feed *Feed, vp config.ViewportConfig, theme Theme) error {
	p := tea.NewProgram(NewModel(cmd, feed, vp, theme),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
