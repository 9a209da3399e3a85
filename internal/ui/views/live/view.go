package live

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	trackerdto "plank/internal/modules/tracker/dto"
	"plank/internal/ui/theme"
	"plank/internal/ui/views"
)

const refreshInterval = 100 * time.Millisecond

// ─── port ────────────────────────────────────────────────────────────────────

type TrackerPort interface {
	Snapshot(ctx context.Context) (trackerdto.SnapshotOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SnapshotMsg struct {
	Snapshot trackerdto.SnapshotOutput
	Err      error
}

type refreshMsg struct{}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port   TrackerPort
	snap   trackerdto.SnapshotOutput
	err    error
	meter  progress.Model
	loaded bool
	width  int
	height int
}

func New(port TrackerPort) Model {
	meter := progress.New(progress.WithGradient(string(theme.Peach), string(theme.Green)))
	meter.ShowPercentage = true
	return Model{port: port, meter: meter}
}

func (m Model) Init() tea.Cmd {
	return m.snapshotCmd()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.meter.Width = max(10, min(m.width-20, 60))

	case SnapshotMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.snap = msg.Snapshot
		}
		return m, tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })

	case refreshMsg:
		return m, m.snapshotCmd()
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, theme.Muted.Render("Connecting to tracker…"))
	}
	s := m.snap
	var sb strings.Builder

	sb.WriteString(theme.Title.Render("Live") + "  " + theme.Phase(s.Phase).Render(strings.ToUpper(s.Phase)) + "\n\n")
	if m.err != nil {
		sb.WriteString(theme.Hot.Render("tracker: "+m.err.Error()) + "\n\n")
	}

	sb.WriteString(theme.Muted.Render("confidence  ") + m.meter.ViewAs(s.Confidence) + "\n")
	if s.CalibrationRemaining > 0 {
		sb.WriteString(theme.Muted.Render("calibrating ") + fmt.Sprintf("%.1fs left", s.CalibrationRemaining.Seconds()) + "\n")
	}
	sb.WriteString("\n")

	if s.HasActive {
		a := s.Active
		hold := lipgloss.NewStyle().Foreground(theme.Green).Bold(true).Render(views.Clock(a.CurrentHold))
		sb.WriteString(theme.Muted.Render("hold        ") + hold + "\n")
		sb.WriteString(theme.Muted.Render("elapsed     ") + views.Clock(a.Elapsed) + "\n")
		sb.WriteString(theme.Muted.Render("plank       ") + views.Clock(a.Plank) + "\n")
		sb.WriteString(theme.Muted.Render("break       ") + views.Clock(a.Break) + "\n")
		sb.WriteString(theme.Muted.Render("segments    ") + fmt.Sprintf("%d", len(a.Segments)) + "\n")
	} else {
		sb.WriteString(theme.Muted.Render("No active session. Press s to start.") + "\n")
	}

	if s.HasLatest {
		l := s.Latest
		sb.WriteString("\n" + theme.Title.Render("Last session") + "\n")
		sb.WriteString(theme.Muted.Render("started     ") + l.StartedAt.Local().Format("Mon 02 Jan 15:04") + "\n")
		sb.WriteString(theme.Muted.Render("plank       ") + views.Clock(l.TotalPlank) + "\n")
		sb.WriteString(theme.Muted.Render("break       ") + views.Clock(l.TotalBreak) + "\n")
		sb.WriteString(theme.Muted.Render("longest     ") + views.Clock(l.LongestHold) + "\n")
	}

	return theme.Pane.Width(max(20, m.width-4)).Render(sb.String())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) snapshotCmd() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return SnapshotMsg{Err: fmt.Errorf("tracker not configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		snap, err := m.port.Snapshot(ctx)
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}
