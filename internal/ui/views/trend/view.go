package trend

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/ui/theme"
	"plank/internal/ui/views"
)

const defaultDays = 7

type TrendPort interface {
	Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error)
}

type TrendLoadedMsg struct {
	Trend sessiondto.TrendOutput
	Err   error
}

type Model struct {
	port   TrendPort
	days   int
	trend  sessiondto.TrendOutput
	err    error
	loaded bool
	width  int
	height int
}

func New(port TrendPort) Model {
	return Model{port: port, days: defaultDays}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return TrendLoadedMsg{Err: fmt.Errorf("trend not configured")}
		}
		out, err := m.port.Trend(context.Background(), m.days)
		return TrendLoadedMsg{Trend: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case TrendLoadedMsg:
		m.loaded = true
		m.err = msg.Err
		if msg.Err == nil {
			m.trend = msg.Trend
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "+":
			if m.days < 90 {
				m.days += 7
				return m, m.Reload()
			}
		case "-":
			if m.days > defaultDays {
				m.days -= 7
				return m, m.Reload()
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.loaded {
		return theme.Muted.Render("Loading trend…")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Last %d days", m.days)) + "\n\n")
	if m.err != nil {
		sb.WriteString(theme.Hot.Render("trend: "+m.err.Error()) + "\n")
		return theme.Pane.Width(max(20, m.width-4)).Render(sb.String())
	}

	sb.WriteString(Chart(m.trend.Days, max(10, m.width-40)))
	sb.WriteString("\n")
	sb.WriteString(theme.Muted.Render("total        ") + views.Clock(m.trend.Total) + "\n")
	sb.WriteString(theme.Muted.Render("active days  ") + fmt.Sprintf("%d", m.trend.ActiveDays) + "\n")
	sb.WriteString(theme.Muted.Render("per day      ") + views.Clock(m.trend.MeanPerActiveDay) + "\n")
	sb.WriteString(theme.Muted.Render("longest hold ") + fmt.Sprintf("%s ± %s", views.Clock(m.trend.LongestHoldMean), views.Clock(m.trend.LongestHoldStdDev)) + "\n\n")
	sb.WriteString(theme.Muted.Render("+/-: widen or narrow the window"))
	return theme.Pane.Width(max(20, m.width-4)).Render(sb.String())
}

// Chart renders one horizontal bar per day scaled to the busiest day.
func Chart(days []sessiondto.DayTotalOutput, width int) string {
	var peak time.Duration
	for _, d := range days {
		if d.Plank > peak {
			peak = d.Plank
		}
	}
	bar := lipgloss.NewStyle().Foreground(theme.Green)
	var sb strings.Builder
	for _, d := range days {
		n := 0
		if peak > 0 {
			n = int(float64(width) * float64(d.Plank) / float64(peak))
		}
		if n == 0 && d.Plank > 0 {
			n = 1
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			theme.Muted.Render(d.Day.Format("Mon 02")),
			bar.Render(strings.Repeat("█", n))+strings.Repeat(" ", width-n),
			views.Clock(d.Plank),
		))
	}
	return sb.String()
}
