package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "plank/internal/modules/session/dto"
	"plank/internal/ui/theme"
	"plank/internal/ui/views"
)

// ─── port ────────────────────────────────────────────────────────────────────

type HistoryPort interface {
	History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type RecordsLoadedMsg struct {
	Records  []sessiondto.RecordOutput
	LoadedAt time.Time
	Err      error
}

// ─── list item ───────────────────────────────────────────────────────────────

type recordItem struct {
	record   sessiondto.RecordOutput
	loadedAt time.Time
}

func (i recordItem) Title() string {
	return i.record.StartedAt.Local().Format("Mon 02 Jan 15:04")
}

func (i recordItem) Description() string {
	return fmt.Sprintf("%s · plank %s  longest %s", views.Ago(i.record.StartedAt, i.loadedAt), views.Clock(i.record.TotalPlank), views.Clock(i.record.LongestHold))
}

func (i recordItem) FilterValue() string { return i.Title() }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    HistoryPort
	list    list.Model
	detail  viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port HistoryPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Green).BorderForeground(theme.Green)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Green)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "History"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, detail: vp, spinner: sp, loading: true}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload fetches the history again, e.g. after a session ends.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return RecordsLoadedMsg{Err: fmt.Errorf("history not configured")}
		}
		records, err := m.port.History(context.Background(), 0)
		return RecordsLoadedMsg{Records: records, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case RecordsLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "History: " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = fmt.Sprintf("History (%d)", len(msg.Records))
		items := make([]list.Item, len(msg.Records))
		for i, r := range msg.Records {
			items[i] = recordItem{record: r, loadedAt: msg.LoadedAt}
		}
		cmds = append(cmds, m.list.SetItems(items))
		m.detail.SetContent(m.renderDetail())

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		if _, isKey := msg.(tea.KeyMsg); isKey {
			prevIdx := m.list.Index()
			var lCmd tea.Cmd
			m.list, lCmd = m.list.Update(msg)
			cmds = append(cmds, lCmd)
			if m.list.Index() != prevIdx {
				m.detail.SetContent(m.renderDetail())
			}
			var vCmd tea.Cmd
			m.detail, vCmd = m.detail.Update(msg)
			cmds = append(cmds, vCmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading history…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.detail.Width = detailW - 4
	m.detail.Height = m.height - 4
}

func (m Model) renderDetail() string {
	item, ok := m.list.SelectedItem().(recordItem)
	if !ok {
		return theme.Muted.Render("No sessions recorded yet")
	}
	r := item.record
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(item.Title()) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:      ") + r.ID + "\n")
	sb.WriteString(theme.Muted.Render("length:  ") + views.Clock(r.EndedAt.Sub(r.StartedAt)) + "\n")
	sb.WriteString(theme.Muted.Render("plank:   ") + views.Clock(r.TotalPlank) + "\n")
	sb.WriteString(theme.Muted.Render("break:   ") + views.Clock(r.TotalBreak) + "\n")
	sb.WriteString(theme.Muted.Render("longest: ") + views.Clock(r.LongestHold) + "\n\n")
	sb.WriteString(theme.Title.Render("Segments") + "\n")
	for i, seg := range r.Segments {
		badge := theme.Phase(seg.State).Render(fmt.Sprintf("%-5s", seg.State))
		sb.WriteString(fmt.Sprintf("%3d %s %s  %s\n", i+1, badge, seg.StartedAt.Local().Format("15:04:05"), views.Clock(seg.Duration)))
	}
	return sb.String()
}
