package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "plank/internal/modules/session/dto"
	trackerdto "plank/internal/modules/tracker/dto"
	"plank/internal/ui/components"
	"plank/internal/ui/theme"
	"plank/internal/ui/views"
	historyview "plank/internal/ui/views/history"
	liveview "plank/internal/ui/views/live"
	trendview "plank/internal/ui/views/trend"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// trackerPort is the only port at this level; the sub-views receive it
// narrowed to their own interfaces.

type trackerPort interface {
	Start(ctx context.Context) (trackerdto.StartOutput, error)
	Stop(ctx context.Context) (sessiondto.StopOutput, error)
	Snapshot(ctx context.Context) (trackerdto.SnapshotOutput, error)
	Subscribe() (<-chan trackerdto.PhaseChange, func())
	History(ctx context.Context, limit int) ([]sessiondto.RecordOutput, error)
	ResetHistory(ctx context.Context) error
	Trend(ctx context.Context, days int) (sessiondto.TrendOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabLive tabID = iota
	tabHistory
	tabTrend
	tabCount
)

var tabLabels = [tabCount]string{
	"Live", "History", "Trend",
}

// ─── async messages ───────────────────────────────────────────────────────────

type sessionStartedMsg struct {
	out trackerdto.StartOutput
	err error
}

type sessionStoppedMsg struct {
	out sessiondto.StopOutput
	err error
}

type historyResetMsg struct{ err error }

// historyCheckedMsg reports whether there is anything to clear before asking.
type historyCheckedMsg struct {
	empty bool
	err   error
}

type phaseChangedMsg struct {
	change trackerdto.PhaseChange
	ok     bool
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Start   key.Binding
	Stop    key.Binding
	Window  key.Binding
	Bell    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop session")),
		Window:  key.NewBinding(key.WithKeys("+", "-"), key.WithHelp("+/-", "trend window")),
		Bell:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bell on plank")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Bell},
		{k.Tab, k.Window},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the phase-change
// subscription, the help overlay and the command palette.
type Model struct {
	tracker trackerPort
	changes <-chan trackerdto.PhaseChange
	cancel  func()

	liveView    liveview.Model
	historyView historyview.Model
	trendView   trendview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	phase     string
	tracking  bool
	bell      bool
	cue       io.Writer
	// confirmReset is set while the status bar asks to confirm a history reset.
	confirmReset bool
	status       string
	width        int
	height       int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(tracker trackerPort) Model {
	changes, cancel := tracker.Subscribe()
	return Model{
		tracker:     tracker,
		changes:     changes,
		cancel:      cancel,
		liveView:    liveview.New(tracker),
		historyView: historyview.New(tracker),
		trendView:   trendview.New(tracker),
		activeTab:   tabLive,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(paletteCommands),
		phase:       "idle",
		cue:         os.Stderr,
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.liveView.Init(),
		m.historyView.Init(),
		m.trendView.Init(),
		m.waitForChangeCmd(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		if _, isKey := msg.(tea.KeyMsg); isKey {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case phaseChangedMsg:
		if !msg.ok {
			m.status = "tracker stopped"
			return m, nil
		}
		entered := msg.change.Phase != m.phase
		m.phase = msg.change.Phase
		m.tracking = msg.change.Phase != "idle"
		if m.bell && entered && m.phase == "plank" {
			return m, tea.Batch(m.waitForChangeCmd(), m.ringCmd())
		}
		return m, m.waitForChangeCmd()

	case sessionStartedMsg:
		if msg.err != nil {
			m.status = "session start failed: " + msg.err.Error()
		} else if msg.out.AlreadyActive {
			m.tracking = true
			m.status = "session already running"
		} else {
			m.tracking = true
			m.status = "session started " + msg.out.StartedAt.Local().Format("15:04:05")
		}
		return m, nil

	case sessionStoppedMsg:
		m.tracking = false
		switch {
		case msg.err != nil && msg.out.Recorded:
			m.status = "session ended, not saved: " + msg.err.Error()
		case msg.err != nil:
			m.status = "session stop failed: " + msg.err.Error()
		case !msg.out.Recorded:
			m.status = "session discarded (nothing recorded)"
		default:
			r := msg.out.Record
			m.status = fmt.Sprintf("session saved: plank %s, longest %s", views.Clock(r.TotalPlank), views.Clock(r.LongestHold))
		}
		return m, tea.Batch(m.historyView.Reload(), m.trendView.Reload())

	case historyCheckedMsg:
		switch {
		case msg.err != nil:
			m.status = "history reset failed: " + msg.err.Error()
		case msg.empty:
			m.status = "no sessions to clear"
		default:
			m.confirmReset = true
			m.status = "clear all stored sessions? (y/n)"
		}
		return m, nil

	case historyResetMsg:
		if msg.err != nil {
			m.status = "history reset failed: " + msg.err.Error()
		} else {
			m.status = "history cleared"
		}
		return m, tea.Batch(m.historyView.Reload(), m.trendView.Reload())

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.confirmReset {
			m.confirmReset = false
			if msg.String() == "y" || msg.String() == "Y" {
				m.status = "clearing history"
				return m, m.resetHistoryCmd()
			}
			m.status = "history reset cancelled"
			return m, nil
		}
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to the history filter while it is open.
		if m.activeTab == tabHistory && m.historyView.Filtering() {
			var cmd tea.Cmd
			m.historyView, cmd = m.historyView.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		case "s":
			return m, m.startSessionCmd()
		case "x":
			return m, m.stopSessionCmd()
		case "b":
			return m.toggleBell(), nil
		}

		// Remaining keys go to the active tab only.
		var cmd tea.Cmd
		switch m.activeTab {
		case tabLive:
			m.liveView, cmd = m.liveView.Update(msg)
		case tabHistory:
			m.historyView, cmd = m.historyView.Update(msg)
		case tabTrend:
			m.trendView, cmd = m.trendView.Update(msg)
		}
		return m, cmd
	}

	// Everything else is broadcast so background refreshes keep running on hidden tabs.
	var cmd tea.Cmd
	m.liveView, cmd = m.liveView.Update(msg)
	cmds = append(cmds, cmd)
	m.historyView, cmd = m.historyView.Update(msg)
	cmds = append(cmds, cmd)
	m.trendView, cmd = m.trendView.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabLive:
		return m.liveView.View()
	case tabHistory:
		return m.historyView.View()
	case tabTrend:
		return m.trendView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "plank  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := theme.Phase(m.phase).Render(m.phase) + "  " + m.status
	if m.tracking {
		left = theme.Hot.Render("● ") + left
	}
	right := theme.Muted.Render("s:start  x:stop  b:bell  tab:switch  ?:help  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

var paletteCommands = []components.PaletteCommand{
	{Name: "session:start", Help: "start tracking"},
	{Name: "session:stop", Help: "stop and save the session"},
	{Name: "history:reset", Help: "delete every recorded session"},
	{Name: "cue:bell", Help: "toggle the bell when a plank starts"},
	{Name: "view:live", Help: "live dashboard"},
	{Name: "view:history", Help: "past sessions"},
	{Name: "view:trend", Help: "daily totals"},
}

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "session:start":
		return m, m.startSessionCmd()
	case "session:stop":
		return m, m.stopSessionCmd()
	case "history:reset":
		return m, m.checkHistoryCmd()
	case "cue:bell":
		return m.toggleBell(), nil
	case "view:live":
		m.activeTab = tabLive
	case "view:history":
		m.activeTab = tabHistory
	case "view:trend":
		m.activeTab = tabTrend
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.liveView, _ = m.liveView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.trendView, _ = m.trendView.Update(sz)
}

func (m Model) toggleBell() Model {
	m.bell = !m.bell
	if m.bell {
		m.status = "bell on"
	} else {
		m.status = "bell off"
	}
	return m
}

// ─── async commands ───────────────────────────────────────────────────────────

// ringCmd sounds the terminal bell. BEL does not move the cursor, so writing it
// beside the renderer is safe.
func (m Model) ringCmd() tea.Cmd {
	cue := m.cue
	return func() tea.Msg {
		if cue != nil {
			_, _ = io.WriteString(cue, "\a")
		}
		return nil
	}
}

func (m Model) waitForChangeCmd() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		change, ok := <-changes
		return phaseChangedMsg{change: change, ok: ok}
	}
}

func (m Model) startSessionCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Start(context.Background())
		return sessionStartedMsg{out: out, err: err}
	}
}

func (m Model) stopSessionCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.tracker.Stop(context.Background())
		return sessionStoppedMsg{out: out, err: err}
	}
}

func (m Model) checkHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		records, err := m.tracker.History(context.Background(), 1)
		return historyCheckedMsg{empty: len(records) == 0, err: err}
	}
}

func (m Model) resetHistoryCmd() tea.Cmd {
	return func() tea.Msg {
		return historyResetMsg{err: m.tracker.ResetHistory(context.Background())}
	}
}
