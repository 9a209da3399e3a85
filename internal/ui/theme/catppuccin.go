package theme

import "github.com/charmbracelet/lipgloss"

var (
	Base     = lipgloss.Color("#1e1e2e")
	Mantle   = lipgloss.Color("#181825")
	Surface0 = lipgloss.Color("#313244")
	Surface1 = lipgloss.Color("#45475a")
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Lavender = lipgloss.Color("#b4befe")
	Sapphire = lipgloss.Color("#74c7ec")
	Green    = lipgloss.Color("#a6e3a1")
	Peach    = lipgloss.Color("#fab387")

	App = lipgloss.NewStyle().
		Background(Base).
		Foreground(Text).
		Padding(1, 2)

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Surface1).
		Background(Mantle).
		Foreground(Text).
		Padding(1)

	PaneActive = Pane.BorderForeground(Lavender)

	Title = lipgloss.NewStyle().Foreground(Sapphire).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Subtext0)
	Hot   = lipgloss.NewStyle().Foreground(Peach).Bold(true)
)

var (
	Red    = lipgloss.Color("#f38ba8")
	Yellow = lipgloss.Color("#f9e2af")

	PhasePlank       = lipgloss.NewStyle().Foreground(Base).Background(Green).Bold(true).Padding(0, 1)
	PhaseBreak       = lipgloss.NewStyle().Foreground(Base).Background(Red).Bold(true).Padding(0, 1)
	PhaseCalibrating = lipgloss.NewStyle().Foreground(Base).Background(Yellow).Bold(true).Padding(0, 1)
	PhaseIdle        = lipgloss.NewStyle().Foreground(Text).Background(Surface0).Padding(0, 1)
)

// Phase returns the badge style for a tracker phase name.
func Phase(name string) lipgloss.Style {
	switch name {
	case "plank":
		return PhasePlank
	case "break":
		return PhaseBreak
	case "calibrating":
		return PhaseCalibrating
	default:
		return PhaseIdle
	}
}
