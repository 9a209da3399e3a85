package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"plank/internal/ui/theme"
)

const maxSuggestions = 6

// PaletteSubmitMsg carries the command the user confirmed.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// PaletteCommand is one entry the palette can suggest.
type PaletteCommand struct {
	Name string
	Help string
}

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Green).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	suggestionStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
	selectedStyle   = lipgloss.NewStyle().Foreground(theme.Green).Bold(true)
)

// Palette is a command prompt with prefix suggestions. tab completes the
// selected suggestion, up/down move the selection.
type Palette struct {
	input    textinput.Model
	commands []PaletteCommand
	selected int
	visible  bool
	width    int
}

func NewPalette(commands []PaletteCommand) Palette {
	ti := textinput.New()
	ti.Placeholder = "command"
	ti.CharLimit = 64
	ti.Prompt = ": "
	return Palette{input: ti, commands: commands}
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty prompt and returns the focus command.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.selected = 0
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// Matches returns the commands whose name starts with the typed prefix.
func (p Palette) Matches() []PaletteCommand {
	prefix := strings.ToLower(strings.TrimSpace(p.input.Value()))
	var out []PaletteCommand
	for _, c := range p.commands {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		matches := p.Matches()
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			if val != "" && p.selected < len(matches) {
				val = matches[p.selected].Name
			}
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			if p.selected < len(matches) {
				p.input.SetValue(matches[p.selected].Name)
				p.input.CursorEnd()
				p.selected = 0
			}
			return p, nil
		case "up":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "down":
			if p.selected < len(matches)-1 {
				p.selected++
			}
			return p, nil
		}
	}
	prev := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != prev {
		p.selected = 0
	}
	return p, cmd
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if matches := p.Matches(); len(matches) > 0 {
		sb.WriteString("\n")
		for i, c := range matches {
			line := "  " + c.Name
			if c.Help != "" {
				line += "  " + theme.Muted.Render(c.Help)
			}
			if i == p.selected {
				sb.WriteString(selectedStyle.Render("›") + " " + strings.TrimPrefix(line, "  ") + "\n")
				continue
			}
			sb.WriteString(suggestionStyle.Render(line) + "\n")
		}
	}

	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}
