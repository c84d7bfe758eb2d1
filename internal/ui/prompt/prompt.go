// Package prompt provides the natural-language input panel.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/keys"
	"github.com/zjrosen/automator/internal/ui/styles"
)

// SubmitMsg carries the text the user submitted.
type SubmitMsg struct {
	Prompt string
}

// Model holds the prompt panel state.
type Model struct {
	input        textarea.Model
	spinner      spinner.Model
	keys         keys.PromptKeyMap
	help         help.Model
	busy         bool
	focused      bool
	showExamples bool
	nextExample  int
	width        int
}

// New creates a focused prompt panel. showExamples enables cycling through
// the example prompts.
func New(showExamples bool) Model {
	km := keys.DefaultPromptKeyMap()

	ta := textarea.New()
	ta.Placeholder = "e.g., " + automator.ExamplePrompt
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.KeyMap.InsertNewline = km.Newline
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.SpinnerColor)

	return Model{
		input:        ta,
		spinner:      sp,
		keys:         km,
		help:         help.New(),
		focused:      true,
		showExamples: showExamples,
	}
}

// Value returns the current text.
func (m Model) Value() string { return m.input.Value() }

// Busy reports whether an extraction is in flight.
func (m Model) Busy() bool { return m.busy }

// Focused reports whether the panel receives keys.
func (m Model) Focused() bool { return m.focused }

// Focus gives the panel keyboard focus.
func (m Model) Focus() Model {
	m.focused = true
	m.input.Focus()
	return m
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	m.input.Blur()
	return m
}

// SetBusy toggles the in-flight state. Starting returns the spinner tick.
func (m Model) SetBusy(busy bool) (Model, tea.Cmd) {
	m.busy = busy
	if busy {
		return m, m.spinner.Tick
	}
	return m, nil
}

// SetWidth sets the panel width.
func (m Model) SetWidth(width int) Model {
	m.width = width
	m.input.SetWidth(max(width-6, 10))
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages. While busy only the spinner advances.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}

	keyMsg, isKey := msg.(tea.KeyMsg)
	if isKey && (m.busy || !m.focused) {
		return m, nil
	}

	if isKey {
		switch {
		case key.Matches(keyMsg, m.keys.Submit):
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.input.Reset()
			return m, func() tea.Msg { return SubmitMsg{Prompt: text} }

		case key.Matches(keyMsg, m.keys.NextExample):
			if !m.showExamples || len(automator.ExamplePrompts) == 0 {
				return m, nil
			}
			m.input.SetValue(automator.ExamplePrompts[m.nextExample])
			m.nextExample = (m.nextExample + 1) % len(automator.ExamplePrompts)
			return m, nil

		case key.Matches(keyMsg, m.keys.Clear):
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the panel.
func (m Model) View() string {
	rows := strings.Split(m.input.View(), "\n")

	var status string
	switch {
	case m.busy:
		status = m.spinner.View() + " " + styles.HintStyle.Render("Generating automation…")
	case strings.TrimSpace(m.input.Value()) == "":
		status = styles.DisabledButtonStyle.Render("Generate") + "  " + m.help.ShortHelpView(m.helpBindings())
	default:
		status = styles.PrimaryButtonStyle.Render("Generate") + "  " + m.help.ShortHelpView(m.helpBindings())
	}
	rows = append(rows, "", status)

	return styles.RenderSection(rows, "Prompt", "Describe an automation", max(m.width, 30), m.focused)
}

func (m Model) helpBindings() []key.Binding {
	bindings := []key.Binding{m.keys.Submit, m.keys.Newline}
	if m.showExamples {
		bindings = append(bindings, m.keys.NextExample)
	}
	return append(bindings, m.keys.SwitchFocus)
}
