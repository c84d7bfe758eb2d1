// Package help contains the help overlay component.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/keys"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/ui/markdown"
	"github.com/zjrosen/automator/internal/ui/overlay"
	"github.com/zjrosen/automator/internal/ui/styles"
	"github.com/zjrosen/automator/internal/workflow"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.OverlayBorderColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.OverlayTitleColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.OverlayBorderColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

var guideCache = markdown.NewCache()

// Guide returns the prompt-writing guide as markdown.
func Guide() string {
	var b strings.Builder
	b.WriteString("## Writing a prompt\n\n")
	b.WriteString("Name the service and event that should start the automation, ")
	b.WriteString("then the service and operation it should run. Conditions narrow the trigger.\n\n")
	for _, p := range automator.ExamplePrompts {
		b.WriteString("- " + p + "\n")
	}
	b.WriteString("\n## Editing\n\n")
	b.WriteString("Conditions are a JSON array of `{\"field\", \"operator\", \"value\"}` objects. ")
	b.WriteString("Operators: ")
	ops := make([]string, len(workflow.Operators))
	for i, op := range workflow.Operators {
		ops[i] = "`" + string(op) + "`"
	}
	b.WriteString(strings.Join(ops, ", "))
	b.WriteString(".\n\nDetails are a JSON object of string values, kept in the order written.\n")
	return b.String()
}

// Model holds the help view state.
type Model struct {
	keys       keys.KeyMap
	promptKeys keys.PromptKeyMap
	editorKeys keys.EditorKeyMap
	width      int
	height     int
}

// New creates a new help view.
func New() Model {
	return Model{
		keys:       keys.DefaultKeyMap(),
		promptKeys: keys.DefaultPromptKeyMap(),
		editorKeys: keys.DefaultEditorKeyMap(),
	}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help overlay (standalone, no background).
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.renderContent(), background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4).Width(34)

	var listCol strings.Builder
	listCol.WriteString(sectionStyle.Render("Automations"))
	listCol.WriteString("\n")
	listCol.WriteString(renderKeyDesc("j/k", "up/down"))
	listCol.WriteString(m.renderBinding(m.keys.Edit))
	listCol.WriteString(m.renderBinding(m.keys.Delete))

	var promptCol strings.Builder
	promptCol.WriteString(sectionStyle.Render("Prompt"))
	promptCol.WriteString("\n")
	promptCol.WriteString(m.renderBinding(m.promptKeys.Submit))
	promptCol.WriteString(m.renderBinding(m.promptKeys.Newline))
	promptCol.WriteString(m.renderBinding(m.promptKeys.NextExample))
	promptCol.WriteString(m.renderBinding(m.promptKeys.Clear))

	var editorCol strings.Builder
	editorCol.WriteString(sectionStyle.Render("Editor"))
	editorCol.WriteString("\n")
	editorCol.WriteString(m.renderBinding(m.editorKeys.NextField))
	editorCol.WriteString(m.renderBinding(m.editorKeys.PrevField))
	editorCol.WriteString(m.renderBinding(m.editorKeys.Save))
	editorCol.WriteString(m.renderBinding(m.editorKeys.Cancel))

	var generalCol strings.Builder
	generalCol.WriteString(sectionStyle.Render("General"))
	generalCol.WriteString("\n")
	generalCol.WriteString(m.renderBinding(m.keys.SwitchFocus))
	generalCol.WriteString(m.renderBinding(m.keys.Help))
	generalCol.WriteString(m.renderBinding(m.keys.Logs))
	generalCol.WriteString(m.renderBinding(m.keys.Quit))

	columns := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			columnStyle.Render(listCol.String()),
			generalCol.String(),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			columnStyle.Render(promptCol.String()),
			editorCol.String(),
		),
	)

	columnsWidth := lipgloss.Width(columns)
	boxWidth := columnsWidth + 4

	guide, err := guideCache.Render("guide", markdown.Request{
		Markdown: Guide(),
		Width:    columnsWidth,
		Style:    styles.MarkdownStyle,
	})
	if err != nil {
		log.ErrorErr(log.CatUI, "rendering help guide", err)
		guide = Guide()
	}

	body := contentStyle.Render(columns + "\n\n" + strings.TrimSpace(guide) + "\n" +
		footerStyle.Render("Press ? or Esc to close"))

	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Help"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func (m Model) renderBinding(b key.Binding) string {
	help := b.Help()
	return renderKeyDesc(help.Key, help.Desc)
}

func renderKeyDesc(key, desc string) string {
	return keyStyle.Render(key) + descStyle.Render(desc) + "\n"
}
