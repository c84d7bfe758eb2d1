package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/automator/internal/ui/card"
	"github.com/zjrosen/automator/internal/ui/styles"
)

const emptyListMessage = "Your generated automations will appear here."

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	header := styles.TitleStyle.Render("⚡ Automation Workflow Builder") + "\n" +
		styles.SubtitleStyle.Render("Describe an automation in plain language and edit the result.")

	top := []string{header, zone.Mark(zonePrompt, m.prompt.View())}
	if m.banner != "" {
		top = append(top, lipgloss.NewStyle().
			Width(m.width).
			Foreground(styles.StatusErrorColor).
			Render(m.banner))
	}
	topView := strings.Join(top, "\n")

	status := styles.StatusBarStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))

	listHeight := m.height - lipgloss.Height(topView) - lipgloss.Height(status) - 1
	view := topView + "\n" + m.renderList(listHeight) + "\n" + status

	if m.editing {
		view = m.editor.Overlay(view)
	}
	if m.showHelp {
		view = m.helpView.Overlay(view)
	}
	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debugMode && m.logOverlay.Visible() {
		view = m.logOverlay.Overlay(view)
	}
	return zone.Scan(view)
}

// renderList draws as many cards as fit in height, keeping the selected
// card visible.
func (m Model) renderList(height int) string {
	title := fmt.Sprintf("Automations (%d)", len(m.entries))
	titleStyle := styles.TitleStyle
	if m.focus != FocusList {
		titleStyle = styles.SubtitleStyle
	}
	lines := []string{titleStyle.Render(title)}
	height = max(height-1, 1)

	if len(m.entries) == 0 {
		lines = append(lines, styles.HintStyle.Render(emptyListMessage))
		return strings.Join(lines, "\n")
	}

	editingID, _ := m.EditingID()
	rendered := make([]string, len(m.entries))
	for i, e := range m.entries {
		rendered[i] = m.cards.Render(card.Input{
			Index:      i,
			Automation: e.Automation,
			Width:      m.width,
			Selected:   m.focus == FocusList && i == m.selected,
			Editing:    e.ID == editingID,
		})
	}

	offset := visibleOffset(rendered, m.offset, m.selected, height)

	var body []string
	for i, c := range rendered[offset:] {
		c = zone.Mark(makeCardZoneID(offset+i), c)
		body = append(body, strings.Split(c, "\n")...)
		if len(body) >= height {
			break
		}
	}
	if len(body) > height {
		body = body[:height]
	}
	return strings.Join(append(lines, body...), "\n")
}

// visibleOffset returns the first card to draw so that selected is fully
// inside height, moving as little as possible from offset.
func visibleOffset(cards []string, offset, selected, height int) int {
	if selected < offset {
		return selected
	}
	used := 0
	for i := offset; i <= selected; i++ {
		used += lipgloss.Height(cards[i])
	}
	for used > height && offset < selected {
		used -= lipgloss.Height(cards[offset])
		offset++
	}
	return offset
}
