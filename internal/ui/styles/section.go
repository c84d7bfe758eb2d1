package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderSection renders rows inside a rounded border with the title and an
// optional hint inlined in the top edge: ╭─ Title (hint) ───╮. Rows wider
// than the inside are truncated. A focused section uses the highlight color.
func RenderSection(rows []string, title, hint string, width int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		borderColor = BorderHighlightFocusColor
	}
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(borderColor)

	inner := max(width-2, 1)

	var top strings.Builder
	if title == "" {
		top.WriteString(borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight))
	} else {
		label := title
		if hint != "" {
			label += " (" + hint + ")"
		}
		dashes := max(inner-ansi.StringWidth(label)-3, 0)

		top.WriteString(borderStyle.Render(borderTopLeft + borderHorizontal + " "))
		top.WriteString(titleStyle.Render(title))
		if hint != "" {
			top.WriteString(" " + HintStyle.Render("("+hint+")"))
		}
		top.WriteString(borderStyle.Render(" " + strings.Repeat(borderHorizontal, dashes) + borderTopRight))
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, top.String())
	side := borderStyle.Render(borderVertical)
	for _, row := range rows {
		if ansi.StringWidth(row) > inner {
			row = ansi.Truncate(row, inner, "…")
		}
		pad := strings.Repeat(" ", max(inner-ansi.StringWidth(row), 0))
		lines = append(lines, side+row+pad+side)
	}
	lines = append(lines, borderStyle.Render(borderBottomLeft+strings.Repeat(borderHorizontal, inner)+borderBottomRight))

	return strings.Join(lines, "\n")
}
