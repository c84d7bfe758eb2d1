package card

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/automator/internal/ui/styles"
	"github.com/zjrosen/automator/internal/workflow"
)

var (
	chipStyle = lipgloss.NewStyle().
			Background(styles.ChipBgColor).
			Foreground(styles.ChipTextColor).
			Padding(0, 1)
	chipOperatorStyle = lipgloss.NewStyle().
				Background(styles.ChipBgColor).
				Foreground(styles.ChipMutedColor)
)

// ConditionText is the plain text of a condition chip:
// Field operator "value".
func ConditionText(c workflow.Condition) string {
	return workflow.Label(c.Field) + " " + string(c.Operator) + ` "` + c.Value + `"`
}

// DetailText is the plain text of a detail chip: Key: "value".
func DetailText(p workflow.Pair) string {
	return workflow.Label(p.Key) + `: "` + p.Value + `"`
}

func conditionChip(c workflow.Condition, accent lipgloss.TerminalColor, maxWidth int) string {
	value := lipgloss.NewStyle().Background(styles.ChipBgColor).Foreground(accent).Render(`"` + c.Value + `"`)
	field := lipgloss.NewStyle().Background(styles.ChipBgColor).Bold(true).Render(workflow.Label(c.Field))
	body := field + chipOperatorStyle.Render(" "+string(c.Operator)+" ") + value
	return chipStyle.Render(fit(body, maxWidth-2))
}

func detailChip(p workflow.Pair, accent lipgloss.TerminalColor, maxWidth int) string {
	key := lipgloss.NewStyle().Background(styles.ChipBgColor).Bold(true).Render(workflow.Label(p.Key) + ":")
	value := lipgloss.NewStyle().Background(styles.ChipBgColor).Foreground(accent).Render(` "` + p.Value + `"`)
	return chipStyle.Render(fit(key+value, maxWidth-2))
}

func fit(s string, width int) string {
	if width < 1 {
		return ""
	}
	if ansi.StringWidth(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// flow packs chips left to right, starting a new line when the next chip
// would pass width.
func flow(chips []string, width int) []string {
	var (
		lines []string
		line  strings.Builder
		used  int
	)
	for _, chip := range chips {
		w := ansi.StringWidth(chip)
		if used > 0 && used+1+w > width {
			lines = append(lines, line.String())
			line.Reset()
			used = 0
		}
		if used > 0 {
			line.WriteByte(' ')
			used++
		}
		line.WriteString(chip)
		used += w
	}
	if used > 0 {
		lines = append(lines, line.String())
	}
	return lines
}
