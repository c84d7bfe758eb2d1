package editor

import (
	"encoding/json"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zjrosen/automator/internal/ui/styles"
	"github.com/zjrosen/automator/internal/workflow"
)

// LineKind classifies one line of a draft diff.
type LineKind int

const (
	LineSame LineKind = iota
	LineAdded
	LineRemoved
)

// DiffLine is one line of a line-level diff.
type DiffLine struct {
	Kind LineKind
	Text string
}

// LineDiff compares before and after line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		kind := LineSame
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Kind: kind, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// AutomationJSON renders a for diffing.
func AutomationJSON(a workflow.Automation) string {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

var (
	addedStyle   = lipgloss.NewStyle().Foreground(styles.DiffAddedColor)
	removedStyle = lipgloss.NewStyle().Foreground(styles.DiffRemovedColor)
)

// renderDiff shows only the changed lines of baseline vs draft.
func renderDiff(baseline, draft workflow.Automation) []string {
	var rows []string
	for _, l := range LineDiff(AutomationJSON(baseline), AutomationJSON(draft)) {
		switch l.Kind {
		case LineAdded:
			rows = append(rows, addedStyle.Render("+ "+strings.TrimSpace(l.Text)))
		case LineRemoved:
			rows = append(rows, removedStyle.Render("- "+strings.TrimSpace(l.Text)))
		}
	}
	if len(rows) == 0 {
		rows = append(rows, styles.HintStyle.Render("No changes"))
	}
	return rows
}
