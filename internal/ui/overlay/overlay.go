// Package overlay draws modal content over a background view without
// clearing it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position selects where the foreground lands.
type Position int

const (
	Center Position = iota
	Top
	Bottom
)

// Config describes the viewport the overlay is drawn into.
type Config struct {
	Width    int
	Height   int
	Position Position
	PadY     int // rows kept free above a Top or below a Bottom overlay
}

// Place draws fg over bg. Both may contain ANSI styling; the visible
// background left and right of each foreground row is kept.
func Place(cfg Config, fg, bg string) string {
	if bg == "" {
		pos := lipgloss.Center
		switch cfg.Position {
		case Top:
			pos = lipgloss.Top
		case Bottom:
			pos = lipgloss.Bottom
		}
		return lipgloss.Place(cfg.Width, cfg.Height, lipgloss.Center, pos, fg)
	}

	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	x := max((cfg.Width-lipgloss.Width(fg))/2, 0)
	y := max((cfg.Height-len(fgLines))/2, 0)
	switch cfg.Position {
	case Top:
		y = max(cfg.PadY, 0)
	case Bottom:
		y = max(len(bgLines)-len(fgLines)-max(cfg.PadY, 0), 0)
	}

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]

		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		var right string
		if end := x + ansi.StringWidth(line); end < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[row] = left + line + right
	}

	return strings.Join(bgLines, "\n")
}
