package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
)

// Zone IDs for mouse click detection. Cards are marked by position.
const (
	zonePrompt     = "app-prompt"
	zoneCardPrefix = "app-card:"
)

func makeCardZoneID(index int) string {
	return fmt.Sprintf("%s%d", zoneCardPrefix, index)
}

// handleMouse selects a card on click, focuses the prompt when it is
// clicked, and moves the selection with the wheel. Modals swallow the
// mouse.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.editing || m.showHelp || m.logOverlay.Visible() {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if m.focus == FocusList {
			m.selected = max(m.selected-1, 0)
			m.offset = min(m.offset, m.selected)
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if m.focus == FocusList {
			m.selected = min(m.selected+1, max(len(m.entries)-1, 0))
		}
		return m, nil
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}
	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	for i := range m.entries {
		if z := zone.Get(makeCardZoneID(i)); z != nil && z.InBounds(msg) {
			m.selected = i
			return m.setFocus(FocusList), nil
		}
	}
	if z := zone.Get(zonePrompt); z != nil && z.InBounds(msg) {
		return m.setFocus(FocusPrompt), nil
	}
	return m, nil
}
