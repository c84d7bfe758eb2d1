package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap_Matches(t *testing.T) {
	k := DefaultKeyMap()

	tests := []struct {
		name    string
		msg     tea.KeyMsg
		binding key.Binding
	}{
		{"j moves down", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, k.Down},
		{"k moves up", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, k.Up},
		{"e edits", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}}, k.Edit},
		{"enter edits", tea.KeyMsg{Type: tea.KeyEnter}, k.Edit},
		{"d deletes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}}, k.Delete},
		{"? toggles help", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}}, k.Help},
		{"ctrl+c quits", tea.KeyMsg{Type: tea.KeyCtrlC}, k.Quit},
		{"tab switches focus", tea.KeyMsg{Type: tea.KeyTab}, k.SwitchFocus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, key.Matches(tt.msg, tt.binding))
		})
	}
}

func TestPromptKeyMap_EnterSubmitsCtrlJBreaksLine(t *testing.T) {
	k := DefaultPromptKeyMap()

	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, k.Submit))
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyEnter}, k.Newline))
	require.Equal(t, []string{"ctrl+j"}, k.Newline.Keys())
	// q must reach the text area while typing.
	require.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}, k.Quit))
}

func TestEditorKeyMap_Bindings(t *testing.T) {
	k := DefaultEditorKeyMap()

	require.Equal(t, []string{"ctrl+s"}, k.Save.Keys())
	require.Equal(t, []string{"esc"}, k.Cancel.Keys())
	require.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyShiftTab}, k.PrevField))
}

func TestHelpText_NotEmpty(t *testing.T) {
	groups := [][][]key.Binding{
		DefaultKeyMap().FullHelp(),
		DefaultPromptKeyMap().FullHelp(),
		DefaultEditorKeyMap().FullHelp(),
	}
	for _, group := range groups {
		for _, column := range group {
			for _, b := range column {
				require.NotEmpty(t, b.Help().Key)
				require.NotEmpty(t, b.Help().Desc)
			}
		}
	}
}
