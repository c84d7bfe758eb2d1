package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/automator/internal/automator"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPrompt_EnterSubmitsAndClears(t *testing.T) {
	m := typeText(New(true), "when a pr opens, ping slack")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg, ok := cmd().(SubmitMsg)
	require.True(t, ok)
	require.Equal(t, "when a pr opens, ping slack", msg.Prompt)
	require.Empty(t, m.Value())
}

func TestPrompt_BlankEnterDoesNothing(t *testing.T) {
	for _, text := range []string{"", "   "} {
		m := typeText(New(true), text)

		m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		require.Nil(t, cmd, "%q", text)
		require.Equal(t, text, m.Value())
	}
}

func TestPrompt_CtrlJInsertsNewline(t *testing.T) {
	m := typeText(New(true), "one")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	m = typeText(m, "two")

	if cmd != nil {
		_, isSubmit := cmd().(SubmitMsg)
		require.False(t, isSubmit)
	}
	require.Equal(t, "one\ntwo", m.Value())
}

func TestPrompt_BusyIgnoresKeys(t *testing.T) {
	m := typeText(New(true), "abc")
	m, cmd := m.SetBusy(true)
	require.NotNil(t, cmd, "starting returns the spinner tick")
	require.True(t, m.Busy())

	m = typeText(m, "def")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.Nil(t, cmd)
	require.Equal(t, "abc", m.Value())
	require.Contains(t, ansi.Strip(m.View()), "Generating automation")

	m, _ = m.SetBusy(false)
	m = typeText(m, "d")
	require.Equal(t, "abcd", m.Value())
}

func TestPrompt_ExamplesCycle(t *testing.T) {
	m := New(true)

	for i := range len(automator.ExamplePrompts) + 1 {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})
		want := automator.ExamplePrompts[i%len(automator.ExamplePrompts)]
		require.Equal(t, want, m.Value())
	}
}

func TestPrompt_ExamplesDisabled(t *testing.T) {
	m := New(false)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlE})

	require.Empty(t, m.Value())
}

func TestPrompt_ClearAndBlur(t *testing.T) {
	m := typeText(New(true), "something")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Empty(t, m.Value())

	m = m.Blur()
	require.False(t, m.Focused())
	m = typeText(m, "x")
	require.Empty(t, m.Value())

	m = m.Focus()
	m = typeText(m, "x")
	require.Equal(t, "x", m.Value())
}

func TestPrompt_ViewShowsGenerateButton(t *testing.T) {
	m := New(true).SetWidth(80)

	out := ansi.Strip(m.View())
	require.Contains(t, out, "Prompt")
	require.Contains(t, out, "Generate")
}
