// Package editor provides the modal for editing one automation.
//
// Plain fields (services, event, operation) are written to the draft on
// every keystroke. The conditions and details text areas are decoded when
// focus leaves them and again before saving; a decode error is shown under
// the field, the draft keeps its previous value, and saving is refused
// until the text parses.
package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/codec"
	"github.com/zjrosen/automator/internal/keys"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/session"
	"github.com/zjrosen/automator/internal/ui/overlay"
	"github.com/zjrosen/automator/internal/ui/styles"
	"github.com/zjrosen/automator/internal/workflow"
)

// Field identifies which input is focused.
type Field int

const (
	FieldTriggerService Field = iota
	FieldTriggerEvent
	FieldConditions
	FieldActionService
	FieldActionOperation
	FieldDetails
	fieldCount
)

type target struct {
	part  session.Part
	field string
}

var targets = [fieldCount]target{
	FieldTriggerService:  {session.PartTrigger, session.FieldService},
	FieldTriggerEvent:    {session.PartTrigger, session.FieldEvent},
	FieldConditions:      {session.PartTrigger, session.FieldConditions},
	FieldActionService:   {session.PartAction, session.FieldService},
	FieldActionOperation: {session.PartAction, session.FieldOperation},
	FieldDetails:         {session.PartAction, session.FieldDetails},
}

func (f Field) structured() bool {
	return f == FieldConditions || f == FieldDetails
}

// SaveMsg is sent after a save attempt. Err wraps store.ErrNotFound when
// the automation was deleted while being edited.
type SaveMsg struct {
	ID  workflow.ID
	Err error
}

// CancelMsg is sent after the draft was discarded.
type CancelMsg struct {
	ID workflow.ID
}

// Model holds the editor state.
type Model struct {
	edit     automator.Edit
	inputs   map[Field]*textinput.Model
	areas    map[Field]*textarea.Model
	errs     map[Field]string
	focus    Field
	showDiff bool
	keys     keys.EditorKeyMap
	help     help.Model
	failure  string
	width    int
	height   int
}

// New creates an editor over an open edit session. showDiff adds a panel
// listing the draft's changes against the stored value.
func New(edit automator.Edit, showDiff bool) Model {
	m := Model{
		edit:     edit,
		inputs:   make(map[Field]*textinput.Model),
		areas:    make(map[Field]*textarea.Model),
		errs:     make(map[Field]string),
		showDiff: showDiff,
		keys:     keys.DefaultEditorKeyMap(),
		help:     help.New(),
	}

	draft, _ := edit.Draft()
	plain := map[Field]string{
		FieldTriggerService:  draft.Trigger.Service,
		FieldTriggerEvent:    draft.Trigger.Event,
		FieldActionService:   draft.Action.Service,
		FieldActionOperation: draft.Action.Operation,
	}
	for f, value := range plain {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 0
		ti.SetValue(value)
		ti.CursorEnd()
		m.inputs[f] = &ti
	}

	for _, f := range []Field{FieldConditions, FieldDetails} {
		ta := textarea.New()
		ta.ShowLineNumbers = false
		ta.Prompt = ""
		ta.SetHeight(5)
		t := targets[f]
		text, err := edit.StructuredText(t.part, t.field)
		if err != nil {
			log.ErrorErr(log.CatUI, "editor could not render structured text", err, "field", t.field)
		}
		ta.SetValue(text)
		m.areas[f] = &ta
	}

	m.setFocus(FieldTriggerService)
	return m
}

// ID returns the automation being edited.
func (m Model) ID() workflow.ID { return m.edit.ID() }

// Focused returns the focused field.
func (m Model) Focused() Field { return m.focus }

// FieldError returns the inline decode error for a structured field.
func (m Model) FieldError(f Field) string { return m.errs[f] }

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	inner := m.boxWidth() - 6
	for _, ti := range m.inputs {
		ti.Width = max(inner-14, 10)
	}
	for _, ta := range m.areas {
		ta.SetWidth(max(inner-2, 10))
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.forward(msg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		edit := m.edit
		return m, func() tea.Msg {
			edit.Cancel()
			return CancelMsg{ID: edit.ID()}
		}

	case key.Matches(keyMsg, m.keys.Save):
		m.applyStructured(FieldConditions)
		m.applyStructured(FieldDetails)
		if m.errs[FieldConditions] != "" || m.errs[FieldDetails] != "" {
			log.Debug(log.CatUI, "save blocked by malformed text", "id", m.edit.ID().Short())
			return m, nil
		}
		edit := m.edit
		return m, func() tea.Msg {
			return SaveMsg{ID: edit.ID(), Err: edit.Save()}
		}

	case key.Matches(keyMsg, m.keys.NextField):
		m.moveFocus(1)
		return m, nil

	case key.Matches(keyMsg, m.keys.PrevField):
		m.moveFocus(-1)
		return m, nil
	}

	return m.forward(msg)
}

// forward passes msg to the focused input and writes plain edits through.
func (m Model) forward(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if ti, ok := m.inputs[m.focus]; ok {
		before := ti.Value()
		*ti, cmd = ti.Update(msg)
		if ti.Value() != before {
			t := targets[m.focus]
			if err := m.edit.SetField(t.part, t.field, ti.Value()); err != nil {
				m.failure = automator.ErrorMessage(err)
			}
		}
		return m, cmd
	}
	if ta, ok := m.areas[m.focus]; ok {
		*ta, cmd = ta.Update(msg)
	}
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	if m.focus.structured() {
		m.applyStructured(m.focus)
	}
	next := (int(m.focus) + delta + int(fieldCount)) % int(fieldCount)
	m.setFocus(Field(next))
}

func (m *Model) setFocus(f Field) {
	m.focus = f
	for field, ti := range m.inputs {
		if field == f {
			ti.Focus()
		} else {
			ti.Blur()
		}
	}
	for field, ta := range m.areas {
		if field == f {
			ta.Focus()
		} else {
			ta.Blur()
		}
	}
}

// applyStructured decodes one text area into the draft, recording or
// clearing its inline error.
func (m *Model) applyStructured(f Field) {
	t := targets[f]
	err := m.edit.SetStructured(t.part, t.field, m.areas[f].Value())
	switch {
	case err == nil:
		delete(m.errs, f)
	case errors.Is(err, codec.ErrMalformedStructuredText):
		m.errs[f] = automator.ErrorMessage(err)
	default:
		m.failure = automator.ErrorMessage(err)
	}
}

func (m Model) boxWidth() int {
	if m.width == 0 {
		return 72
	}
	return min(max(m.width-4, 48), 96)
}

// View renders the editor modal.
func (m Model) View() string {
	width := m.boxWidth()
	sectionWidth := width - 4

	title := fmt.Sprintf("Edit Automation #%d", m.edit.Index()+1)
	if m.edit.Dirty() {
		title += " •"
	}

	triggerRows := []string{
		m.inputRow("Service", FieldTriggerService),
		m.inputRow("Event", FieldTriggerEvent),
	}
	actionRows := []string{
		m.inputRow("Service", FieldActionService),
		m.inputRow("Operation", FieldActionOperation),
	}

	sections := []string{
		styles.RenderSection(triggerRows, "Trigger", "", sectionWidth, m.focus == FieldTriggerService || m.focus == FieldTriggerEvent),
		m.structuredSection("Conditions", FieldConditions, sectionWidth),
		styles.RenderSection(actionRows, "Action", "", sectionWidth, m.focus == FieldActionService || m.focus == FieldActionOperation),
		m.structuredSection("Details", FieldDetails, sectionWidth),
	}

	if m.showDiff {
		draft, okDraft := m.edit.Draft()
		baseline, okBase := m.edit.Baseline()
		if okDraft && okBase {
			sections = append(sections, styles.RenderSection(renderDiff(baseline, draft), "Changes", "", sectionWidth, false))
		}
	}

	if m.failure != "" {
		sections = append(sections, styles.ErrorStyle.Render(m.failure))
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.OverlayTitleColor)
	titleBorder := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", width))
	pad := lipgloss.NewStyle().PaddingLeft(1)

	content := pad.Render(titleStyle.Render(title)) + "\n" +
		titleBorder + "\n" +
		pad.Render(strings.Join(sections, "\n")) + "\n" +
		pad.Render(m.help.ShortHelpView(m.keys.ShortHelp()))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(content)
}

func (m Model) inputRow(label string, f Field) string {
	prefix := "  "
	if m.focus == f {
		prefix = styles.SelectionIndicatorStyle.Render("> ")
	}
	name := lipgloss.NewStyle().Width(11).Foreground(styles.TextDescriptionColor).Render(label)
	return prefix + name + m.inputs[f].View()
}

func (m Model) structuredSection(title string, f Field, width int) string {
	rows := strings.Split(m.areas[f].View(), "\n")
	if msg := m.errs[f]; msg != "" {
		rows = append(rows, styles.ErrorStyle.Render(msg))
	}
	return styles.RenderSection(rows, title, "JSON", width, m.focus == f)
}

// Overlay renders the editor on top of a background view.
func (m Model) Overlay(background string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), background)
}
