// Package app contains the root application model.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/automator/internal/automator"
	"github.com/zjrosen/automator/internal/flags"
	"github.com/zjrosen/automator/internal/keys"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/pubsub"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/ui/card"
	"github.com/zjrosen/automator/internal/ui/editor"
	helpoverlay "github.com/zjrosen/automator/internal/ui/help"
	"github.com/zjrosen/automator/internal/ui/logoverlay"
	"github.com/zjrosen/automator/internal/ui/prompt"
	"github.com/zjrosen/automator/internal/ui/toaster"
	"github.com/zjrosen/automator/internal/workflow"
)

// Focus says which panel receives keys when no modal is open.
type Focus int

const (
	FocusPrompt Focus = iota
	FocusList
)

// Config wires the model to its collaborators.
type Config struct {
	Service      *automator.Service
	Flags        *flags.Registry
	ShowExamples bool
	// Debug enables the log overlay (ctrl+x).
	Debug bool
}

// createdMsg reports the outcome of one extraction.
type createdMsg struct {
	entry store.Entry
	err   error
}

// Model is the root application state.
type Model struct {
	svc   *automator.Service
	flags *flags.Registry
	keys  keys.KeyMap
	help  help.Model

	prompt   prompt.Model
	cards    *card.Renderer
	entries  []store.Entry
	selected int
	offset   int // first card drawn when the list overflows
	focus    Focus

	editor   editor.Model
	editing  bool
	showHelp bool
	helpView helpoverlay.Model

	// banner holds the last extraction failure or guidance until the next
	// submit.
	banner string

	toaster    toaster.Model
	debugMode  bool
	logOverlay logoverlay.Model

	ctx           context.Context
	cancel        context.CancelFunc
	storeListener *pubsub.ContinuousListener[store.Change]
	logListener   *log.LogListener

	width  int
	height int
}

// New creates the root model. Call Close when the program exits.
func New(cfg Config) Model {
	if zone.DefaultManager == nil {
		zone.NewGlobal()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		svc:           cfg.Service,
		flags:         cfg.Flags,
		keys:          keys.DefaultKeyMap(),
		help:          help.New(),
		prompt:        prompt.New(cfg.ShowExamples),
		cards:         card.NewRenderer(),
		entries:       cfg.Service.Entries(),
		helpView:      helpoverlay.New(),
		toaster:       toaster.New(),
		debugMode:     cfg.Debug,
		logOverlay:    logoverlay.New(),
		ctx:           ctx,
		cancel:        cancel,
		storeListener: pubsub.NewContinuousListener(ctx, cfg.Service.Store().Broker()),
	}
	if cfg.Debug {
		m.logListener = log.NewListener(ctx)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.prompt.Init(), m.storeListener.Listen()}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt = m.prompt.SetWidth(msg.Width)
		m.helpView = m.helpView.SetSize(msg.Width, msg.Height)
		m.logOverlay.SetSize(msg.Width, msg.Height)
		if m.editing {
			m.editor = m.editor.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case pubsub.Event[store.Change]:
		return m.handleStoreChange(msg)

	case log.LogEvent:
		m.logOverlay.Append(msg.Payload)
		return m, m.logListener.Listen()

	case prompt.SubmitMsg:
		return m.submit(msg.Prompt)

	case createdMsg:
		var cmd tea.Cmd
		m.prompt, _ = m.prompt.SetBusy(false)
		if msg.err != nil {
			m.banner = automator.ErrorMessage(msg.err)
			return m, nil
		}
		if i, ok := m.svc.Store().IndexOf(msg.entry.ID); ok {
			m.selected = i
		}
		m.toaster, cmd = m.toaster.Show("Automation created", toaster.StyleSuccess)
		return m, cmd

	case editor.SaveMsg:
		m.editing = false
		if msg.Err != nil {
			var cmd tea.Cmd
			m.toaster, cmd = m.toaster.Show(automator.ErrorMessage(msg.Err), toaster.StyleError)
			return m, cmd
		}
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("Changes saved", toaster.StyleSuccess)
		return m, cmd

	case editor.CancelMsg:
		m.editing = false
		return m, nil

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}

	return m.forward(msg)
}

// forward hands non-key messages (cursor blinks) to whatever has focus.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.editing {
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.debugMode && key.Matches(msg, m.keys.Logs) {
		m.logOverlay.Toggle()
		return m, nil
	}
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.SwitchFocus) {
		return m.setFocus(1 - m.focus), nil
	}

	if m.focus == FocusPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)
		m.offset = min(m.offset, m.selected)
	case key.Matches(msg, m.keys.Down):
		m.selected = min(m.selected+1, max(len(m.entries)-1, 0))
	case key.Matches(msg, m.keys.Edit):
		return m.beginEdit()
	case key.Matches(msg, m.keys.Delete):
		return m.deleteSelected()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Escape):
		return m.setFocus(FocusPrompt), nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) setFocus(f Focus) Model {
	m.focus = f
	if f == FocusPrompt {
		m.prompt = m.prompt.Focus()
	} else {
		m.prompt = m.prompt.Blur()
	}
	return m
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.banner = ""
	var spin tea.Cmd
	m.prompt, spin = m.prompt.SetBusy(true)

	svc, ctx := m.svc, m.ctx
	create := func() tea.Msg {
		entry, err := svc.CreateAutomation(ctx, text)
		return createdMsg{entry: entry, err: err}
	}
	return m, tea.Batch(spin, create)
}

func (m Model) beginEdit() (tea.Model, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	edit, err := m.svc.BeginEdit(m.selected)
	if err != nil {
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(automator.ErrorMessage(err), toaster.StyleError)
		return m, cmd
	}
	m.editor = editor.New(edit, m.flags.Enabled(flags.FlagDraftDiff)).SetSize(m.width, m.height)
	m.editing = true
	return m, m.editor.Init()
}

func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if len(m.entries) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	if err := m.svc.DeleteAutomation(m.selected); err != nil {
		m.toaster, cmd = m.toaster.Show(automator.ErrorMessage(err), toaster.StyleError)
		return m, cmd
	}
	m.entries = m.svc.Entries()
	m.clampSelection()
	m.toaster, cmd = m.toaster.Show("Automation deleted", toaster.StyleInfo)
	return m, cmd
}

// handleStoreChange refreshes the list. Changes may come from this model
// or from another surface sharing the service.
func (m Model) handleStoreChange(ev pubsub.Event[store.Change]) (tea.Model, tea.Cmd) {
	m.entries = m.svc.Entries()
	m.clampSelection()

	cmds := []tea.Cmd{m.storeListener.Listen()}
	if ev.Type == pubsub.DeletedEvent && m.editing && ev.Payload.ID == m.editor.ID() {
		m.editing = false
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(automator.ErrorMessage(store.ErrNotFound), toaster.StyleWarn)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) clampSelection() {
	m.selected = min(m.selected, max(len(m.entries)-1, 0))
	m.offset = min(m.offset, m.selected)
}

// Focused returns the panel with keyboard focus.
func (m Model) Focused() Focus { return m.focus }

// Editing reports whether the editor modal is open.
func (m Model) Editing() bool { return m.editing }

// EditingID returns the automation open in the editor.
func (m Model) EditingID() (workflow.ID, bool) {
	if !m.editing {
		return "", false
	}
	return m.editor.ID(), true
}

// Close releases subscriptions and cancels in-flight extractions.
func (m *Model) Close() error {
	m.cancel()
	return nil
}
