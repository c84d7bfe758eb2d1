// Package session implements the view/edit round trip for one stored
// automation: take a private draft, change it field by field, then either
// write it back or throw it away.
package session

import (
	"errors"
	"fmt"

	"github.com/zjrosen/automator/internal/codec"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/workflow"
)

// State is the edit state of a session.
type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Editing:
		return "editing"
	default:
		return "unknown"
	}
}

// Part selects the trigger or the action of the draft.
type Part string

const (
	PartTrigger Part = "trigger"
	PartAction  Part = "action"
)

// Field names accepted by SetField and SetStructured.
const (
	FieldService    = "service"
	FieldEvent      = "event"
	FieldOperation  = "operation"
	FieldConditions = "conditions"
	FieldDetails    = "details"
)

var (
	// ErrNotEditing is returned by setters called outside Editing.
	ErrNotEditing = errors.New("session is not editing")
	// ErrUnknownField is returned for a part/field pair the draft does not have.
	ErrUnknownField = errors.New("unknown field")
)

// Session edits one stored automation. It is bound to the item's ID, so
// deleting or reordering other items never redirects a save. A Session is
// not safe for concurrent use.
type Session struct {
	items *store.Collection
	id    workflow.ID
	index int

	state    State
	draft    workflow.Automation
	baseline workflow.Automation
}

// New creates a session in Viewing state for the item with the given ID.
// index is the position the user selected and is kept for display only.
func New(items *store.Collection, id workflow.ID, index int) *Session {
	return &Session{items: items, id: id, index: index}
}

// ID returns the bound item's ID.
func (s *Session) ID() workflow.ID { return s.id }

// Index returns the position captured when the session was opened.
func (s *Session) Index() int { return s.index }

// State returns the current state.
func (s *Session) State() State { return s.state }

// Editing reports whether a draft is open.
func (s *Session) Editing() bool { return s.state == Editing }

// Begin copies the stored automation into a fresh draft. Calling Begin while
// already editing keeps the existing draft.
func (s *Session) Begin() error {
	if s.state == Editing {
		return nil
	}
	current, ok := s.items.Get(s.id)
	if !ok {
		return fmt.Errorf("begin edit %s: %w", s.id.Short(), store.ErrNotFound)
	}
	if i, ok := s.items.IndexOf(s.id); ok {
		s.index = i
	}
	s.baseline = current
	s.draft = current.Clone()
	s.state = Editing
	log.Debug(log.CatEdit, "edit started", "id", s.id.Short(), "index", s.index)
	return nil
}

// SetField changes one plain-text field of the draft. Valid pairs are
// trigger/service, trigger/event, action/service and action/operation.
func (s *Session) SetField(part Part, field, value string) error {
	if s.state != Editing {
		return ErrNotEditing
	}

	switch {
	case part == PartTrigger && field == FieldService:
		s.draft.Trigger.Service = value
	case part == PartTrigger && field == FieldEvent:
		s.draft.Trigger.Event = value
	case part == PartAction && field == FieldService:
		s.draft.Action.Service = value
	case part == PartAction && field == FieldOperation:
		s.draft.Action.Operation = value
	default:
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, part, field)
	}
	return nil
}

// SetStructured decodes text into trigger/conditions or action/details.
// On a decode failure the draft keeps its previous value and the
// *codec.DecodeError is returned for display.
func (s *Session) SetStructured(part Part, field, text string) error {
	if s.state != Editing {
		return ErrNotEditing
	}

	switch {
	case part == PartTrigger && field == FieldConditions:
		conds, err := codec.DecodeConditions(text)
		if err != nil {
			s.rejected(err, part, field)
			return err
		}
		s.draft.Trigger.Conditions = conds
	case part == PartAction && field == FieldDetails:
		details, err := codec.DecodeDetails(text)
		if err != nil {
			s.rejected(err, part, field)
			return err
		}
		s.draft.Action.Details = details
	default:
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, part, field)
	}
	return nil
}

func (s *Session) rejected(err error, part Part, field string) {
	log.Warn(log.CatCodec, "kept previous value after decode failure",
		"id", s.id.Short(), "part", part, "field", field, "error", err)
}

// StructuredText renders the draft's conditions or details as editable text.
// Outside Editing it renders the stored value.
func (s *Session) StructuredText(part Part, field string) (string, error) {
	a, ok := s.View()
	if !ok {
		return "", fmt.Errorf("render %s.%s: %w", part, field, store.ErrNotFound)
	}
	switch {
	case part == PartTrigger && field == FieldConditions:
		return codec.EncodeConditions(a.Trigger.Conditions), nil
	case part == PartAction && field == FieldDetails:
		return codec.EncodeDetails(a.Action.Details), nil
	default:
		return "", fmt.Errorf("%w: %s.%s", ErrUnknownField, part, field)
	}
}

// Save writes the draft back to the bound item and returns to Viewing.
// If the item was deleted meanwhile the draft is discarded and the error
// wraps store.ErrNotFound. Save while Viewing does nothing.
func (s *Session) Save() error {
	if s.state != Editing {
		return nil
	}

	draft := s.draft
	s.reset()

	if err := s.items.UpdateByID(s.id, draft); err != nil {
		log.Warn(log.CatEdit, "draft discarded, item no longer exists", "id", s.id.Short())
		return err
	}
	if i, ok := s.items.IndexOf(s.id); ok {
		s.index = i
	}
	log.Info(log.CatEdit, "draft saved", "id", s.id.Short(), "index", s.index)
	return nil
}

// Cancel discards the draft and returns to Viewing. The stored item is
// untouched. Cancel while Viewing does nothing.
func (s *Session) Cancel() {
	if s.state != Editing {
		return
	}
	s.reset()
	log.Debug(log.CatEdit, "edit cancelled", "id", s.id.Short())
}

func (s *Session) reset() {
	s.state = Viewing
	s.draft = workflow.Automation{}
	s.baseline = workflow.Automation{}
}

// View returns what the user should see: a copy of the draft while editing,
// otherwise the stored value. ok is false when the item no longer exists
// and there is no draft.
func (s *Session) View() (workflow.Automation, bool) {
	if s.state == Editing {
		return s.draft.Clone(), true
	}
	return s.items.Get(s.id)
}

// Dirty reports whether the draft differs from the value copied at Begin.
func (s *Session) Dirty() bool {
	return s.state == Editing && !s.draft.Equal(s.baseline)
}

// Baseline returns the value copied at Begin, for diffing against the draft.
func (s *Session) Baseline() (workflow.Automation, bool) {
	if s.state != Editing {
		return workflow.Automation{}, false
	}
	return s.baseline.Clone(), true
}
