package automator

import (
	"github.com/zjrosen/automator/internal/session"
	"github.com/zjrosen/automator/internal/workflow"
)

// Edit is a handle to one open edit session. Every call goes through the
// owning Service's lock, so a handle may be used from any goroutine. Once
// the session is saved, cancelled or its automation deleted, calls return
// ErrNoSession.
type Edit struct {
	svc *Service
	id  workflow.ID
}

// ID returns the ID of the automation being edited.
func (e Edit) ID() workflow.ID { return e.id }

// Valid reports whether e refers to a session at all.
func (e Edit) Valid() bool { return e.svc != nil }

// Open reports whether the session is still open.
func (e Edit) Open() bool {
	if e.svc == nil {
		return false
	}
	_, ok := e.svc.SessionByID(e.id)
	return ok
}

// Index returns the current display position of the automation.
func (e Edit) Index() int {
	var idx int
	_ = e.svc.withSession(e.id, func(s *session.Session) error {
		idx = s.Index()
		return nil
	})
	if i, ok := e.svc.items.IndexOf(e.id); ok {
		idx = i
	}
	return idx
}

// SetField changes a plain field of the draft.
func (e Edit) SetField(part session.Part, field, value string) error {
	return e.svc.withSession(e.id, func(s *session.Session) error {
		return s.SetField(part, field, value)
	})
}

// SetStructured decodes text into conditions or details. On failure the
// draft keeps its previous value and the decode error is returned.
func (e Edit) SetStructured(part session.Part, field, text string) error {
	return e.svc.withSession(e.id, func(s *session.Session) error {
		return s.SetStructured(part, field, text)
	})
}

// StructuredText renders the draft's conditions or details for editing.
func (e Edit) StructuredText(part session.Part, field string) (string, error) {
	var text string
	err := e.svc.withSession(e.id, func(s *session.Session) error {
		var err error
		text, err = s.StructuredText(part, field)
		return err
	})
	return text, err
}

// Draft returns a copy of the current draft.
func (e Edit) Draft() (workflow.Automation, bool) {
	var (
		a  workflow.Automation
		ok bool
	)
	_ = e.svc.withSession(e.id, func(s *session.Session) error {
		a, ok = s.View()
		return nil
	})
	return a, ok
}

// Baseline returns the stored value captured when editing began.
func (e Edit) Baseline() (workflow.Automation, bool) {
	var (
		a  workflow.Automation
		ok bool
	)
	_ = e.svc.withSession(e.id, func(s *session.Session) error {
		a, ok = s.Baseline()
		return nil
	})
	return a, ok
}

// Dirty reports whether the draft differs from the baseline.
func (e Edit) Dirty() bool {
	var dirty bool
	_ = e.svc.withSession(e.id, func(s *session.Session) error {
		dirty = s.Dirty()
		return nil
	})
	return dirty
}

// Save writes the draft back and closes the session. If the automation was
// deleted meanwhile the draft is discarded and the error wraps
// store.ErrNotFound.
func (e Edit) Save() error {
	return e.svc.close(e.id, func(s *session.Session) error {
		return s.Save()
	})
}

// Cancel discards the draft and closes the session.
func (e Edit) Cancel() {
	_ = e.svc.close(e.id, func(s *session.Session) error {
		s.Cancel()
		return nil
	})
}
