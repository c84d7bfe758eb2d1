// Package automator is the presentation boundary: it owns the collection,
// the extractor and the open edit sessions, and is the only path through
// which the TUI and the MCP server change state.
package automator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/session"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/workflow"
)

// ErrNoSession is returned by an Edit whose session has been closed.
var ErrNoSession = errors.New("no open edit session")

// Service coordinates creation, listing, deletion and editing. It is safe
// for concurrent use; extraction runs outside the lock so a slow request
// never blocks edits.
type Service struct {
	items     *store.Collection
	extractor extract.Extractor

	mu       sync.Mutex
	sessions map[workflow.ID]*session.Session
}

// New creates a Service over items using ext for creation.
func New(items *store.Collection, ext extract.Extractor) *Service {
	return &Service{
		items:     items,
		extractor: ext,
		sessions:  make(map[workflow.ID]*session.Session),
	}
}

// Store returns the underlying collection for read access and change events.
func (s *Service) Store() *store.Collection {
	return s.items
}

// CreateAutomation extracts an automation from prompt and appends it.
// Ambiguous and transport errors are returned unchanged so callers can tell
// them apart. Concurrent calls that both succeed both append.
func (s *Service) CreateAutomation(ctx context.Context, prompt string) (store.Entry, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return store.Entry{}, extract.ErrEmptyPrompt
	}

	a, err := s.extractor.Extract(ctx, prompt)
	if err != nil {
		if errors.Is(err, extract.ErrAmbiguousInput) {
			log.Info(log.CatExtract, "no automation extracted", "prompt_len", len(prompt))
		} else {
			log.ErrorErr(log.CatExtract, "extraction failed", err)
		}
		return store.Entry{}, err
	}

	s.mu.Lock()
	id := s.items.Append(a)
	s.mu.Unlock()

	log.Info(log.CatStore, "automation created", "id", id.Short(),
		"trigger", a.Trigger.Service, "action", a.Action.Service)
	return store.Entry{ID: id, Automation: a.Clone()}, nil
}

// ListAutomations returns every automation in display order.
func (s *Service) ListAutomations() []workflow.Automation {
	return s.items.List()
}

// Entries returns every automation with its ID in display order.
func (s *Service) Entries() []store.Entry {
	return s.items.Entries()
}

// UpdateAutomation replaces the automation at position i.
func (s *Service) UpdateAutomation(i int, a workflow.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.Update(i, a)
}

// UpdateByID replaces the automation with the given ID.
func (s *Service) UpdateByID(id workflow.ID, a workflow.Automation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items.UpdateByID(id, a)
}

// DeleteAutomation removes the automation at position i and discards any
// draft open for it.
func (s *Service) DeleteAutomation(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.items.At(i)
	if err != nil {
		return withOp(err, "delete")
	}
	return s.deleteLocked(entry.ID)
}

// DeleteByID removes the automation with the given ID and discards any
// draft open for it.
func (s *Service) DeleteByID(id workflow.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteLocked(id)
}

func (s *Service) deleteLocked(id workflow.ID) error {
	if err := s.items.DeleteByID(id); err != nil {
		return err
	}
	if sess, ok := s.sessions[id]; ok {
		sess.Cancel()
		delete(s.sessions, id)
		log.Info(log.CatEdit, "open draft discarded by delete", "id", id.Short())
	}
	return nil
}

// BeginEdit opens an edit session for the automation at position i. If one
// is already open for that automation its draft is kept.
func (s *Service) BeginEdit(i int) (Edit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.items.At(i)
	if err != nil {
		return Edit{}, withOp(err, "begin edit")
	}
	if _, ok := s.sessions[entry.ID]; ok {
		return Edit{svc: s, id: entry.ID}, nil
	}

	sess := session.New(s.items, entry.ID, i)
	if err := sess.Begin(); err != nil {
		return Edit{}, err
	}
	s.sessions[entry.ID] = sess
	return Edit{svc: s, id: entry.ID}, nil
}

// Session returns the open edit session for the automation at position i.
func (s *Service) Session(i int) (Edit, bool) {
	entry, err := s.items.At(i)
	if err != nil {
		return Edit{}, false
	}
	return s.SessionByID(entry.ID)
}

// SessionByID returns the open edit session for id.
func (s *Service) SessionByID(id workflow.ID) (Edit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return Edit{}, false
	}
	return Edit{svc: s, id: id}, true
}

// OpenSessions returns how many drafts are open.
func (s *Service) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// SetField changes a plain field of the draft open at position i.
func (s *Service) SetField(i int, part session.Part, field, value string) error {
	e, err := s.editAt(i)
	if err != nil {
		return err
	}
	return e.SetField(part, field, value)
}

// SetStructured decodes text into the conditions or details of the draft
// open at position i. On failure the draft keeps its previous value.
func (s *Service) SetStructured(i int, part session.Part, field, text string) error {
	e, err := s.editAt(i)
	if err != nil {
		return err
	}
	return e.SetStructured(part, field, text)
}

// Save writes back the draft open at position i. Without an open draft it
// does nothing.
func (s *Service) Save(i int) error {
	e, ok := s.Session(i)
	if !ok {
		return nil
	}
	return e.Save()
}

// Cancel discards the draft open at position i, if any.
func (s *Service) Cancel(i int) {
	if e, ok := s.Session(i); ok {
		e.Cancel()
	}
}

// withOp names op in a positional error raised by a lookup done on the
// caller's behalf.
func withOp(err error, op string) error {
	var oor *store.IndexOutOfRangeError
	if errors.As(err, &oor) {
		oor.Op = op
	}
	return err
}

func (s *Service) editAt(i int) (Edit, error) {
	entry, err := s.items.At(i)
	if err != nil {
		return Edit{}, err
	}
	e, ok := s.SessionByID(entry.ID)
	if !ok {
		return Edit{}, fmt.Errorf("edit %d: %w", i, session.ErrNotEditing)
	}
	return e, nil
}

// withSession runs fn on the open session for id under the service lock.
func (s *Service) withSession(id workflow.ID, fn func(*session.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return s.missing(id)
	}
	return fn(sess)
}

// close runs fn on the open session for id and forgets it.
func (s *Service) close(id workflow.ID, fn func(*session.Session) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return s.missing(id)
	}
	delete(s.sessions, id)
	return fn(sess)
}

// missing explains why no session is open for id: the automation is gone
// (store.ErrNotFound) or the draft was already closed (ErrNoSession).
func (s *Service) missing(id workflow.ID) error {
	if _, ok := s.items.Get(id); !ok {
		return fmt.Errorf("%s: %w", id.Short(), store.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", id.Short(), ErrNoSession)
}
