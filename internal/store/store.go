// Package store holds the in-memory collection of automations.
//
// Items keep insertion order and are addressable both by position (what the
// user sees) and by a stable ID (what edit sessions hold on to). Values are
// copied on the way in and out so no caller ever aliases stored state.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zjrosen/automator/internal/log"
	"github.com/zjrosen/automator/internal/pubsub"
	"github.com/zjrosen/automator/internal/workflow"
)

var (
	// ErrIndexOutOfRange matches every *IndexOutOfRangeError.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotFound is returned when no stored automation has the given ID.
	ErrNotFound = errors.New("automation not found")
)

// IndexOutOfRangeError reports a positional operation outside [0, Len).
type IndexOutOfRangeError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: index %d out of range (collection has %d items)", e.Op, e.Index, e.Len)
}

// Is makes errors.Is(err, ErrIndexOutOfRange) true.
func (e *IndexOutOfRangeError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Entry is a stored automation with its identity.
type Entry struct {
	ID         workflow.ID
	Automation workflow.Automation
}

// Change is the payload published for every mutation. Index is the
// position the item had when the change happened.
type Change struct {
	ID         workflow.ID
	Index      int
	Automation workflow.Automation
}

// Collection is an ordered, thread-safe list of automations.
type Collection struct {
	mu      sync.RWMutex
	entries []Entry
	broker  *pubsub.Broker[Change]
}

// New creates an empty collection.
func New() *Collection {
	return &Collection{broker: pubsub.NewBroker[Change]()}
}

// Broker exposes change notifications.
func (c *Collection) Broker() *pubsub.Broker[Change] {
	return c.broker
}

// Close stops change notifications. The collection stays usable.
func (c *Collection) Close() {
	c.broker.Close()
}

// Append stores a copy of a at the end and returns its new ID.
func (c *Collection) Append(a workflow.Automation) workflow.ID {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := Entry{ID: workflow.NewID(), Automation: a.Clone()}
	c.entries = append(c.entries, e)
	index := len(c.entries) - 1

	log.Info(log.CatStore, "appended automation", "id", e.ID.Short(), "index", index, "len", len(c.entries))
	c.publish(pubsub.CreatedEvent, e, index)
	return e.ID
}

// Update replaces the automation at position i.
func (c *Collection) Update(i int, a workflow.Automation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex("update", i); err != nil {
		return err
	}
	c.replace(i, a)
	return nil
}

// Delete removes the automation at position i. Later items shift down by one.
func (c *Collection) Delete(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkIndex("delete", i); err != nil {
		return err
	}
	c.remove(i)
	return nil
}

// List returns copies of every automation in order.
func (c *Collection) List() []workflow.Automation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]workflow.Automation, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Automation.Clone()
	}
	return out
}

// Entries returns copies of every entry in order.
func (c *Collection) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = Entry{ID: e.ID, Automation: e.Automation.Clone()}
	}
	return out
}

// Len returns the number of stored automations.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// At returns a copy of the entry at position i.
func (c *Collection) At(i int) (Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.checkIndex("at", i); err != nil {
		return Entry{}, err
	}
	e := c.entries[i]
	return Entry{ID: e.ID, Automation: e.Automation.Clone()}, nil
}

// Get returns a copy of the automation with the given ID.
func (c *Collection) Get(id workflow.ID) (workflow.Automation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return workflow.Automation{}, false
	}
	return c.entries[i].Automation.Clone(), true
}

// IndexOf returns the current position of id, or false if it is gone.
func (c *Collection) IndexOf(id workflow.ID) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	return i, i >= 0
}

// UpdateByID replaces the automation with the given ID wherever it now sits.
func (c *Collection) UpdateByID(id workflow.ID, a workflow.Automation) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		log.Warn(log.CatStore, "update of missing automation", "id", id.Short())
		return fmt.Errorf("update %s: %w", id.Short(), ErrNotFound)
	}
	c.replace(i, a)
	return nil
}

// DeleteByID removes the automation with the given ID.
func (c *Collection) DeleteByID(id workflow.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		log.Warn(log.CatStore, "delete of missing automation", "id", id.Short())
		return fmt.Errorf("delete %s: %w", id.Short(), ErrNotFound)
	}
	c.remove(i)
	return nil
}

// checkIndex must be called with c.mu held.
func (c *Collection) checkIndex(op string, i int) error {
	if i >= 0 && i < len(c.entries) {
		return nil
	}
	err := &IndexOutOfRangeError{Op: op, Index: i, Len: len(c.entries)}
	log.ErrorErr(log.CatStore, "positional operation rejected", err)
	return err
}

func (c *Collection) indexOf(id workflow.ID) int {
	for i, e := range c.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) replace(i int, a workflow.Automation) {
	c.entries[i].Automation = a.Clone()
	log.Info(log.CatStore, "updated automation", "id", c.entries[i].ID.Short(), "index", i)
	c.publish(pubsub.UpdatedEvent, c.entries[i], i)
}

func (c *Collection) remove(i int) {
	e := c.entries[i]
	c.entries = slices.Delete(c.entries, i, i+1)
	log.Info(log.CatStore, "deleted automation", "id", e.ID.Short(), "index", i, "len", len(c.entries))
	c.publish(pubsub.DeletedEvent, e, i)
}

func (c *Collection) publish(t pubsub.EventType, e Entry, index int) {
	c.broker.Publish(t, Change{ID: e.ID, Index: index, Automation: e.Automation.Clone()})
}
