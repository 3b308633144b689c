// Package builder owns the schema being edited and the collection of saved
// schemas. A Session is single-owner state: every operation runs to completion
// on the calling goroutine and there is no internal locking, so hosts that
// share a Session across goroutines must serialize access themselves.
package builder

import (
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// ErrNoSchema is returned by operations that need a current schema when none
// has been initialized.
var ErrNoSchema = errors.New("builder: no current schema")

// ErrEmptyName is returned by SaveSchema when the trimmed name is empty.
var ErrEmptyName = errors.New("builder: schema name is required")

// Session tracks the schema under edit, the saved collection, and whether the
// current schema has unsaved changes.
type Session struct {
	current  *model.FormSchema
	saved    []model.FormSchema
	modified bool

	now func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSavedSchemas seeds the saved collection, typically from a storage load.
func WithSavedSchemas(schemas []model.FormSchema) Option {
	return func(s *Session) {
		s.saved = model.CloneSchemas(schemas)
	}
}

// NewSession constructs an empty Session.
func NewSession(options ...Option) *Session {
	session := &Session{now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(session)
		}
	}
	return session
}

// Initialize creates an empty current schema when none exists. Calling it
// again while a schema is present is a no-op, so it is safe to invoke on
// every editor entry.
func (s *Session) Initialize() {
	if s.current != nil {
		return
	}
	now := s.now()
	s.current = &model.FormSchema{
		ID:        NewSchemaID(),
		Fields:    []model.FormField{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddField appends the field to the current schema. The caller supplies the
// field's id and initial order; the engine does not verify uniqueness of
// externally chosen ids, and duplicate ids will make downstream lookups match
// the first occurrence only.
func (s *Session) AddField(field model.FormField) {
	if s.current == nil {
		return
	}
	s.current.Fields = append(s.current.Fields, model.CloneField(field))
	s.modified = true
}

// UpdateField merges updates onto the field with the given id. Unknown ids
// are a no-op. The merge is shallow: rules, options, and parent id sequences
// are wholly replaced when present in the update.
func (s *Session) UpdateField(fieldID string, updates FieldUpdate) {
	if s.current == nil {
		return
	}
	for i := range s.current.Fields {
		if s.current.Fields[i].ID != fieldID {
			continue
		}
		updates.apply(&s.current.Fields[i])
		s.modified = true
		return
	}
}

// DeleteField removes the field with the given id; unknown ids are a no-op.
// Parent references held by other fields are not cleaned up: derivation
// treats them as never ready.
func (s *Session) DeleteField(fieldID string) {
	if s.current == nil {
		return
	}
	for i := range s.current.Fields {
		if s.current.Fields[i].ID != fieldID {
			continue
		}
		s.current.Fields = append(s.current.Fields[:i], s.current.Fields[i+1:]...)
		model.NormalizeOrder(s.current.Fields)
		s.modified = true
		return
	}
}

// ReorderFields moves the field at fromIndex to toIndex and renumbers every
// field's order to its new position. Out-of-range indices are a no-op.
func (s *Session) ReorderFields(fromIndex, toIndex int) {
	if s.current == nil {
		return
	}
	fields := s.current.Fields
	if fromIndex < 0 || fromIndex >= len(fields) || toIndex < 0 || toIndex >= len(fields) {
		return
	}
	moved := fields[fromIndex]
	fields = append(fields[:fromIndex], fields[fromIndex+1:]...)
	fields = append(fields[:toIndex], append([]model.FormField{moved}, fields[toIndex:]...)...)
	model.NormalizeOrder(fields)
	s.current.Fields = fields
	s.modified = true
}

// SaveSchema names the current schema and snapshots it into the saved
// collection, replacing any saved schema with the same id in place. It resets
// the modified flag and returns a copy of the saved collection.
func (s *Session) SaveSchema(name string) ([]model.FormSchema, error) {
	if s.current == nil {
		return nil, ErrNoSchema
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	s.current.Name = name
	s.current.UpdatedAt = s.now()

	snapshot := model.CloneSchema(*s.current)
	replaced := false
	for i := range s.saved {
		if s.saved[i].ID == snapshot.ID {
			s.saved[i] = snapshot
			replaced = true
			break
		}
	}
	if !replaced {
		s.saved = append(s.saved, snapshot)
	}

	s.modified = false
	return model.CloneSchemas(s.saved), nil
}

// LoadSchema replaces the current schema with an independent copy of the
// saved schema with the given id. Unknown ids leave the session untouched.
func (s *Session) LoadSchema(schemaID string) bool {
	for _, saved := range s.saved {
		if saved.ID == schemaID {
			schema := model.CloneSchema(saved)
			s.current = &schema
			s.modified = false
			return true
		}
	}
	return false
}

// ClearCurrentSchema drops the current schema so the next Initialize starts
// fresh.
func (s *Session) ClearCurrentSchema() {
	s.current = nil
	s.modified = false
}

// DeleteSavedSchema removes the saved schema with the given id; unknown ids
// are a no-op. The current schema is untouched even when it was loaded from
// the deleted entry.
func (s *Session) DeleteSavedSchema(schemaID string) {
	for i := range s.saved {
		if s.saved[i].ID == schemaID {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			return
		}
	}
}

// CurrentSchema returns a copy of the schema under edit and whether one
// exists.
func (s *Session) CurrentSchema() (model.FormSchema, bool) {
	if s.current == nil {
		return model.FormSchema{}, false
	}
	return model.CloneSchema(*s.current), true
}

// SavedSchemas returns a copy of the saved collection in save order.
func (s *Session) SavedSchemas() []model.FormSchema {
	return model.CloneSchemas(s.saved)
}

// Modified reports whether the current schema has changes since the last
// save, load, or clear.
func (s *Session) Modified() bool {
	return s.modified
}
