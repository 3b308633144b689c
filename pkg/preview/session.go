// Package preview runs a schema as a live form: it seeds default values,
// validates edits as they land, and keeps derived fields in sync with their
// parents.
package preview

import (
	"github.com/goliatone/go-formbuilder/pkg/derive"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/validation"
)

// Session holds the live state of one form being filled out. Like the
// builder session it is single-owner state with no internal locking.
type Session struct {
	schema    model.FormSchema
	values    map[string]any
	errors    map[string][]string
	validator *validation.Evaluator
	engine    *derive.Engine
	issues    []derive.Issue
}

// Option configures a Session.
type Option func(*Session)

// WithValidator replaces the default validation evaluator, typically to
// install a custom-rule matcher.
func WithValidator(validator *validation.Evaluator) Option {
	return func(s *Session) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithEngine replaces the default derivation engine.
func WithEngine(engine *derive.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// NewSession seeds a live session from the schema. Every field starts at its
// declared default; checkboxes with no default start false and all other
// types start empty. Derived fields compute immediately when their parents'
// defaults make them ready.
func NewSession(schema model.FormSchema, options ...Option) *Session {
	session := &Session{
		schema:    model.CloneSchema(schema),
		values:    make(map[string]any, len(schema.Fields)),
		errors:    make(map[string][]string),
		validator: validation.New(),
		engine:    derive.New(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(session)
		}
	}

	for _, field := range session.schema.Fields {
		if field.DefaultValue != nil {
			session.values[field.ID] = field.DefaultValue
			continue
		}
		if field.Type == model.FieldTypeCheckbox {
			session.values[field.ID] = false
		} else {
			session.values[field.ID] = ""
		}
	}

	session.recompute()
	return session
}

// Schema returns the schema the session runs.
func (s *Session) Schema() model.FormSchema {
	return model.CloneSchema(s.schema)
}

// SetValue records a field value, validates that field, and recomputes
// derived fields. Setting a derived field is allowed but the value is
// overwritten on the next recompute, which happens immediately when the
// field's parents are ready.
func (s *Session) SetValue(fieldID string, value any) {
	s.values[fieldID] = value

	if field, ok := s.schema.Field(fieldID); ok {
		violations := s.validator.Validate(field, value)
		if len(violations) > 0 {
			s.errors[fieldID] = violations
		} else {
			delete(s.errors, fieldID)
		}
	}

	s.recompute()
}

// Value returns the live value for a field.
func (s *Session) Value(fieldID string) (any, bool) {
	value, ok := s.values[fieldID]
	return value, ok
}

// Values returns a snapshot of the live value map.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for key, value := range s.values {
		out[key] = value
	}
	return out
}

// Errors returns the current per-field violation lists. Fields without
// violations are absent.
func (s *Session) Errors() map[string][]string {
	out := make(map[string][]string, len(s.errors))
	for key, value := range s.errors {
		out[key] = append([]string(nil), value...)
	}
	return out
}

// ErrorsFor returns the violations recorded for one field.
func (s *Session) ErrorsFor(fieldID string) []string {
	return append([]string(nil), s.errors[fieldID]...)
}

// DeriveIssues returns the formula failures from the latest recompute.
func (s *Session) DeriveIssues() []derive.Issue {
	return append([]derive.Issue(nil), s.issues...)
}

// Submit validates every field against its current value. On success it
// returns the final value map; otherwise it returns the full violation map
// and ok is false. Either way the session stays usable for further edits.
func (s *Session) Submit() (map[string]any, map[string][]string, bool) {
	all := s.validator.ValidateAll(s.schema, s.values)
	s.errors = make(map[string][]string, len(all))
	for key, value := range all {
		s.errors[key] = value
	}
	if len(all) > 0 {
		return nil, s.Errors(), false
	}
	return s.Values(), nil, true
}

// Reset returns every field to its initial default and clears errors.
func (s *Session) Reset() {
	fresh := NewSession(s.schema, WithValidator(s.validator), WithEngine(s.engine))
	s.values = fresh.values
	s.errors = fresh.errors
	s.issues = fresh.issues
}

func (s *Session) recompute() {
	s.values, s.issues = s.engine.Recompute(s.schema, s.values)
}
