// Package validation evaluates a field's rules against a candidate value and
// reports the messages of every violated rule.
package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Matcher implements caller-defined logic for "custom" rules. It returns true
// when the value passes. Without a matcher, custom rules always pass.
type Matcher func(field model.FormField, rule model.ValidationRule, value any) bool

// Evaluator applies validation rules in declaration order. A failing rule does
// not short-circuit the rest, so callers always see the full violation list.
type Evaluator struct {
	custom Matcher
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithCustomMatcher installs the matcher consulted for custom rules.
func WithCustomMatcher(matcher Matcher) Option {
	return func(e *Evaluator) {
		e.custom = matcher
	}
}

// New constructs an Evaluator.
func New(options ...Option) *Evaluator {
	eval := &Evaluator{}
	for _, opt := range options {
		if opt != nil {
			opt(eval)
		}
	}
	return eval
}

// emailPattern accepts the usual local@domain.tld shape: no whitespace, an @,
// and at least one dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var digitPattern = regexp.MustCompile(`\d`)

// Validate evaluates every rule of the field against value and returns the
// messages of the violated ones, in rule order. An empty result means the
// value passes.
func (e *Evaluator) Validate(field model.FormField, value any) []string {
	var violations []string
	for _, rule := range field.Rules {
		if e.violates(field, rule, value) {
			violations = append(violations, rule.Message)
		}
	}
	return violations
}

func (e *Evaluator) violates(field model.FormField, rule model.ValidationRule, value any) bool {
	switch rule.Kind {
	case model.RuleKindRequired:
		// The rule fires off the field's own Required flag: a required rule
		// attached to a non-required field is inert. This mirrors how forms
		// authored against earlier releases behave.
		return field.Required && isEmpty(value)
	case model.RuleKindMinLength:
		if rule.Threshold == nil || isEmpty(value) {
			return false
		}
		return len(stringify(value)) < *rule.Threshold
	case model.RuleKindMaxLength:
		if rule.Threshold == nil || isEmpty(value) {
			return false
		}
		return len(stringify(value)) > *rule.Threshold
	case model.RuleKindEmail:
		if isEmpty(value) {
			return false
		}
		return !emailPattern.MatchString(stringify(value))
	case model.RuleKindPassword:
		if isEmpty(value) {
			return false
		}
		s := stringify(value)
		return len(s) < 8 || !digitPattern.MatchString(s)
	case model.RuleKindCustom:
		if e.custom == nil {
			return false
		}
		return !e.custom(field, rule, value)
	default:
		return false
	}
}

// ValidateAll validates every field of the schema against the supplied value
// map and returns per-field violation lists keyed by field id. Fields with no
// violations are absent from the result.
func (e *Evaluator) ValidateAll(schema model.FormSchema, values map[string]any) map[string][]string {
	out := make(map[string][]string)
	for _, field := range schema.Fields {
		if violations := e.Validate(field, values[field.ID]); len(violations) > 0 {
			out[field.ID] = violations
		}
	}
	return out
}

// isEmpty reports whether a value counts as absent for validation purposes.
// Only the required rule reacts to emptiness; the remaining rules skip empty
// values entirely.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		// Trim the trailing ".0" JSON numbers pick up through any-typed maps.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprint(value)
	}
}
