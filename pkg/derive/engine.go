// Package derive recomputes derived-field values from their parent fields.
//
// For each derived field the engine gathers the parent values in declared
// order. If any parent value is absent, nil, or an empty string, the field is
// "not ready": its value is left untouched and the formula is not evaluated.
// Ready fields evaluate their formula with every parent bound by id. Because a
// derived field can itself feed another derived field, recomputation repeats
// until values stop changing or a pass cap is reached; the cap keeps cyclic
// dependency graphs from looping forever without requiring cycle detection.
package derive

import (
	"fmt"
	"reflect"

	"github.com/goliatone/go-formbuilder/pkg/derive/expr"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Issue describes one failed formula evaluation. Failures are per-field: the
// field keeps its previous value and sibling fields still recompute.
type Issue struct {
	FieldID string
	Err     error
}

func (i Issue) Error() string {
	return fmt.Sprintf("derive: field %q: %v", i.FieldID, i.Err)
}

// Engine evaluates derived fields against a live value map.
type Engine struct {
	evaluator *expr.Evaluator
	maxPasses int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPasses caps propagation passes. Values below one are ignored.
func WithMaxPasses(passes int) Option {
	return func(e *Engine) {
		if passes >= 1 {
			e.maxPasses = passes
		}
	}
}

// New constructs an Engine. Without options the pass cap adapts to the number
// of derived fields in the schema being recomputed.
func New(options ...Option) *Engine {
	engine := &Engine{evaluator: expr.New()}
	for _, opt := range options {
		if opt != nil {
			opt(engine)
		}
	}
	return engine
}

// Recompute evaluates every derived field of the schema against values and
// returns the updated map plus any per-field evaluation issues. The input map
// is not mutated. Derived outputs overwrite whatever value the map held for
// that field, including externally-set ones.
func (e *Engine) Recompute(schema model.FormSchema, values map[string]any) (map[string]any, []Issue) {
	out := make(map[string]any, len(values))
	for key, value := range values {
		out[key] = value
	}

	derived := schema.DerivedFields()
	if len(derived) == 0 {
		return out, nil
	}

	passes := e.maxPasses
	if passes == 0 {
		// One pass per derived field resolves any acyclic chain; the extra
		// pass confirms the fixed point. Cyclic graphs hit the cap and the
		// fields involved simply stay unready.
		passes = len(derived) + 1
		if passes < 4 {
			passes = 4
		}
	}

	var issues []Issue
	failed := make(map[string]struct{})

	for pass := 0; pass < passes; pass++ {
		changed := false
		for _, field := range derived {
			if _, skip := failed[field.ID]; skip {
				continue
			}

			vars, ready := gatherParents(field, out)
			if !ready {
				continue
			}

			result, err := e.evaluator.Eval(field.Formula, vars)
			if err != nil {
				issues = append(issues, Issue{FieldID: field.ID, Err: err})
				failed[field.ID] = struct{}{}
				continue
			}
			if prev, ok := out[field.ID]; !ok || !reflect.DeepEqual(prev, result) {
				out[field.ID] = result
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	return out, issues
}

// gatherParents collects the parent values in declared order. Missing, nil,
// and empty-string parents make the field not ready; dangling references to
// fields that no longer exist land here too.
func gatherParents(field model.FormField, values map[string]any) (map[string]any, bool) {
	vars := make(map[string]any, len(field.ParentFieldIDs))
	for _, parentID := range field.ParentFieldIDs {
		value, ok := values[parentID]
		if !ok || value == nil {
			return nil, false
		}
		if s, isString := value.(string); isString && s == "" {
			return nil, false
		}
		vars[parentID] = value
	}
	return vars, true
}
