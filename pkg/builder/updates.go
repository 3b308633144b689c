package builder

import (
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// FieldUpdate carries a partial field edit. Nil members leave the existing
// value alone; non-nil members replace it wholesale, so updating Rules swaps
// the whole rule list rather than merging entries.
type FieldUpdate struct {
	Type           *model.FieldType
	Label          *string
	Required       *bool
	DefaultValue   *any
	Rules          *[]model.ValidationRule
	IsDerived      *bool
	ParentFieldIDs *[]string
	Formula        *string
	Options        *[]model.SelectOption
	Placeholder    *string
}

func (u FieldUpdate) apply(field *model.FormField) {
	if u.Type != nil {
		field.Type = *u.Type
	}
	if u.Label != nil {
		field.Label = *u.Label
	}
	if u.Required != nil {
		field.Required = *u.Required
	}
	if u.DefaultValue != nil {
		field.DefaultValue = *u.DefaultValue
	}
	if u.Rules != nil {
		field.Rules = append([]model.ValidationRule(nil), (*u.Rules)...)
	}
	if u.IsDerived != nil {
		field.IsDerived = *u.IsDerived
	}
	if u.ParentFieldIDs != nil {
		field.ParentFieldIDs = append([]string(nil), (*u.ParentFieldIDs)...)
	}
	if u.Formula != nil {
		field.Formula = *u.Formula
	}
	if u.Options != nil {
		field.Options = append([]model.SelectOption(nil), (*u.Options)...)
	}
	if u.Placeholder != nil {
		field.Placeholder = *u.Placeholder
	}
}

// NewFieldID returns a fresh field id. Ids double as variable names inside
// derivation formulas, so the uuid is stripped to identifier-safe characters
// and prefixed.
func NewFieldID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "fld_" + raw[:12]
}

// NewSchemaID returns a fresh schema id.
func NewSchemaID() string {
	return uuid.NewString()
}
