package model

import "time"

// FieldType enumerates the form-friendly field kinds a schema can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
)

// RuleKind identifies a validation rule. Use the RuleKind* constants; unknown
// kinds are ignored by the evaluator rather than rejected.
type RuleKind string

const (
	RuleKindRequired  RuleKind = "required"
	RuleKindMinLength RuleKind = "minLength"
	RuleKindMaxLength RuleKind = "maxLength"
	RuleKindEmail     RuleKind = "email"
	RuleKindPassword  RuleKind = "password"
	RuleKindCustom    RuleKind = "custom"
)

// ValidationRule represents a single validation constraint applied to a field.
// Length rules carry their limit in Threshold; every rule carries the message
// surfaced when it is violated. Rules evaluate in declaration order and the
// engine tolerates duplicate kinds.
type ValidationRule struct {
	Kind      RuleKind `json:"kind"`
	Threshold *int     `json:"threshold,omitempty"`
	Message   string   `json:"message"`
}

// SelectOption is one choice offered by select and radio fields.
type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormField models an individual input inside a form schema. Struct fields are
// annotated so stores and renderers can serialise them directly.
//
// Derived fields compute their value from ParentFieldIDs through Formula and
// are never edited directly by end users. A well-formed derived field has a
// non-empty parent list and a non-empty formula; the derivation engine treats
// dangling parent references as "not ready" rather than failing.
type FormField struct {
	ID             string           `json:"id"`
	Type           FieldType        `json:"type"`
	Label          string           `json:"label"`
	Required       bool             `json:"required"`
	DefaultValue   any              `json:"defaultValue,omitempty"`
	Rules          []ValidationRule `json:"rules,omitempty"`
	IsDerived      bool             `json:"isDerived"`
	ParentFieldIDs []string         `json:"parentFieldIds,omitempty"`
	Formula        string           `json:"formula,omitempty"`
	Options        []SelectOption   `json:"options,omitempty"`
	Placeholder    string           `json:"placeholder,omitempty"`
	Order          int              `json:"order"`
}

// HasOptions reports whether the field type renders a fixed choice list.
func (f FormField) HasOptions() bool {
	return f.Type == FieldTypeSelect || f.Type == FieldTypeRadio
}

// FormSchema is the ordered collection of fields plus metadata that defines one
// form. ID is assigned once at creation and stays stable across saves;
// UpdatedAt moves on every save. Timestamps marshal as RFC 3339 strings.
type FormSchema struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Fields    []FormField `json:"fields"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Field returns the field with the given id and whether it exists.
func (s FormSchema) Field(id string) (FormField, bool) {
	for _, field := range s.Fields {
		if field.ID == id {
			return field, true
		}
	}
	return FormField{}, false
}

// DerivedFields returns the derived fields in declaration order.
func (s FormSchema) DerivedFields() []FormField {
	var out []FormField
	for _, field := range s.Fields {
		if field.IsDerived {
			out = append(out, field)
		}
	}
	return out
}
