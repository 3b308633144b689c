package model

import (
	"errors"
	"fmt"
	"strings"
)

// NormalizeOrder renumbers every field's Order to its positional index. Any
// operation that changes the field sequence must call this to keep orders
// contiguous from zero.
func NormalizeOrder(fields []FormField) {
	for i := range fields {
		fields[i].Order = i
	}
}

// ValidateField checks the structural invariants of a single field definition.
// It covers authoring mistakes the editing surface should have prevented; the
// runtime engines stay tolerant of schemas that skip this check.
func ValidateField(field FormField) error {
	if strings.TrimSpace(field.ID) == "" {
		return errors.New("model: field id is required")
	}
	switch field.Type {
	case FieldTypeText, FieldTypeNumber, FieldTypeTextarea, FieldTypeSelect,
		FieldTypeRadio, FieldTypeCheckbox, FieldTypeDate:
	default:
		return fmt.Errorf("model: unknown field type %q", field.Type)
	}
	if field.IsDerived {
		if len(field.ParentFieldIDs) == 0 {
			return fmt.Errorf("model: derived field %q has no parent fields", field.ID)
		}
		if strings.TrimSpace(field.Formula) == "" {
			return fmt.Errorf("model: derived field %q has no formula", field.ID)
		}
	}
	if field.HasOptions() && len(field.Options) == 0 {
		return fmt.Errorf("model: %s field %q has no options", field.Type, field.ID)
	}
	return nil
}

// ValidateSchema applies ValidateField to every field and rejects duplicate
// ids. Parent references are not checked here: dangling parents degrade to
// "not ready" at derivation time instead of failing the schema.
func ValidateSchema(schema FormSchema) error {
	seen := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		if err := ValidateField(field); err != nil {
			return err
		}
		if _, dup := seen[field.ID]; dup {
			return fmt.Errorf("model: duplicate field id %q", field.ID)
		}
		seen[field.ID] = struct{}{}
	}
	return nil
}
