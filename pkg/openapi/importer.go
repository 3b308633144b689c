// Package openapi imports form schemas from OpenAPI documents: the request
// body of an operation becomes a field list, with the document's validation
// constraints mapped onto field rules.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Importer converts OpenAPI operations into form schemas.
type Importer struct {
	resolveRefs bool
	now         func() time.Time
}

// Option configures an Importer.
type Option func(*Importer)

// WithExternalRefs allows the loader to resolve references outside the
// document. Off by default to keep imports hermetic.
func WithExternalRefs() Option {
	return func(i *Importer) {
		i.resolveRefs = true
	}
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// New constructs an Importer.
func New(options ...Option) *Importer {
	importer := &Importer{now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(importer)
		}
	}
	return importer
}

// ImportFile loads an OpenAPI document from disk and imports operationID.
func (i *Importer) ImportFile(ctx context.Context, path, operationID string) (model.FormSchema, error) {
	loader := i.loader(ctx)
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("openapi: load %s: %w", path, err)
	}
	return i.importOperation(doc, operationID)
}

// ImportData imports operationID from raw document bytes.
func (i *Importer) ImportData(ctx context.Context, data []byte, operationID string) (model.FormSchema, error) {
	if len(data) == 0 {
		return model.FormSchema{}, errors.New("openapi: document payload is empty")
	}
	loader := i.loader(ctx)
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("openapi: load document: %w", err)
	}
	return i.importOperation(doc, operationID)
}

func (i *Importer) loader(ctx context.Context) *openapi3.Loader {
	return &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: i.resolveRefs}
}

func (i *Importer) importOperation(doc *openapi3.T, operationID string) (model.FormSchema, error) {
	operation := findOperation(doc, operationID)
	if operation == nil {
		return model.FormSchema{}, fmt.Errorf("openapi: operation %q not found", operationID)
	}

	bodySchema := requestBodySchema(operation)
	if bodySchema == nil {
		return model.FormSchema{}, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}

	name := strings.TrimSpace(operation.Summary)
	if name == "" {
		name = operationID
	}

	now := i.now()
	schema := model.FormSchema{
		ID:        builder.NewSchemaID(),
		Name:      name,
		Fields:    buildFields(bodySchema),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return schema, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range []*openapi3.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Patch,
		} {
			if operation != nil && operation.OperationID == operationID {
				return operation
			}
		}
	}
	return nil
}

func requestBodySchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// buildFields flattens the request body's top-level properties into fields,
// ordered by name so imports are deterministic. Nested objects and arrays are
// skipped: the form vocabulary is flat.
func buildFields(src *openapi3.Schema) []model.FormField {
	if len(src.Properties) == 0 {
		return []model.FormField{}
	}

	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}

	names := make([]string, 0, len(src.Properties))
	for name := range src.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]model.FormField, 0, len(names))
	for _, name := range names {
		ref := src.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, ok := buildField(name, ref.Value, required[name])
		if ok {
			fields = append(fields, field)
		}
	}
	model.NormalizeOrder(fields)
	return fields
}

func buildField(name string, src *openapi3.Schema, required bool) (model.FormField, bool) {
	fieldType, ok := mapType(src)
	if !ok {
		return model.FormField{}, false
	}

	field := model.FormField{
		ID:          name,
		Type:        fieldType,
		Label:       labelFor(name, src),
		Required:    required,
		Placeholder: strings.TrimSpace(src.Description),
	}
	if src.Default != nil {
		field.DefaultValue = src.Default
	}

	if len(src.Enum) > 0 && fieldType == model.FieldTypeSelect {
		for _, option := range src.Enum {
			value := fmt.Sprint(option)
			field.Options = append(field.Options, model.SelectOption{Label: value, Value: value})
		}
	}

	field.Rules = buildRules(field, src)
	return field, true
}

func mapType(src *openapi3.Schema) (model.FieldType, bool) {
	switch schemaType(src) {
	case "string":
		if len(src.Enum) > 0 {
			return model.FieldTypeSelect, true
		}
		switch src.Format {
		case "date", "date-time":
			return model.FieldTypeDate, true
		}
		return model.FieldTypeText, true
	case "integer", "number":
		return model.FieldTypeNumber, true
	case "boolean":
		return model.FieldTypeCheckbox, true
	default:
		// Objects and arrays do not map onto the flat field vocabulary.
		return "", false
	}
}

func schemaType(src *openapi3.Schema) string {
	if src.Type == nil {
		return ""
	}
	values := src.Type.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func labelFor(name string, src *openapi3.Schema) string {
	if title := strings.TrimSpace(src.Title); title != "" {
		return title
	}
	// snake_case and camelCase both read fine enough as labels once the
	// first rune is capitalised.
	cleaned := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	if cleaned == "" {
		return name
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

func buildRules(field model.FormField, src *openapi3.Schema) []model.ValidationRule {
	var rules []model.ValidationRule

	if field.Required {
		rules = append(rules, model.ValidationRule{
			Kind:    model.RuleKindRequired,
			Message: field.Label + " is required",
		})
	}
	if src.MinLength > 0 {
		threshold := int(src.MinLength)
		rules = append(rules, model.ValidationRule{
			Kind:      model.RuleKindMinLength,
			Threshold: &threshold,
			Message:   fmt.Sprintf("%s must be at least %d characters", field.Label, threshold),
		})
	}
	if src.MaxLength != nil {
		threshold := int(*src.MaxLength)
		rules = append(rules, model.ValidationRule{
			Kind:      model.RuleKindMaxLength,
			Threshold: &threshold,
			Message:   fmt.Sprintf("%s must be at most %d characters", field.Label, threshold),
		})
	}
	if src.Format == "email" {
		rules = append(rules, model.ValidationRule{
			Kind:    model.RuleKindEmail,
			Message: field.Label + " must be a valid email address",
		})
	}
	if src.Format == "password" {
		rules = append(rules, model.ValidationRule{
			Kind:    model.RuleKindPassword,
			Message: field.Label + " must be at least 8 characters and contain a number",
		})
	}
	return rules
}
