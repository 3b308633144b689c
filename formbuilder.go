// Package formbuilder exposes the library's main entry points from the module
// root: the schema-editing session, the live preview session, persistence, and
// the renderers. The heavy lifting lives under pkg/.
package formbuilder

import (
	"context"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/openapi"
	"github.com/goliatone/go-formbuilder/pkg/preview"
	"github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/storage"
)

// FormSchema is the saved unit: a named, ordered field list.
type FormSchema = model.FormSchema

// FormField is a single form control definition.
type FormField = model.FormField

// ValidationRule attaches a named constraint and its violation message to a
// field.
type ValidationRule = model.ValidationRule

// FieldUpdate carries the mutable subset of a field for partial updates.
type FieldUpdate = builder.FieldUpdate

// Store is the persistence contract for the saved-forms collection.
type Store = storage.Store

// NewSession constructs a schema-editing session.
func NewSession(options ...builder.Option) *builder.Session {
	return builder.NewSession(options...)
}

// NewPreview runs schema as a live form with validation and derived-field
// recomputation.
func NewPreview(schema model.FormSchema, options ...preview.Option) *preview.Session {
	return preview.NewSession(schema, options...)
}

// NewFileStore persists the saved-forms collection under dir.
func NewFileStore(dir string, options ...storage.FileOption) (*storage.FileStore, error) {
	return storage.NewFileStore(dir, options...)
}

// NewMemoryStore keeps the saved-forms collection in process memory.
func NewMemoryStore() *storage.MemoryStore {
	return storage.NewMemoryStore()
}

// ImportOpenAPI builds a schema from one operation's request body in an
// OpenAPI document on disk.
func ImportOpenAPI(ctx context.Context, path, operationID string) (model.FormSchema, error) {
	return openapi.New().ImportFile(ctx, path, operationID)
}

// RenderHTML renders schema as a standalone HTML page with the default
// template bundle.
func RenderHTML(ctx context.Context, schema model.FormSchema, options ...html.Option) ([]byte, error) {
	renderer, err := html.New(options...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, schema)
}
