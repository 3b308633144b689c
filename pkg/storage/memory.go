package storage

import (
	"github.com/goliatone/go-formbuilder/pkg/model"
)

// MemoryStore keeps the collection in process memory. It backs tests and
// hosts that bring their own durability.
type MemoryStore struct {
	schemas []model.FormSchema
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored collection.
func (s *MemoryStore) Load() ([]model.FormSchema, error) {
	if s.schemas == nil {
		return []model.FormSchema{}, nil
	}
	return model.CloneSchemas(s.schemas), nil
}

// Save replaces the stored collection with a copy of schemas.
func (s *MemoryStore) Save(schemas []model.FormSchema) error {
	s.schemas = model.CloneSchemas(schemas)
	return nil
}
