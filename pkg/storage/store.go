// Package storage persists the saved-schema collection to a single named
// slot. Load failures degrade to an empty collection so a corrupt payload
// never takes the host down; save failures surface as errors the caller can
// report.
package storage

import (
	"errors"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// SlotKey is the fixed name of the persistence slot holding the saved-schema
// collection.
const SlotKey = "savedForms"

// ErrSaveFailed wraps write failures so callers can test for the condition
// without matching message text.
var ErrSaveFailed = errors.New("storage: save failed")

// Store is the persistence gateway contract. Load returns an empty collection
// when nothing has been stored or the stored payload cannot be parsed; Save
// writes the whole collection in one blocking call, so an exit hook can call
// it last with nothing left to flush.
type Store interface {
	Load() ([]model.FormSchema, error)
	Save(schemas []model.FormSchema) error
}
