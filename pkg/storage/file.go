package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Encoding selects the serialization format of the slot file.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// FileStore persists the collection to <dir>/savedForms.<ext>, guarded by a
// sibling lock file so concurrent processes cannot interleave writes. Writes
// go to a temp file first and rename into place, which is atomic on the
// filesystems that matter here.
type FileStore struct {
	path     string
	encoding Encoding
	lock     *flock.Flock
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithEncoding selects JSON (default) or YAML for the slot file.
func WithEncoding(encoding Encoding) FileOption {
	return func(s *FileStore) {
		if encoding == EncodingJSON || encoding == EncodingYAML {
			s.encoding = encoding
		}
	}
}

// NewFileStore creates a store rooted at dir, creating the directory when
// missing.
func NewFileStore(dir string, options ...FileOption) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("storage: directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create directory: %w", err)
	}

	store := &FileStore{encoding: EncodingJSON}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}

	store.path = filepath.Join(dir, SlotKey+"."+string(store.encoding))
	store.lock = flock.New(store.path + ".lock")
	return store, nil
}

// Path returns the slot file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the slot file. A missing file yields an empty collection; a
// payload that fails to parse is logged and likewise degrades to empty rather
// than failing the host.
func (s *FileStore) Load() ([]model.FormSchema, error) {
	if err := s.lock.Lock(); err != nil {
		return nil, fmt.Errorf("storage: acquire lock: %w", err)
	}
	defer s.lock.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.FormSchema{}, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []model.FormSchema{}, nil
	}

	schemas, err := decode(data)
	if err != nil {
		log.Printf("storage: discarding unreadable payload at %s: %v", s.path, err)
		return []model.FormSchema{}, nil
	}
	return schemas, nil
}

// Save writes the whole collection, replacing the previous slot contents.
func (s *FileStore) Save(schemas []model.FormSchema) error {
	if schemas == nil {
		schemas = []model.FormSchema{}
	}

	data, err := s.encode(schemas)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrSaveFailed, err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("%w: acquire lock: %v", ErrSaveFailed, err)
	}
	defer s.lock.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: write temp file: %v", ErrSaveFailed, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename into place: %v", ErrSaveFailed, err)
	}
	return nil
}

func (s *FileStore) encode(schemas []model.FormSchema) ([]byte, error) {
	if s.encoding == EncodingYAML {
		return yaml.Marshal(schemas)
	}
	return json.MarshalIndent(schemas, "", "  ")
}

// decode accepts JSON first and falls back to YAML, so a store pointed at a
// hand-edited file keeps working regardless of which format wrote it.
func decode(data []byte) ([]model.FormSchema, error) {
	var schemas []model.FormSchema
	if err := json.Unmarshal(data, &schemas); err == nil {
		return schemas, nil
	}
	if err := yaml.Unmarshal(data, &schemas); err == nil {
		return schemas, nil
	}
	return nil, fmt.Errorf("payload is neither valid JSON nor YAML")
}
