package translation

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"codeberg.org/snonux/slotrans/internal"
)

// Store persists cache entries between runs.
type Store interface {
	// Load returns the persisted entries. A missing store yields an error
	// so callers can report it; the cache treats any error as empty.
	Load() (map[string]string, error)
	// Save replaces the persisted entries with entries.
	Save(entries map[string]string) error
	// Location describes where entries live, for logging.
	Location() string
}

// OpenStore picks a store for path: none for "", SQLite for .db and
// .sqlite files, JSON otherwise.
func OpenStore(fs afero.Fs, path string) (Store, error) {
	if path == "" {
		return NopStore{}, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLiteStore(path)
	default:
		return NewJSONStore(fs, path), nil
	}
}

// NopStore keeps nothing.
type NopStore struct{}

func (NopStore) Load() (map[string]string, error) { return map[string]string{}, nil }
func (NopStore) Save(map[string]string) error      { return nil }
func (NopStore) Location() string                  { return "" }

// JSONStore keeps entries as a JSON object of phrase to translation.
type JSONStore struct {
	fs   afero.Fs
	path string
}

// NewJSONStore creates a JSON store at path.
func NewJSONStore(fs afero.Fs, path string) *JSONStore {
	return &JSONStore{fs: fs, path: path}
}

// Location implements Store.
func (s *JSONStore) Location() string { return s.path }

// Load implements Store.
func (s *JSONStore) Load() (map[string]string, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, err
	}
	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return entries, nil
}

// Save implements Store. The file is replaced atomically.
func (s *JSONStore) Save(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}
	return internal.WriteFileAtomic(s.fs, s.path, data)
}
