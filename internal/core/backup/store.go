package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorruptIndex is returned by Load when the index file is not valid JSON.
var ErrCorruptIndex = errors.New("backup index is corrupt")

// Store handles JSON persistence of the ledger index.
type Store struct {
	filePath string
}

// NewStore creates a new store for the given file path.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// Path returns the index file path.
func (s *Store) Path() string {
	return s.filePath
}

// Save persists entries, replacing the index in a single rename.
func (s *Store) Save(entries []*Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if entries == nil {
		entries = []*Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	if err := writeFileAtomic(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// Load reads the index. A missing file is an empty ledger.
func (s *Store) Load() ([]*Entry, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}

	var entries []*Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return entries, nil
}
