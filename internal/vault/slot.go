package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/siiapp/phasetrack/internal/model"
)

// FileSlot persists a single opaque blob at a fixed local path. Saving
// overwrites any previous value.
type FileSlot struct {
	path string
}

// NewFileSlot creates a new file slot.
func NewFileSlot(path string) (*FileSlot, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return &FileSlot{path: path}, nil
}

// Save stores the blob, overwriting any prior value.
func (s *FileSlot) Save(blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("could not create slot directory: %w", err)
	}
	if err := os.WriteFile(s.path, blob, 0600); err != nil {
		return fmt.Errorf("could not write slot: %w", err)
	}
	return nil
}

// Load returns the stored blob. An absent slot is model.ErrNotFound.
func (s *FileSlot) Load() ([]byte, error) {
	blob, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("credential slot: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("could not read slot: %w", err)
	}
	return blob, nil
}
