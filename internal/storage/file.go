package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ukydev/rentfleet/internal/models"
)

// FileBackend stores the fleet snapshot as one JSON document on local disk.
// Writes go through a temp file and rename so a crash never leaves a
// half-written snapshot behind.
type FileBackend struct {
	path     string
	maxBytes int64 // 0 means unbounded
}

// NewFileBackend creates a file backend writing to path. maxBytes caps the
// encoded snapshot size; saves over the cap return ErrQuotaExceeded.
func NewFileBackend(path string, maxBytes int64) *FileBackend {
	return &FileBackend{path: path, maxBytes: maxBytes}
}

// Load reads the last saved snapshot. A missing file returns ErrNotFound so
// the caller can substitute an empty fleet.
func (b *FileBackend) Load(ctx context.Context) (*models.FleetState, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read fleet state: %w", err)
	}
	var state models.FleetState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode fleet state: %w", err)
	}
	state.Normalize()
	return &state, nil
}

// Save writes the snapshot atomically.
func (b *FileBackend) Save(ctx context.Context, state *models.FleetState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode fleet state: %w", err)
	}
	if b.maxBytes > 0 && int64(len(data)) > b.maxBytes {
		return ErrQuotaExceeded
	}
	if dir := filepath.Dir(b.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write fleet state: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		return fmt.Errorf("replace fleet state: %w", err)
	}
	return nil
}
