package storage

import (
	"context"
	"errors"

	"github.com/ukydev/rentfleet/internal/models"
)

var (
	// ErrNotFound is returned by Load when no snapshot has been saved yet.
	ErrNotFound = errors.New("no saved fleet state")
	// ErrQuotaExceeded is returned by Save when the encoded snapshot is
	// larger than the backend's capacity.
	ErrQuotaExceeded = errors.New("fleet state exceeds storage capacity")
)

// Backend persists the full fleet snapshot as a single durable record.
type Backend interface {
	Load(ctx context.Context) (*models.FleetState, error)
	Save(ctx context.Context, state *models.FleetState) error
}
