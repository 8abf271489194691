package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/rentfleet/internal/models"
)

func TestFileBackend_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet-state.json")
	backend := NewFileBackend(path, 0)

	state := &models.FleetState{
		Vehicles: []models.Vehicle{
			{ID: 1, Make: "Toyota", Model: "Camry", LicensePlate: "ABC-100", Status: models.StatusAvailable},
			{ID: 2, Make: "Honda", Model: "Civic", LicensePlate: "DEF-200", Status: models.StatusRented},
		},
		MaintenanceRecords:   []models.MaintenanceRecord{{ID: "m1", VehicleID: 1}},
		TrackedRegistrations: []models.TrackingRegistration{{VehicleID: 2, TrackingID: "TRK-2", IsActive: true}},
		NextID:               3,
		LastUpdate:           time.Now().UTC(),
	}
	require.NoError(t, backend.Save(context.Background(), state))

	loaded, err := backend.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded.Vehicles, 2)
	assert.Equal(t, "ABC-100", loaded.Vehicles[0].LicensePlate)
	assert.Len(t, loaded.MaintenanceRecords, 1)
	assert.Len(t, loaded.TrackedRegistrations, 1)
	assert.Equal(t, int64(3), loaded.NextID)
}

func TestFileBackend_LoadMissingFile(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "missing.json"), 0)
	_, err := backend.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileBackend_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet-state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileBackend(path, 0).Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileBackend_QuotaExceeded(t *testing.T) {
	backend := NewFileBackend(filepath.Join(t.TempDir(), "fleet-state.json"), 64)
	state := &models.FleetState{
		Vehicles: []models.Vehicle{{ID: 1, Image: "data:image/jpeg;base64,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"}},
		NextID:   2,
	}
	err := backend.Save(context.Background(), state)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestFileBackend_LoadOlderShape(t *testing.T) {
	// Snapshots written before maintenance and tracking existed only carry
	// vehicles; missing collections must come back empty, not nil.
	path := filepath.Join(t.TempDir(), "fleet-state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"vehicles":[{"id":7,"make":"Tesla","model":"Model 3"}]}`), 0o644))

	loaded, err := NewFileBackend(path, 0).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded.MaintenanceRecords)
	assert.Empty(t, loaded.MaintenanceRecords)
	assert.NotNil(t, loaded.TrackedRegistrations)
	assert.Empty(t, loaded.TrackedRegistrations)
	// NextID is derived past the highest stored id so ids are never reused.
	assert.Equal(t, int64(8), loaded.NextID)
}
