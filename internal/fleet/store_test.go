package fleet

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/rentfleet/internal/models"
	"github.com/ukydev/rentfleet/internal/storage"
)

func newTestStore() *Store {
	return NewStore(nil)
}

func camry() models.Vehicle {
	return models.Vehicle{
		Make:         "Toyota",
		Model:        "Camry",
		Year:         2023,
		LicensePlate: "ABC-100",
		VIN:          "1HGBH41JXMN109186",
		Category:     "economy",
		Status:       models.StatusAvailable,
		Location:     "Downtown",
		DailyRate:    50,
		WeeklyRate:   300,
		FuelLevel:    80,
	}
}

func TestAddVehicle_AssignsSequentialIDs(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	first, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	second, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
}

func TestAddVehicle_IDsNeverReused(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	require.NoError(t, s.DeleteVehicle(ctx, v.ID))

	replacement, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	assert.Greater(t, replacement.ID, v.ID)
}

func TestAddVehicles_PlateAndVINSequence(t *testing.T) {
	s := newTestStore()
	base := camry()
	base.LicensePlate = "ABC-100"
	base.VIN = "1HGBH41JXMN10918" // 16 chars, not a full VIN

	added, err := s.AddVehicles(context.Background(), base, 3)
	require.NoError(t, err)
	require.Len(t, added, 3)

	assert.Equal(t, "ABC-100", added[0].LicensePlate)
	assert.Equal(t, "ABC-101", added[1].LicensePlate)
	assert.Equal(t, "ABC-102", added[2].LicensePlate)

	assert.Equal(t, "1HGBH41JXMN10918001", added[0].VIN)
	assert.Equal(t, "1HGBH41JXMN10918002", added[1].VIN)
	assert.Equal(t, "1HGBH41JXMN10918003", added[2].VIN)

	for i, v := range added {
		assert.Equal(t, int64(i+1), v.ID)
		assert.Equal(t, 50.0, v.DailyRate)
	}
}

func TestAddVehicles_RejectsNonPositiveCount(t *testing.T) {
	s := newTestStore()
	_, err := s.AddVehicles(context.Background(), camry(), 0)
	assert.Error(t, err)
}

func TestUpdateVehicle_EmptyPatchBumpsOnlyUpdatedAt(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	updated, err := s.UpdateVehicle(ctx, v.ID, models.VehiclePatch{})
	require.NoError(t, err)

	assert.True(t, updated.UpdatedAt.After(v.UpdatedAt))
	updated.UpdatedAt = v.UpdatedAt
	assert.Equal(t, v, updated)
}

func TestUpdateVehicle_StrictlyIncreasingUpdatedAt(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	prev := v.UpdatedAt
	for i := 0; i < 50; i++ {
		updated, err := s.UpdateVehicle(ctx, v.ID, models.VehiclePatch{})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev))
		prev = updated.UpdatedAt
	}
}

func TestUpdateVehicle_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateVehicle(context.Background(), 42, models.VehiclePatch{})
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestUpdateVehicleGroupImages(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	_, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	_, err = s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	civic := camry()
	civic.Make, civic.Model = "Honda", "Civic"
	civic.Image = "/images/civic.jpg"
	other, err := s.AddVehicle(ctx, civic)
	require.NoError(t, err)

	n, err := s.UpdateVehicleGroupImages(ctx, "Toyota", "Camry", "data:image/jpeg;base64,Zm9v")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, v := range s.GetVehiclesByGroup("Toyota", "Camry") {
		assert.Equal(t, "data:image/jpeg;base64,Zm9v", v.Image)
	}
	untouched, err := s.GetVehicleByID(other.ID)
	require.NoError(t, err)
	assert.Equal(t, "/images/civic.jpg", untouched.Image)
}

func TestUpdateVehicleGroupImages_NoMatch(t *testing.T) {
	s := newTestStore()
	_, err := s.UpdateVehicleGroupImages(context.Background(), "Ford", "F-150", "x")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestDeleteVehicleGroup(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	_, err := s.AddVehicles(ctx, camry(), 3)
	require.NoError(t, err)
	civic := camry()
	civic.Make, civic.Model = "Honda", "Civic"
	_, err = s.AddVehicle(ctx, civic)
	require.NoError(t, err)

	removed, err := s.DeleteVehicleGroup(ctx, "Toyota", "Camry")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Len(t, s.Vehicles(), 1)
}

func TestTracking_ReplaceOnReAdd(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	first, err := s.AddToTracking(ctx, v.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.TrackingID)
	assert.True(t, first.IsActive)

	second, err := s.AddToTracking(ctx, v.ID, "GPS-007")
	require.NoError(t, err)
	assert.Equal(t, "GPS-007", second.TrackingID)

	regs := s.Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, "GPS-007", regs[0].TrackingID)
}

func TestTracking_UpdateAndRemove(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	_, err = s.AddToTracking(ctx, v.ID, "GPS-001")
	require.NoError(t, err)
	require.NoError(t, s.UpdateTrackingID(ctx, v.ID, "GPS-002"))

	reg, err := s.GetRegistration(v.ID)
	require.NoError(t, err)
	assert.Equal(t, "GPS-002", reg.TrackingID)

	require.NoError(t, s.RemoveFromTracking(ctx, v.ID))
	assert.ErrorIs(t, s.RemoveFromTracking(ctx, v.ID), ErrRecordNotFound)
}

func TestTracking_VehicleMustExist(t *testing.T) {
	s := newTestStore()
	_, err := s.AddToTracking(context.Background(), 99, "GPS-001")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestRegistrations_FilterOrphans(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	_, err = s.AddToTracking(ctx, v.ID, "GPS-001")
	require.NoError(t, err)

	// Deletion does not cascade; the orphaned registration is filtered on read.
	require.NoError(t, s.DeleteVehicle(ctx, v.ID))
	assert.Empty(t, s.Registrations())
}

func TestMaintenance_Lifecycle(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)

	rec, err := s.ScheduleMaintenance(ctx, models.MaintenanceRecord{
		VehicleID:          v.ID,
		ServiceType:        "oil_change",
		AssignedTechnician: "J. Moreno",
		EstimatedCost:      120,
		Priority:           "medium",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "scheduled", rec.Status)

	require.NoError(t, s.UpdateMaintenanceStatus(ctx, rec.ID, "in_progress"))
	records := s.GetVehicleMaintenance(v.ID)
	require.Len(t, records, 1)
	assert.Equal(t, "in_progress", records[0].Status)

	require.NoError(t, s.DeleteMaintenance(ctx, rec.ID))
	assert.Empty(t, s.GetVehicleMaintenance(v.ID))
	assert.ErrorIs(t, s.DeleteMaintenance(ctx, rec.ID), ErrRecordNotFound)
}

func TestMaintenance_OrphanedAfterVehicleDelete(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	_, err = s.ScheduleMaintenance(ctx, models.MaintenanceRecord{VehicleID: v.ID, ServiceType: "inspection"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteVehicle(ctx, v.ID))
	// The raw record survives, but the vehicle-scoped view hides it.
	assert.Len(t, s.MaintenanceRecords(), 1)
	assert.Empty(t, s.GetVehicleMaintenance(v.ID))
}

func TestSearchVehicles(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	_, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	civic := camry()
	civic.Make, civic.Model, civic.LicensePlate = "Honda", "Civic", "XYZ-900"
	_, err = s.AddVehicle(ctx, civic)
	require.NoError(t, err)

	assert.Len(t, s.SearchVehicles("toyota"), 1)
	assert.Len(t, s.SearchVehicles("XYZ"), 1)
	assert.Len(t, s.SearchVehicles(""), 2)
	assert.Empty(t, s.SearchVehicles("nonexistent"))
}

func TestGetFleetStats(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	rented := camry()
	rented.Status = models.StatusRented
	rented.DailyRate = 70
	_, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	_, err = s.AddVehicle(ctx, rented)
	require.NoError(t, err)

	stats := s.GetFleetStats()
	assert.Equal(t, 2, stats.TotalVehicles)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 1, stats.Rented)
	assert.InDelta(t, 60.0, stats.AverageDailyRate, 0.001)
}

func TestSubscribe_NotifiedOnMutation(t *testing.T) {
	s := newTestStore()
	var got []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	_, err := s.AddVehicle(context.Background(), camry())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Vehicles, 1)
	assert.Equal(t, uint64(1), got[0].Version)

	unsubscribe()
	_, err = s.AddVehicle(context.Background(), camry())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestPersistence_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet-state.json")
	backend := storage.NewFileBackend(path, 0)
	ctx := context.Background()

	s := NewStore(backend)
	v, err := s.AddVehicle(ctx, camry())
	require.NoError(t, err)
	_, err = s.AddToTracking(ctx, v.ID, "GPS-001")
	require.NoError(t, err)

	reloaded := NewStore(backend)
	reloaded.Load(ctx)
	require.Len(t, reloaded.Vehicles(), 1)
	assert.Equal(t, v.LicensePlate, reloaded.Vehicles()[0].LicensePlate)
	regs := reloaded.Registrations()
	require.Len(t, regs, 1)
	assert.Equal(t, "GPS-001", regs[0].TrackingID)

	// A fresh add after reload continues the id sequence.
	next, err := reloaded.AddVehicle(ctx, camry())
	require.NoError(t, err)
	assert.Greater(t, next.ID, v.ID)
}

func TestPersistence_QuotaFallbackStripsImages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet-state.json")
	// Capacity fits the fleet only without its images.
	backend := storage.NewFileBackend(path, 2048)
	ctx := context.Background()

	s := NewStore(backend)
	big := camry()
	big.Image = "data:image/jpeg;base64,/9j/" + strings.Repeat("QUJD", 1024)
	_, err := s.AddVehicle(ctx, big)
	require.NoError(t, err)

	reloaded := NewStore(backend)
	reloaded.Load(ctx)
	vehicles := reloaded.Vehicles()
	require.Len(t, vehicles, 1)
	assert.Empty(t, vehicles[0].Image)
	assert.Equal(t, "ABC-100", vehicles[0].LicensePlate)
	assert.Equal(t, 50.0, vehicles[0].DailyRate)
}
