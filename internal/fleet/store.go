package fleet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/rentfleet/internal/models"
	"github.com/ukydev/rentfleet/internal/storage"
)

// Store is the single source of truth for vehicles, maintenance records and
// tracking registrations. Every mutation persists the full snapshot and then
// notifies subscribers. The in-memory state stays authoritative for the
// session even when persistence fails.
type Store struct {
	mu           sync.RWMutex
	state        models.FleetState
	backend      storage.Backend
	version      uint64
	listeners    map[int]func(Snapshot)
	nextListener int
	log          *log.Entry
}

// Snapshot is a versioned copy of the store state handed to readers and
// change listeners.
type Snapshot struct {
	Version              uint64
	Vehicles             []models.Vehicle
	MaintenanceRecords   []models.MaintenanceRecord
	TrackedRegistrations []models.TrackingRegistration
	LastUpdate           time.Time
}

// NewStore creates an empty store persisting through backend. A nil backend
// keeps the store purely in-memory.
func NewStore(backend storage.Backend) *Store {
	return &Store{
		state:     models.FleetState{NextID: 1},
		backend:   backend,
		listeners: map[int]func(Snapshot){},
		log:       log.WithField("component", "fleet-store"),
	}
}

// Load restores the last saved snapshot. A missing or unreadable snapshot
// falls back to the current (empty) fleet instead of failing startup.
func (s *Store) Load(ctx context.Context) {
	if s.backend == nil {
		return
	}
	state, err := s.backend.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("No saved fleet state, starting empty")
		} else {
			s.log.WithError(err).Warn("Failed to load fleet state, starting empty")
		}
		return
	}
	s.mu.Lock()
	s.state = *state
	s.mu.Unlock()
	s.log.WithField("vehicles", len(state.Vehicles)).Info("Restored fleet state")
}

// Subscribe registers fn to run after every committed mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// AddVehicle assigns a fresh id and timestamps and appends the vehicle.
// Duplicate plate/VIN detection is the calling layer's responsibility.
func (s *Store) AddVehicle(ctx context.Context, v models.Vehicle) (models.Vehicle, error) {
	s.mu.Lock()
	added := s.appendVehicleLocked(v)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return added, nil
}

// AddVehicles appends count vehicles derived from base, with license plates
// and VINs generated as deterministic sequences from base's values.
func (s *Store) AddVehicles(ctx context.Context, base models.Vehicle, count int) ([]models.Vehicle, error) {
	if count < 1 {
		return nil, fmt.Errorf("batch size must be positive, got %d", count)
	}
	plates := PlateSequence(base.LicensePlate, count)
	vins := VINSequence(base.VIN, count)

	s.mu.Lock()
	added := make([]models.Vehicle, 0, count)
	for i := 0; i < count; i++ {
		v := base
		v.LicensePlate = plates[i]
		v.VIN = vins[i]
		added = append(added, s.appendVehicleLocked(v))
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return added, nil
}

// appendVehicleLocked assigns identity and timestamps. Caller holds s.mu.
func (s *Store) appendVehicleLocked(v models.Vehicle) models.Vehicle {
	now := time.Now()
	v.ID = s.state.NextID
	s.state.NextID++
	v.CreatedAt = now
	v.UpdatedAt = now
	if v.Status == "" {
		v.Status = models.StatusAvailable
	}
	s.state.Vehicles = append(s.state.Vehicles, v)
	return v
}

// UpdateVehicle merges patch into the matching vehicle and bumps UpdatedAt.
func (s *Store) UpdateVehicle(ctx context.Context, id int64, patch models.VehiclePatch) (models.Vehicle, error) {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Vehicle{}, ErrVehicleNotFound
	}
	v := &s.state.Vehicles[idx]
	patch.Apply(v)
	touch(v)
	updated := *v
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return updated, nil
}

// UpdateVehicleStatus sets the status of one vehicle.
func (s *Store) UpdateVehicleStatus(ctx context.Context, id int64, status string) (models.Vehicle, error) {
	return s.UpdateVehicle(ctx, id, models.VehiclePatch{Status: &status})
}

// UpdateVehicleImage sets the image field on one vehicle. The value must
// already satisfy the image size bound (the ingestion pipeline enforces it).
func (s *Store) UpdateVehicleImage(ctx context.Context, id int64, image string) (models.Vehicle, error) {
	return s.UpdateVehicle(ctx, id, models.VehiclePatch{Image: &image})
}

// UpdateVehicleGroupImages sets the image on every vehicle matching make and
// model. The matching set is snapshotted up front and applied in one critical
// section, so the update is all-or-none. Returns how many vehicles changed.
func (s *Store) UpdateVehicleGroupImages(ctx context.Context, vMake, vModel, image string) (int, error) {
	s.mu.Lock()
	var matched []int
	for i, v := range s.state.Vehicles {
		if v.Make == vMake && v.Model == vModel {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		s.mu.Unlock()
		return 0, ErrVehicleNotFound
	}
	for _, i := range matched {
		v := &s.state.Vehicles[i]
		v.Image = image
		touch(v)
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return len(matched), nil
}

// DeleteVehicle removes the matching vehicle. Maintenance records and
// tracking registrations are not cascaded; readers filter orphans.
func (s *Store) DeleteVehicle(ctx context.Context, id int64) error {
	s.mu.Lock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrVehicleNotFound
	}
	s.state.Vehicles = append(s.state.Vehicles[:idx], s.state.Vehicles[idx+1:]...)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// DeleteVehicleGroup removes every vehicle matching make and model and
// returns how many were removed.
func (s *Store) DeleteVehicleGroup(ctx context.Context, vMake, vModel string) (int, error) {
	s.mu.Lock()
	kept := s.state.Vehicles[:0]
	removed := 0
	for _, v := range s.state.Vehicles {
		if v.Make == vMake && v.Model == vModel {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	if removed == 0 {
		s.mu.Unlock()
		return 0, ErrVehicleNotFound
	}
	s.state.Vehicles = kept
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return removed, nil
}

// AddToTracking enrolls a vehicle in the tracking feed, replacing any
// existing registration for the same vehicle. An empty trackingID gets a
// default derived from the vehicle id and the current time.
func (s *Store) AddToTracking(ctx context.Context, vehicleID int64, trackingID string) (models.TrackingRegistration, error) {
	s.mu.Lock()
	if s.indexOfLocked(vehicleID) < 0 {
		s.mu.Unlock()
		return models.TrackingRegistration{}, ErrVehicleNotFound
	}
	if trackingID == "" {
		trackingID = fmt.Sprintf("TRK-%d-%d", vehicleID, time.Now().Unix())
	}
	reg := models.TrackingRegistration{
		VehicleID:  vehicleID,
		TrackingID: trackingID,
		AddedAt:    time.Now(),
		IsActive:   true,
	}
	s.removeRegistrationLocked(vehicleID)
	s.state.TrackedRegistrations = append(s.state.TrackedRegistrations, reg)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return reg, nil
}

// RemoveFromTracking drops a vehicle's registration.
func (s *Store) RemoveFromTracking(ctx context.Context, vehicleID int64) error {
	s.mu.Lock()
	if !s.removeRegistrationLocked(vehicleID) {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// UpdateTrackingID renames a vehicle's tracking id.
func (s *Store) UpdateTrackingID(ctx context.Context, vehicleID int64, trackingID string) error {
	s.mu.Lock()
	found := false
	for i := range s.state.TrackedRegistrations {
		if s.state.TrackedRegistrations[i].VehicleID == vehicleID {
			s.state.TrackedRegistrations[i].TrackingID = trackingID
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

func (s *Store) removeRegistrationLocked(vehicleID int64) bool {
	for i, reg := range s.state.TrackedRegistrations {
		if reg.VehicleID == vehicleID {
			s.state.TrackedRegistrations = append(s.state.TrackedRegistrations[:i], s.state.TrackedRegistrations[i+1:]...)
			return true
		}
	}
	return false
}

// ScheduleMaintenance creates a maintenance record for a vehicle.
func (s *Store) ScheduleMaintenance(ctx context.Context, rec models.MaintenanceRecord) (models.MaintenanceRecord, error) {
	now := time.Now()
	rec.ID = uuid.NewString()
	if rec.Status == "" {
		rec.Status = "scheduled"
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	s.mu.Lock()
	s.state.MaintenanceRecords = append(s.state.MaintenanceRecords, rec)
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return rec, nil
}

// UpdateMaintenanceStatus transitions a maintenance record's status.
func (s *Store) UpdateMaintenanceStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	found := false
	for i := range s.state.MaintenanceRecords {
		if s.state.MaintenanceRecords[i].ID == id {
			s.state.MaintenanceRecords[i].Status = status
			s.state.MaintenanceRecords[i].UpdatedAt = time.Now()
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// DeleteMaintenance removes a maintenance record.
func (s *Store) DeleteMaintenance(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for i, rec := range s.state.MaintenanceRecords {
		if rec.ID == id {
			s.state.MaintenanceRecords = append(s.state.MaintenanceRecords[:i], s.state.MaintenanceRecords[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrRecordNotFound
	}
	snap := s.commitLocked(ctx)
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// GetVehicleByID returns a copy of the matching vehicle.
func (s *Store) GetVehicleByID(id int64) (models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOfLocked(id)
	if idx < 0 {
		return models.Vehicle{}, ErrVehicleNotFound
	}
	return s.state.Vehicles[idx], nil
}

// Vehicles returns a copy of the full vehicle list.
func (s *Store) Vehicles() []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vehicle(nil), s.state.Vehicles...)
}

// GetVehiclesByGroup returns the vehicles sharing make and model.
func (s *Store) GetVehiclesByGroup(vMake, vModel string) []models.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Vehicle
	for _, v := range s.state.Vehicles {
		if v.Make == vMake && v.Model == vModel {
			out = append(out, v)
		}
	}
	return out
}

// SearchVehicles returns vehicles whose textual fields contain query,
// case-insensitively. An empty query matches everything.
func (s *Store) SearchVehicles(query string) []models.Vehicle {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	if query == "" {
		return append([]models.Vehicle(nil), s.state.Vehicles...)
	}
	var out []models.Vehicle
	for _, v := range s.state.Vehicles {
		haystack := strings.ToLower(strings.Join([]string{
			v.Make, v.Model, v.LicensePlate, v.VIN, v.Category, v.Location, v.Status,
		}, " "))
		if strings.Contains(haystack, query) {
			out = append(out, v)
		}
	}
	return out
}

// Groups derives the fleet groups from the current vehicle list.
func (s *Store) Groups() []models.FleetGroup {
	s.mu.RLock()
	vehicles := append([]models.Vehicle(nil), s.state.Vehicles...)
	s.mu.RUnlock()
	return BuildGroups(vehicles)
}

// MaintenanceRecords returns a copy of all maintenance records, orphans
// included; use GetVehicleMaintenance for a vehicle-scoped view.
func (s *Store) MaintenanceRecords() []models.MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.MaintenanceRecord(nil), s.state.MaintenanceRecords...)
}

// GetVehicleMaintenance returns the maintenance records of one vehicle.
// Records whose vehicle has been deleted never show up here.
func (s *Store) GetVehicleMaintenance(vehicleID int64) []models.MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.indexOfLocked(vehicleID) < 0 {
		return nil
	}
	var out []models.MaintenanceRecord
	for _, rec := range s.state.MaintenanceRecords {
		if rec.VehicleID == vehicleID {
			out = append(out, rec)
		}
	}
	return out
}

// Registrations returns the tracking registrations whose vehicle still
// exists, filtering orphans left behind by vehicle deletion.
func (s *Store) Registrations() []models.TrackingRegistration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.TrackingRegistration
	for _, reg := range s.state.TrackedRegistrations {
		if s.indexOfLocked(reg.VehicleID) >= 0 {
			out = append(out, reg)
		}
	}
	return out
}

// GetRegistration returns a vehicle's tracking registration.
func (s *Store) GetRegistration(vehicleID int64) (models.TrackingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, reg := range s.state.TrackedRegistrations {
		if reg.VehicleID == vehicleID {
			return reg, nil
		}
	}
	return models.TrackingRegistration{}, ErrRecordNotFound
}

// Snapshot returns a versioned copy of the full store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Version:              s.version,
		Vehicles:             append([]models.Vehicle(nil), s.state.Vehicles...),
		MaintenanceRecords:   append([]models.MaintenanceRecord(nil), s.state.MaintenanceRecords...),
		TrackedRegistrations: append([]models.TrackingRegistration(nil), s.state.TrackedRegistrations...),
		LastUpdate:           s.state.LastUpdate,
	}
}

func (s *Store) indexOfLocked(id int64) int {
	for i, v := range s.state.Vehicles {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked finalizes a mutation: bumps the version, persists the full
// state and returns the resulting snapshot. Caller holds s.mu and must call
// notify with the snapshot after unlocking.
func (s *Store) commitLocked(ctx context.Context) Snapshot {
	s.state.LastUpdate = time.Now()
	s.version++
	s.persistLocked(ctx)
	return s.snapshotLocked()
}

// persistLocked saves the full state. A quota failure retries once with all
// image fields stripped; any remaining failure is logged and swallowed, since
// the in-memory state is authoritative for the session.
func (s *Store) persistLocked(ctx context.Context) {
	if s.backend == nil {
		return
	}
	err := s.backend.Save(ctx, &s.state)
	if err == nil {
		return
	}
	if errors.Is(err, storage.ErrQuotaExceeded) {
		for i := range s.state.Vehicles {
			s.state.Vehicles[i].Image = ""
		}
		if retryErr := s.backend.Save(ctx, &s.state); retryErr == nil {
			s.log.Warn("Fleet state exceeded storage capacity, saved without images")
			return
		}
	}
	s.log.WithError(err).Error("Failed to persist fleet state, in-memory state remains authoritative")
}

func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()
	for _, fn := range fns {
		fn(snap)
	}
}

// touch bumps UpdatedAt, always strictly past its previous value even when
// the clock has not advanced between mutations.
func touch(v *models.Vehicle) {
	now := time.Now()
	if !now.After(v.UpdatedAt) {
		now = v.UpdatedAt.Add(time.Nanosecond)
	}
	v.UpdatedAt = now
}
