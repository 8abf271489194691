package models

import "time"

// FleetState is the single durable record the engine persists: every mutation
// saves the full snapshot, and startup restores it verbatim.
type FleetState struct {
	Vehicles             []Vehicle              `bson:"vehicles" json:"vehicles"`
	MaintenanceRecords   []MaintenanceRecord    `bson:"maintenance_records" json:"maintenance_records"`
	TrackedRegistrations []TrackingRegistration `bson:"tracked_registrations" json:"tracked_registrations"`
	NextID               int64                  `bson:"next_id" json:"next_id"`
	LastUpdate           time.Time              `bson:"last_update" json:"last_update"`
}

// Normalize fills collections an older-shaped snapshot may be missing and
// derives the id counter when the snapshot predates it, so ids are never
// reused after a reload.
func (s *FleetState) Normalize() {
	if s.Vehicles == nil {
		s.Vehicles = []Vehicle{}
	}
	if s.MaintenanceRecords == nil {
		s.MaintenanceRecords = []MaintenanceRecord{}
	}
	if s.TrackedRegistrations == nil {
		s.TrackedRegistrations = []TrackingRegistration{}
	}
	for _, v := range s.Vehicles {
		if v.ID >= s.NextID {
			s.NextID = v.ID + 1
		}
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
}
