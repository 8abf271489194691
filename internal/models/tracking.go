package models

import "time"

// TrackingRegistration marks a vehicle as enrolled in the tracking feed.
// A vehicle has at most one registration; re-adding replaces it.
type TrackingRegistration struct {
	VehicleID  int64     `bson:"vehicle_id" json:"vehicle_id"`
	TrackingID string    `bson:"tracking_id" json:"tracking_id"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
	IsActive   bool      `bson:"is_active" json:"is_active"`
}
