package models

import "time"

// MaintenanceRecord represents a scheduled vehicle maintenance job. The
// vehicle reference is weak: a record may outlive its vehicle and readers
// treat such orphans as ignorable.
type MaintenanceRecord struct {
	ID                 string    `bson:"_id" json:"id"`
	VehicleID          int64     `bson:"vehicle_id" json:"vehicle_id"`
	ServiceType        string    `bson:"service_type" json:"service_type"` // "oil_change", "tire_rotation", "brake_service", "inspection", "repair"
	Description        string    `bson:"description" json:"description"`
	ScheduledDate      time.Time `bson:"scheduled_date" json:"scheduled_date"`
	AssignedTechnician string    `bson:"assigned_technician" json:"assigned_technician"`
	EstimatedCost      float64   `bson:"estimated_cost" json:"estimated_cost"` // in USD
	Priority           string    `bson:"priority" json:"priority"`             // "low", "medium", "high", "critical"
	Status             string    `bson:"status" json:"status"`                 // "scheduled", "in_progress", "completed", "cancelled"
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}
