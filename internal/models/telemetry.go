package models

import "time"

// Telemetry is the simulated real-time tracking state of one vehicle. It is
// ephemeral and never persisted. Status, Image and Location mirror the stored
// vehicle and are refreshed on reconciliation; every other field is owned by
// the simulator and evolves only on ticks.
type Telemetry struct {
	VehicleID    int64     `json:"vehicle_id"`
	Position     Location  `json:"position"`
	Speed        float64   `json:"speed"`   // km/h
	Heading      float64   `json:"heading"` // degrees
	FuelLevel    float64   `json:"fuel_level"`
	BatteryLevel float64   `json:"battery_level"`
	Online       bool      `json:"online"`
	Status       string    `json:"status"`
	Image        string    `json:"image"`
	Location     string    `json:"location"`
	Alerts       []Alert   `json:"alerts"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Alert is a threshold warning derived from current telemetry. Alerts are
// rebuilt from scratch on every tick, never accumulated.
type Alert struct {
	Code     string `json:"code"`
	Severity string `json:"severity"` // "warning" or "critical"
	Message  string `json:"message"`
}
