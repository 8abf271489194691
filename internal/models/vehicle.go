package models

import "time"

// Vehicle status values.
const (
	StatusAvailable    = "available"
	StatusRented       = "rented"
	StatusMaintenance  = "maintenance"
	StatusOutOfService = "out_of_service"
)

// Vehicle represents a rental fleet vehicle.
type Vehicle struct {
	ID             int64     `bson:"_id" json:"id"`
	Make           string    `bson:"make" json:"make"`
	Model          string    `bson:"model" json:"model"`
	Year           int       `bson:"year" json:"year"`
	LicensePlate   string    `bson:"license_plate" json:"license_plate"`
	VIN            string    `bson:"vin" json:"vin"`
	Category       string    `bson:"category" json:"category"` // "economy", "compact", "suv", "luxury", "van"
	Status         string    `bson:"status" json:"status"`
	Location       string    `bson:"location" json:"location"` // branch or city label
	DailyRate      float64   `bson:"daily_rate" json:"daily_rate"`       // in USD
	WeeklyRate     float64   `bson:"weekly_rate" json:"weekly_rate"`     // in USD
	FuelLevel      float64   `bson:"fuel_level" json:"fuel_level"`       // percentage, 0-100
	CurrentMileage float64   `bson:"current_mileage" json:"current_mileage"` // in kilometers
	Image          string    `bson:"image" json:"image"` // empty, static path, or data URI
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// VehiclePatch carries the fields of a partial vehicle update. Nil fields are
// left unchanged.
type VehiclePatch struct {
	Make           *string  `json:"make,omitempty"`
	Model          *string  `json:"model,omitempty"`
	Year           *int     `json:"year,omitempty"`
	LicensePlate   *string  `json:"license_plate,omitempty"`
	VIN            *string  `json:"vin,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Status         *string  `json:"status,omitempty"`
	Location       *string  `json:"location,omitempty"`
	DailyRate      *float64 `json:"daily_rate,omitempty"`
	WeeklyRate     *float64 `json:"weekly_rate,omitempty"`
	FuelLevel      *float64 `json:"fuel_level,omitempty"`
	CurrentMileage *float64 `json:"current_mileage,omitempty"`
	Image          *string  `json:"image,omitempty"`
}

// Apply merges the non-nil fields of the patch into v.
func (p VehiclePatch) Apply(v *Vehicle) {
	if p.Make != nil {
		v.Make = *p.Make
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.LicensePlate != nil {
		v.LicensePlate = *p.LicensePlate
	}
	if p.VIN != nil {
		v.VIN = *p.VIN
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.Status != nil {
		v.Status = *p.Status
	}
	if p.Location != nil {
		v.Location = *p.Location
	}
	if p.DailyRate != nil {
		v.DailyRate = *p.DailyRate
	}
	if p.WeeklyRate != nil {
		v.WeeklyRate = *p.WeeklyRate
	}
	if p.FuelLevel != nil {
		v.FuelLevel = *p.FuelLevel
	}
	if p.CurrentMileage != nil {
		v.CurrentMileage = *p.CurrentMileage
	}
	if p.Image != nil {
		v.Image = *p.Image
	}
}
