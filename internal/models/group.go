package models

// FleetGroup is a derived cluster of vehicles sharing make and model, treated
// as a bulk-operable fleet unit. Groups are recomputed from the vehicle list
// on every read and never stored.
type FleetGroup struct {
	Key               string    `json:"key"` // make + "-" + model
	Make              string    `json:"make"`
	Model             string    `json:"model"`
	Vehicles          []Vehicle `json:"vehicles"`
	TotalCount        int       `json:"total_count"`
	AvailableCount    int       `json:"available_count"`
	RentedCount       int       `json:"rented_count"`
	MaintenanceCount  int       `json:"maintenance_count"`
	OutOfServiceCount int       `json:"out_of_service_count"`
	Image             string    `json:"image"` // representative image, or the default placeholder
}
