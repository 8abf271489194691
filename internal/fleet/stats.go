package fleet

import "github.com/ukydev/rentfleet/internal/models"

// FleetStats aggregates the current fleet for the analytics panels.
type FleetStats struct {
	TotalVehicles    int     `json:"total_vehicles"`
	Available        int     `json:"available"`
	Rented           int     `json:"rented"`
	InMaintenance    int     `json:"in_maintenance"`
	OutOfService     int     `json:"out_of_service"`
	AverageDailyRate float64 `json:"average_daily_rate"`
	AverageFuelLevel float64 `json:"average_fuel_level"`
	TotalMileage     float64 `json:"total_mileage"`
}

// GetFleetStats computes aggregate statistics over the current vehicle list.
func (s *Store) GetFleetStats() FleetStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := FleetStats{TotalVehicles: len(s.state.Vehicles)}
	for _, v := range s.state.Vehicles {
		switch v.Status {
		case models.StatusAvailable:
			stats.Available++
		case models.StatusRented:
			stats.Rented++
		case models.StatusMaintenance:
			stats.InMaintenance++
		case models.StatusOutOfService:
			stats.OutOfService++
		}
		stats.AverageDailyRate += v.DailyRate
		stats.AverageFuelLevel += v.FuelLevel
		stats.TotalMileage += v.CurrentMileage
	}
	if stats.TotalVehicles > 0 {
		stats.AverageDailyRate /= float64(stats.TotalVehicles)
		stats.AverageFuelLevel /= float64(stats.TotalVehicles)
	}
	return stats
}
