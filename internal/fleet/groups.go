package fleet

import "github.com/ukydev/rentfleet/internal/models"

// DefaultImage is the placeholder shown for vehicles and groups without a
// real image. It never qualifies as a group's representative image.
const DefaultImage = "/images/default-car.jpg"

// BuildGroups derives fleet groups from a vehicle list in a single pass,
// keyed by make + "-" + model. Counts partition members by status, so they
// can never drift from the vehicle list. Group order follows first
// appearance in the source list.
func BuildGroups(vehicles []models.Vehicle) []models.FleetGroup {
	byKey := map[string]*models.FleetGroup{}
	var order []string
	for _, v := range vehicles {
		key := v.Make + "-" + v.Model
		g, ok := byKey[key]
		if !ok {
			g = &models.FleetGroup{Key: key, Make: v.Make, Model: v.Model}
			byKey[key] = g
			order = append(order, key)
		}
		g.Vehicles = append(g.Vehicles, v)
		g.TotalCount++
		switch v.Status {
		case models.StatusAvailable:
			g.AvailableCount++
		case models.StatusRented:
			g.RentedCount++
		case models.StatusMaintenance:
			g.MaintenanceCount++
		case models.StatusOutOfService:
			g.OutOfServiceCount++
		}
	}

	groups := make([]models.FleetGroup, 0, len(order))
	for _, key := range order {
		g := byKey[key]
		g.Image = representativeImage(g.Vehicles)
		groups = append(groups, *g)
	}
	return groups
}

// representativeImage picks the image of the most recently updated member
// with a real image. Ties on UpdatedAt keep the earlier member, so the
// choice is deterministic for a given input order.
func representativeImage(vehicles []models.Vehicle) string {
	best := -1
	for i, v := range vehicles {
		if v.Image == "" || v.Image == DefaultImage {
			continue
		}
		if best < 0 || v.UpdatedAt.After(vehicles[best].UpdatedAt) {
			best = i
		}
	}
	if best < 0 {
		return DefaultImage
	}
	return vehicles[best].Image
}
