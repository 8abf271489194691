package fleet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/rentfleet/internal/models"
)

func groupVehicle(id int64, vMake, vModel, status string) models.Vehicle {
	return models.Vehicle{ID: id, Make: vMake, Model: vModel, Status: status}
}

func TestBuildGroups_PartitionProperty(t *testing.T) {
	vehicles := []models.Vehicle{
		groupVehicle(1, "Toyota", "Camry", models.StatusAvailable),
		groupVehicle(2, "Toyota", "Camry", models.StatusRented),
		groupVehicle(3, "Toyota", "Camry", models.StatusMaintenance),
		groupVehicle(4, "Honda", "Civic", models.StatusAvailable),
		groupVehicle(5, "Honda", "Civic", models.StatusOutOfService),
		groupVehicle(6, "Tesla", "Model 3", models.StatusRented),
	}

	groups := BuildGroups(vehicles)
	require.Len(t, groups, 3)

	total := 0
	for _, g := range groups {
		counted := g.AvailableCount + g.RentedCount + g.MaintenanceCount + g.OutOfServiceCount
		assert.Equal(t, g.TotalCount, counted, "counts must partition group %s", g.Key)
		assert.Len(t, g.Vehicles, g.TotalCount)
		total += g.TotalCount
	}
	assert.Equal(t, len(vehicles), total, "groups must partition the vehicle list")
}

func TestBuildGroups_KeyAndOrder(t *testing.T) {
	vehicles := []models.Vehicle{
		groupVehicle(1, "Honda", "Civic", models.StatusAvailable),
		groupVehicle(2, "Toyota", "Camry", models.StatusAvailable),
		groupVehicle(3, "Honda", "Civic", models.StatusAvailable),
	}
	groups := BuildGroups(vehicles)
	require.Len(t, groups, 2)
	assert.Equal(t, "Honda-Civic", groups[0].Key)
	assert.Equal(t, "Toyota-Camry", groups[1].Key)
	assert.Equal(t, 2, groups[0].TotalCount)
}

func TestBuildGroups_RepresentativeImage(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := groupVehicle(1, "Toyota", "Camry", models.StatusAvailable)
	older.Image = "/images/old.jpg"
	older.UpdatedAt = base
	newer := groupVehicle(2, "Toyota", "Camry", models.StatusAvailable)
	newer.Image = "/images/new.jpg"
	newer.UpdatedAt = base.Add(time.Hour)
	noImage := groupVehicle(3, "Toyota", "Camry", models.StatusAvailable)
	noImage.UpdatedAt = base.Add(2 * time.Hour)
	placeholder := groupVehicle(4, "Toyota", "Camry", models.StatusAvailable)
	placeholder.Image = DefaultImage
	placeholder.UpdatedAt = base.Add(3 * time.Hour)

	groups := BuildGroups([]models.Vehicle{older, newer, noImage, placeholder})
	require.Len(t, groups, 1)
	// The most recently updated member with a real image wins; empty and
	// placeholder images never qualify.
	assert.Equal(t, "/images/new.jpg", groups[0].Image)
}

func TestBuildGroups_RepresentativeImageDeterministic(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := groupVehicle(1, "Toyota", "Camry", models.StatusAvailable)
	a.Image = "/images/a.jpg"
	a.UpdatedAt = ts
	b := groupVehicle(2, "Toyota", "Camry", models.StatusAvailable)
	b.Image = "/images/b.jpg"
	b.UpdatedAt = ts

	vehicles := []models.Vehicle{a, b}
	first := BuildGroups(vehicles)[0].Image
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, BuildGroups(vehicles)[0].Image)
	}
	// Ties on UpdatedAt keep the order encountered in the source list.
	assert.Equal(t, "/images/a.jpg", first)
}

func TestBuildGroups_NoImageFallsBackToDefault(t *testing.T) {
	groups := BuildGroups([]models.Vehicle{groupVehicle(1, "Toyota", "Camry", models.StatusAvailable)})
	require.Len(t, groups, 1)
	assert.Equal(t, DefaultImage, groups[0].Image)
}

func TestBuildGroups_Empty(t *testing.T) {
	assert.Empty(t, BuildGroups(nil))
}
