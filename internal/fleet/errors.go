package fleet

import "errors"

var (
	// ErrVehicleNotFound is returned when an operation references an absent
	// vehicle id. Callers are expected to no-op gracefully.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrRecordNotFound is returned when a maintenance record or tracking
	// registration lookup misses.
	ErrRecordNotFound = errors.New("record not found")
)
