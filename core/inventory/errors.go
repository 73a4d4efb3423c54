package inventory

import (
	"errors"
	"fmt"
)

// ErrLocationNotFound is returned when a storage location ID is unknown.
var ErrLocationNotFound = errors.New("storage location not found")

// ErrUnitNotFound is returned when a stored unit no longer exists.
var ErrUnitNotFound = errors.New("stored unit not found")

// ErrAlreadyDispatched is returned when a unit's dispatched flag was already
// flipped. Unreachable through the claim path; kept for the direct
// MarkDispatched op.
var ErrAlreadyDispatched = errors.New("unit already dispatched")

// CapacityExceededError reports a receive rejected by the capacity ceiling.
type CapacityExceededError struct {
	LocationID string
	Current    int
	Max        int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("location %s at capacity: %d/%d undispatched units", e.LocationID, e.Current, e.Max)
}
