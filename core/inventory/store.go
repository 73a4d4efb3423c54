package inventory

import (
	"context"

	"github.com/ombralis/packdispatch/core/model"
)

// Store is the source of truth for stored units and their locations. Units are
// scarce physical resources: every mutation is durable before the call
// returns, and the claim/commit pair guarantees a unit is dispatched by at
// most one caller.
type Store interface {
	// AddLocation registers a storage location. Locations are immutable once
	// added.
	AddLocation(ctx context.Context, loc model.StorageLocation) error
	// GetLocation returns the location or ErrLocationNotFound.
	GetLocation(ctx context.Context, id string) (model.StorageLocation, error)
	ListLocations(ctx context.Context) ([]model.StorageLocation, error)

	// ListUnits returns all units of a location in insertion order.
	ListUnits(ctx context.Context, locationID string) ([]model.StoredUnit, error)
	// FindUndispatched returns up to limit undispatched units in insertion
	// order. An empty locationID scans all locations.
	FindUndispatched(ctx context.Context, locationID string, limit int) ([]model.StoredUnit, error)
	// CountUndispatched counts units with dispatched=false in a location.
	// Claimed but uncommitted units still count: they occupy capacity.
	CountUndispatched(ctx context.Context, locationID string) (int, error)

	// Insert persists a new unit. When enforceCapacity is set, the capacity
	// check and the insertion happen atomically per location and a full
	// location yields *CapacityExceededError.
	Insert(ctx context.Context, unit model.StoredUnit, enforceCapacity bool) error

	// Claim atomically flags up to limit undispatched, unclaimed units as
	// claimed and returns them in insertion order. A claimed unit is invisible
	// to other Claim and FindUndispatched calls until committed or released.
	Claim(ctx context.Context, locationID string, limit int) ([]model.StoredUnit, error)
	// CommitDispatch flips the dispatched flag of a claimed unit.
	CommitDispatch(ctx context.Context, unitID string) error
	// Release drops the claim on a unit without dispatching it.
	Release(ctx context.Context, unitID string) error

	// MarkDispatched flips the dispatched flag directly. Fails with
	// ErrUnitNotFound or ErrAlreadyDispatched.
	MarkDispatched(ctx context.Context, unitID string) error
}
