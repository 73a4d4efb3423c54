package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StoredUnit is one physical package tracked in inventory. A unit belongs to
// exactly one storage location for its entire lifetime and its Dispatched flag
// flips false to true exactly once.
type StoredUnit struct {
	ID         string          `json:"id"`
	LocationID string          `json:"location_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Dispatched bool            `json:"dispatched"`
	Claimed    bool            `json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewStoredUnit creates an undispatched unit for the given location.
func NewStoredUnit(locationID string, payload json.RawMessage) StoredUnit {
	return StoredUnit{
		ID:         uuid.NewString(),
		LocationID: locationID,
		Payload:    payload,
		CreatedAt:  time.Now().UTC(),
	}
}
