package model

// StorageLocation is a warehouse facility with a capacity ceiling. Locations
// are created administratively and immutable afterwards; MaxCapacity bounds
// the number of undispatched units the location may hold at once.
type StorageLocation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxCapacity int    `json:"max_capacity"`
}
