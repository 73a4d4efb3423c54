package inventory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ombralis/packdispatch/core/model"
)

// MemoryStore keeps locations and units in memory behind a single mutex. The
// mutex makes claim/commit and count/insert atomic critical sections, which is
// all the concurrency control the dispatch path needs.
type MemoryStore struct {
	mu        sync.Mutex
	locations map[string]model.StorageLocation
	units     map[string]*model.StoredUnit
	order     []string // unit IDs in insertion order
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locations: map[string]model.StorageLocation{},
		units:     map[string]*model.StoredUnit{},
	}
}

func (s *MemoryStore) AddLocation(_ context.Context, loc model.StorageLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[loc.ID]; ok {
		return fmt.Errorf("location %s already exists", loc.ID)
	}
	s.locations[loc.ID] = loc
	return nil
}

func (s *MemoryStore) GetLocation(_ context.Context, id string) (model.StorageLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[id]
	if !ok {
		return model.StorageLocation{}, ErrLocationNotFound
	}
	return loc, nil
}

func (s *MemoryStore) ListLocations(_ context.Context) ([]model.StorageLocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]model.StorageLocation, 0, len(s.locations))
	for _, loc := range s.locations {
		res = append(res, loc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) ListUnits(_ context.Context, locationID string) ([]model.StoredUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.locations[locationID]; !ok {
		return nil, ErrLocationNotFound
	}
	var res []model.StoredUnit
	for _, id := range s.order {
		u := s.units[id]
		if u.LocationID == locationID {
			res = append(res, *u)
		}
	}
	return res, nil
}

func (s *MemoryStore) FindUndispatched(_ context.Context, locationID string, limit int) ([]model.StoredUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.StoredUnit
	for _, id := range s.order {
		if limit >= 0 && len(res) >= limit {
			break
		}
		u := s.units[id]
		if u.Dispatched || u.Claimed {
			continue
		}
		if locationID != "" && u.LocationID != locationID {
			continue
		}
		res = append(res, *u)
	}
	return res, nil
}

func (s *MemoryStore) CountUndispatched(_ context.Context, locationID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countUndispatchedLocked(locationID), nil
}

func (s *MemoryStore) countUndispatchedLocked(locationID string) int {
	n := 0
	for _, u := range s.units {
		if !u.Dispatched && (locationID == "" || u.LocationID == locationID) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) Insert(_ context.Context, unit model.StoredUnit, enforceCapacity bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	loc, ok := s.locations[unit.LocationID]
	if !ok {
		return ErrLocationNotFound
	}
	if enforceCapacity {
		if n := s.countUndispatchedLocked(unit.LocationID); n >= loc.MaxCapacity {
			return &CapacityExceededError{LocationID: unit.LocationID, Current: n, Max: loc.MaxCapacity}
		}
	}
	u := unit
	s.units[u.ID] = &u
	s.order = append(s.order, u.ID)
	return nil
}

func (s *MemoryStore) Claim(_ context.Context, locationID string, limit int) ([]model.StoredUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []model.StoredUnit
	for _, id := range s.order {
		if len(res) >= limit {
			break
		}
		u := s.units[id]
		if u.Dispatched || u.Claimed {
			continue
		}
		if locationID != "" && u.LocationID != locationID {
			continue
		}
		u.Claimed = true
		res = append(res, *u)
	}
	return res, nil
}

func (s *MemoryStore) CommitDispatch(_ context.Context, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return ErrUnitNotFound
	}
	if u.Dispatched {
		return ErrAlreadyDispatched
	}
	u.Dispatched = true
	u.Claimed = false
	return nil
}

func (s *MemoryStore) Release(_ context.Context, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return ErrUnitNotFound
	}
	u.Claimed = false
	return nil
}

func (s *MemoryStore) MarkDispatched(_ context.Context, unitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[unitID]
	if !ok {
		return ErrUnitNotFound
	}
	if u.Dispatched {
		return ErrAlreadyDispatched
	}
	u.Dispatched = true
	u.Claimed = false
	return nil
}
