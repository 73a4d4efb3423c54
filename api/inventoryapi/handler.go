// Package inventoryapi exposes receiving and location queries over HTTP.
package inventoryapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ombralis/packdispatch/api"
	"github.com/ombralis/packdispatch/core/dispatch"
	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/receiving"
)

type receiveRequest struct {
	LocationID string          `json:"location_id"`
	Payload    json.RawMessage `json:"payload"`
}

// NewReceiveHandler returns an HTTP handler serving POST /api/receive. The
// caller role decides whether the capacity-checked or the privileged path is
// taken.
func NewReceiveHandler(gate *receiving.Gate, selector dispatch.Selector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req receiveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.LocationID == "" {
			http.Error(w, "location_id is required", http.StatusBadRequest)
			return
		}
		role := r.Header.Get("X-Caller-Role")
		unit, err := gate.Receive(r.Context(), req.LocationID, req.Payload, selector.IsPrivileged(role))
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, unit)
	})
}

// NewLocationsHandler serves GET and POST /api/locations. POST creates a
// location administratively.
func NewLocationsHandler(store inventory.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			locs, err := store.ListLocations(r.Context())
			if err != nil {
				api.WriteError(w, err)
				return
			}
			if locs == nil {
				locs = []model.StorageLocation{}
			}
			api.WriteJSON(w, http.StatusOK, locs)
		case http.MethodPost:
			var loc model.StorageLocation
			if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
				http.Error(w, "invalid request body", http.StatusBadRequest)
				return
			}
			if loc.ID == "" || loc.MaxCapacity <= 0 {
				http.Error(w, "id and a positive max_capacity are required", http.StatusBadRequest)
				return
			}
			if err := store.AddLocation(r.Context(), loc); err != nil {
				api.WriteError(w, err)
				return
			}
			api.WriteJSON(w, http.StatusCreated, loc)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// NewLocationUnitsHandler serves GET /api/locations/{id}/units, listing all
// units of a location in insertion order.
func NewLocationUnitsHandler(store inventory.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(r.URL.Path, "/api/locations/")
		id, ok := strings.CutSuffix(rest, "/units")
		if !ok || id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		units, err := store.ListUnits(r.Context(), id)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		if units == nil {
			units = []model.StoredUnit{}
		}
		api.WriteJSON(w, http.StatusOK, units)
	})
}
