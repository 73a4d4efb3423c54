// Package api holds shared helpers for the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/report"
	"github.com/ombralis/packdispatch/core/simulation"
)

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteError maps core errors to HTTP statuses: capacity and workload
// violations are client errors, unknown IDs are not found, anything else is a
// server fault.
func WriteError(w http.ResponseWriter, err error) {
	var capErr *inventory.CapacityExceededError
	switch {
	case errors.As(err, &capErr):
		WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":    capErr.Error(),
			"current":  capErr.Current,
			"max":      capErr.Max,
			"location": capErr.LocationID,
		})
	case errors.Is(err, simulation.ErrInvalidWorkload):
		WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, inventory.ErrLocationNotFound),
		errors.Is(err, inventory.ErrUnitNotFound),
		errors.Is(err, report.ErrReportNotFound):
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
