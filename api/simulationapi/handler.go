// Package simulationapi exposes the throughput simulator and its reports over
// HTTP.
package simulationapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ombralis/packdispatch/api"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/report"
	"github.com/ombralis/packdispatch/core/simulation"
)

type simulateRequest struct {
	WorkloadSize int `json:"workload_size"`
}

// NewSimulateHandler serves POST /api/simulate.
func NewSimulateHandler(sim *simulation.Simulator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req simulateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		res, err := sim.Run(r.Context(), req.WorkloadSize)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, res)
	})
}

// NewReportsHandler serves GET /api/reports and GET /api/reports/{id}.
func NewReportsHandler(store report.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/reports")
		id = strings.TrimPrefix(id, "/")
		if id == "" {
			reports, err := store.List(r.Context())
			if err != nil {
				api.WriteError(w, err)
				return
			}
			if reports == nil {
				reports = []model.SimulationReport{}
			}
			api.WriteJSON(w, http.StatusOK, reports)
			return
		}
		rep, err := store.Get(r.Context(), id)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, rep)
	})
}
