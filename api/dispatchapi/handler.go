// Package dispatchapi exposes dispatch operations over HTTP.
package dispatchapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ombralis/packdispatch/api"
	"github.com/ombralis/packdispatch/core/dispatch"
)

// RoleHeader carries the caller role resolved by the external authentication
// collaborator. The value is trusted as-is.
const RoleHeader = "X-Caller-Role"

type dispatchRequest struct {
	Count int `json:"count"`
}

type dispatchResponse struct {
	Dispatched any `json:"dispatched"`
}

// NewDispatchHandler returns an HTTP handler serving POST /api/dispatch.
func NewDispatchHandler(mgr *dispatch.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		role := r.Header.Get(RoleHeader)
		units, err := mgr.Dispatch(r.Context(), role, req.Count)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, dispatchResponse{Dispatched: units})
	})
}

// NewJournalHandler returns an HTTP handler exposing the dispatch journal via
// GET /api/dispatch/journal.
func NewJournalHandler(journal dispatch.Journal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if journal == nil {
			http.Error(w, "journal disabled", http.StatusNotFound)
			return
		}
		q := dispatch.JournalQuery{Strategy: r.URL.Query().Get("strategy")}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		records, err := journal.Query(r.Context(), q)
		if err != nil {
			api.WriteError(w, err)
			return
		}
		if records == nil {
			records = []dispatch.JournalRecord{}
		}
		api.WriteJSON(w, http.StatusOK, records)
	})
}
