package inventoryapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ombralis/packdispatch/core/dispatch"
	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/receiving"
	"github.com/ombralis/packdispatch/infra/logger"
)

func newFixtures(t *testing.T, capacity int) (*receiving.Gate, *inventory.MemoryStore, dispatch.Selector) {
	t.Helper()
	store := inventory.NewMemoryStore()
	err := store.AddLocation(context.Background(), model.StorageLocation{ID: "loc-1", Name: "Main", MaxCapacity: capacity})
	if err != nil {
		t.Fatalf("add location: %v", err)
	}
	gate := receiving.NewGate(store, logger.NopLogger{}, nil, false)
	sel := dispatch.NewSelector("", dispatch.NewBatchStrategy(3, time.Millisecond), dispatch.NewSingleStrategy(time.Millisecond))
	return gate, store, sel
}

func TestReceiveHandler_Created(t *testing.T) {
	gate, store, sel := newFixtures(t, 5)
	h := NewReceiveHandler(gate, sel)

	body := `{"location_id":"loc-1","payload":{"name":"Rose 50ml","count":2}}`
	req := httptest.NewRequest(http.MethodPost, "/api/receive", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	var unit model.StoredUnit
	if err := json.Unmarshal(rec.Body.Bytes(), &unit); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if unit.Dispatched || unit.LocationID != "loc-1" {
		t.Fatalf("unexpected unit %+v", unit)
	}
	units, _ := store.ListUnits(context.Background(), "loc-1")
	if len(units) != 1 {
		t.Fatalf("unit not persisted")
	}
}

func TestReceiveHandler_CapacityExceeded(t *testing.T) {
	gate, _, sel := newFixtures(t, 1)
	h := NewReceiveHandler(gate, sel)

	for i, want := range []int{http.StatusCreated, http.StatusBadRequest} {
		req := httptest.NewRequest(http.MethodPost, "/api/receive", strings.NewReader(`{"location_id":"loc-1"}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: expected %d got %d", i, want, rec.Code)
		}
	}
}

func TestReceiveHandler_PrivilegedBypass(t *testing.T) {
	gate, _, sel := newFixtures(t, 1)
	h := NewReceiveHandler(gate, sel)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/receive", strings.NewReader(`{"location_id":"loc-1"}`))
		req.Header.Set("X-Caller-Role", "SALES_MANAGER")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("privileged receive %d: expected 201 got %d", i, rec.Code)
		}
	}
}

func TestReceiveHandler_LocationNotFound(t *testing.T) {
	gate, _, sel := newFixtures(t, 5)
	h := NewReceiveHandler(gate, sel)

	req := httptest.NewRequest(http.MethodPost, "/api/receive", strings.NewReader(`{"location_id":"missing"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestLocationsHandler_ListAndCreate(t *testing.T) {
	_, store, _ := newFixtures(t, 5)
	h := NewLocationsHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/locations", strings.NewReader(`{"id":"loc-2","name":"Annex","max_capacity":10}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/locations", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var locs []model.StorageLocation
	if err := json.Unmarshal(rec.Body.Bytes(), &locs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(locs) != 2 {
		t.Fatalf("expected 2 locations got %d", len(locs))
	}
}

func TestLocationsHandler_RejectsInvalid(t *testing.T) {
	_, store, _ := newFixtures(t, 5)
	h := NewLocationsHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/locations", strings.NewReader(`{"id":"","max_capacity":0}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationUnitsHandler(t *testing.T) {
	gate, store, _ := newFixtures(t, 5)
	if _, err := gate.Receive(context.Background(), "loc-1", nil, false); err != nil {
		t.Fatalf("receive: %v", err)
	}
	h := NewLocationUnitsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/locations/loc-1/units", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var units []model.StoredUnit
	if err := json.Unmarshal(rec.Body.Bytes(), &units); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(units) != 1 || units[0].Dispatched {
		t.Fatalf("unexpected units %+v", units)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/locations/missing/units", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
