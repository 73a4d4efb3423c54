package dispatchapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ombralis/packdispatch/core/dispatch"
	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/infra/logger"
)

func newTestManager(t *testing.T, units int) *dispatch.Manager {
	t.Helper()
	store := inventory.NewMemoryStore()
	ctx := context.Background()
	if err := store.AddLocation(ctx, model.StorageLocation{ID: "loc-1", Name: "Main", MaxCapacity: 100}); err != nil {
		t.Fatalf("add location: %v", err)
	}
	for i := 0; i < units; i++ {
		if err := store.Insert(ctx, model.NewStoredUnit("loc-1", nil), false); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	sel := dispatch.NewSelector("", dispatch.NewBatchStrategy(3, time.Millisecond), dispatch.NewSingleStrategy(time.Millisecond))
	return dispatch.NewManager(sel, store, nil, logger.NopLogger{}, nil, nil)
}

func TestDispatchHandler_BatchRole(t *testing.T) {
	h := NewDispatchHandler(newTestManager(t, 5))
	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"count":5}`))
	req.Header.Set(RoleHeader, "SALES_MANAGER")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Dispatched []model.StoredUnit `json:"dispatched"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Dispatched) != 3 {
		t.Fatalf("expected 3 units got %d", len(resp.Dispatched))
	}
}

func TestDispatchHandler_DefaultRoleSingle(t *testing.T) {
	h := NewDispatchHandler(newTestManager(t, 5))
	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader(`{"count":5}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var resp struct {
		Dispatched []model.StoredUnit `json:"dispatched"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Dispatched) != 1 {
		t.Fatalf("expected 1 unit got %d", len(resp.Dispatched))
	}
}

func TestDispatchHandler_BadBodyAndMethod(t *testing.T) {
	h := NewDispatchHandler(newTestManager(t, 0))

	req := httptest.NewRequest(http.MethodPost, "/api/dispatch", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/dispatch", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rec.Code)
	}
}

func TestJournalHandler(t *testing.T) {
	j, err := dispatch.NewJSONLJournal(filepath.Join(t.TempDir(), "journal.jsonl"))
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	rec1 := dispatch.NewJournalRecord(dispatch.StrategyBatch, "SALES_MANAGER", 3, nil, time.Second)
	if err := j.Append(context.Background(), rec1); err != nil {
		t.Fatalf("append: %v", err)
	}

	h := NewJournalHandler(j)
	req := httptest.NewRequest(http.MethodGet, "/api/dispatch/journal?strategy=BatchDispatch", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var records []dispatch.JournalRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(records) != 1 || records[0].Strategy != dispatch.StrategyBatch {
		t.Fatalf("unexpected records %+v", records)
	}
}

func TestJournalHandler_Disabled(t *testing.T) {
	h := NewJournalHandler(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/dispatch/journal", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
