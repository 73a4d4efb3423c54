package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/report"
)

func newTestInventory(t *testing.T) *SQLiteInventory {
	t.Helper()
	s, err := NewSQLiteInventory(filepath.Join(t.TempDir(), "inv.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.AddLocation(context.Background(), model.StorageLocation{ID: "loc-1", Name: "Main", MaxCapacity: 2}); err != nil {
		t.Fatalf("add location: %v", err)
	}
	return s
}

func TestSQLiteInventory_RoundTrip(t *testing.T) {
	s := newTestInventory(t)
	ctx := context.Background()

	unit := model.NewStoredUnit("loc-1", json.RawMessage(`{"name":"Rose 50ml"}`))
	if err := s.Insert(ctx, unit, true); err != nil {
		t.Fatalf("insert: %v", err)
	}
	units, err := s.ListUnits(ctx, "loc-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 1 || units[0].ID != unit.ID || units[0].Dispatched {
		t.Fatalf("unexpected units %+v", units)
	}
	if string(units[0].Payload) != `{"name":"Rose 50ml"}` {
		t.Fatalf("payload not preserved: %s", units[0].Payload)
	}

	if err := s.MarkDispatched(ctx, unit.ID); err != nil {
		t.Fatalf("mark: %v", err)
	}
	units, _ = s.ListUnits(ctx, "loc-1")
	if !units[0].Dispatched {
		t.Fatalf("flag flip not persisted")
	}
	free, _ := s.FindUndispatched(ctx, "", 10)
	if len(free) != 0 {
		t.Fatalf("dispatched unit must not be selectable again")
	}
}

func TestSQLiteInventory_CapacityCheck(t *testing.T) {
	s := newTestInventory(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.Insert(ctx, model.NewStoredUnit("loc-1", nil), true); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	err := s.Insert(ctx, model.NewStoredUnit("loc-1", nil), true)
	var capErr *inventory.CapacityExceededError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected CapacityExceededError got %v", err)
	}
	// Unchecked insert still passes.
	if err := s.Insert(ctx, model.NewStoredUnit("loc-1", nil), false); err != nil {
		t.Fatalf("unchecked insert: %v", err)
	}
	if err := s.Insert(ctx, model.NewStoredUnit("missing", nil), false); !errors.Is(err, inventory.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound got %v", err)
	}
}

func TestSQLiteInventory_ClaimCommitRelease(t *testing.T) {
	s := newTestInventory(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := s.Insert(ctx, model.NewStoredUnit("loc-1", nil), false); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	claimed, err := s.Claim(ctx, "", 5)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("expected 2 claimed got %d", len(claimed))
	}
	again, _ := s.Claim(ctx, "", 5)
	if len(again) != 0 {
		t.Fatalf("claimed units must be hidden from later claims")
	}

	if err := s.CommitDispatch(ctx, claimed[0].ID); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := s.CommitDispatch(ctx, claimed[0].ID); !errors.Is(err, inventory.ErrAlreadyDispatched) {
		t.Fatalf("expected ErrAlreadyDispatched got %v", err)
	}
	if err := s.Release(ctx, claimed[1].ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	free, _ := s.FindUndispatched(ctx, "", 5)
	if len(free) != 1 || free[0].ID != claimed[1].ID {
		t.Fatalf("released unit must be claimable again")
	}
	if err := s.CommitDispatch(ctx, "missing"); !errors.Is(err, inventory.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound got %v", err)
	}
}

func TestSQLiteInventory_ReopenClearsClaims(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inv.db")
	ctx := context.Background()

	s, err := NewSQLiteInventory(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.AddLocation(ctx, model.StorageLocation{ID: "loc-1", Name: "Main", MaxCapacity: 5}); err != nil {
		t.Fatalf("add location: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := s.Insert(ctx, model.NewStoredUnit("loc-1", nil), false); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if claimed, err := s.Claim(ctx, "", 1); err != nil || len(claimed) != 1 {
		t.Fatalf("claim: %v (%d units)", err, len(claimed))
	}
	// Simulate a crash between Claim and CommitDispatch.
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteInventory(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	free, err := reopened.FindUndispatched(ctx, "", 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("stale claim survived restart: %d of 2 units selectable", len(free))
	}
	claimed, err := reopened.Claim(ctx, "", 10)
	if err != nil {
		t.Fatalf("claim after reopen: %v", err)
	}
	if len(claimed) != 2 {
		t.Fatalf("expected both units claimable after reopen, got %d", len(claimed))
	}
}

func TestSQLiteReports_RoundTrip(t *testing.T) {
	s, err := NewSQLiteReports(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	older := model.SimulationReport{ID: "r1", Strategy: "SingleDispatch", WorkloadSize: 30, TotalRounds: 30, TotalTimeSeconds: 75, Throughput: 0.4, Conclusion: "c", CreatedAt: now.Add(-time.Minute)}
	newer := model.SimulationReport{ID: "r2", Strategy: "BatchDispatch", WorkloadSize: 30, TotalRounds: 10, TotalTimeSeconds: 5, Throughput: 6, Conclusion: "c", CreatedAt: now}
	for _, rep := range []model.SimulationReport{older, newer} {
		if err := s.Save(ctx, rep); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	reports, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(reports) != 2 || reports[0].ID != "r2" {
		t.Fatalf("expected newest first, got %+v", reports)
	}
	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Throughput != 0.4 || !got.CreatedAt.Equal(older.CreatedAt) {
		t.Fatalf("report fields not preserved: %+v", got)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, report.ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound got %v", err)
	}
}
