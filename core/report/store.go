// Package report stores simulation reports. The store is append-only: reports
// are never updated or deleted.
package report

import (
	"context"
	"errors"
	"sync"

	"github.com/ombralis/packdispatch/core/model"
)

// ErrReportNotFound is returned when a report ID is unknown.
var ErrReportNotFound = errors.New("simulation report not found")

// Store persists simulation reports.
type Store interface {
	Save(ctx context.Context, rep model.SimulationReport) error
	// List returns all reports, newest first.
	List(ctx context.Context) ([]model.SimulationReport, error)
	// Get returns the report or ErrReportNotFound.
	Get(ctx context.Context, id string) (model.SimulationReport, error)
	Close() error
}

// MemoryStore keeps reports in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	reports []model.SimulationReport
	byID    map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]int{}}
}

func (s *MemoryStore) Save(_ context.Context, rep model.SimulationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[rep.ID] = len(s.reports)
	s.reports = append(s.reports, rep)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]model.SimulationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.SimulationReport, 0, len(s.reports))
	for i := len(s.reports) - 1; i >= 0; i-- {
		res = append(res, s.reports[i])
	}
	return res, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (model.SimulationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.SimulationReport{}, ErrReportNotFound
	}
	return s.reports[i], nil
}

func (s *MemoryStore) Close() error { return nil }
