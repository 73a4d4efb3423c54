package model

import (
	"time"

	"github.com/google/uuid"
)

// SimulationReport is one per-strategy record of a simulation run. Reports are
// created in pairs sharing the same workload size and conclusion, and are
// never updated or deleted.
type SimulationReport struct {
	ID                   string    `json:"id"`
	Strategy             string    `json:"strategy"`
	WorkloadSize         int       `json:"workload_size"`
	UnitsPerRound        int       `json:"units_per_round"`
	DelayPerRoundSeconds float64   `json:"delay_per_round_seconds"`
	TotalRounds          int       `json:"total_rounds"`
	TotalTimeSeconds     float64   `json:"total_time_seconds"`
	Throughput           float64   `json:"throughput"`
	Conclusion           string    `json:"conclusion"`
	CreatedAt            time.Time `json:"created_at"`
}

// NewReportID returns a fresh report identifier.
func NewReportID() string { return uuid.NewString() }
