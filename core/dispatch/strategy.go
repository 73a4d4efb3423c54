package dispatch

import "time"

// Strategy names as persisted in reports and exposed over the API.
const (
	StrategyBatch  = "BatchDispatch"
	StrategySingle = "SingleDispatch"
)

// Strategy is one of the two fixed dispatch policies. BatchSize caps how many
// units a single dispatch call may drain; UnitDelay is the per-unit processing
// time applied before each unit is committed.
type Strategy struct {
	name      string
	batchSize int
	unitDelay time.Duration
}

func (s Strategy) Name() string             { return s.name }
func (s Strategy) BatchSize() int           { return s.batchSize }
func (s Strategy) UnitDelay() time.Duration { return s.unitDelay }

// EffectiveCount returns how many units a dispatch call may drain for the
// requested count. The requested count is a hint: batch dispatch caps it at
// the batch size, single dispatch always processes exactly one unit.
func (s Strategy) EffectiveCount(requested int) int {
	if requested <= 0 {
		return 0
	}
	if s.name == StrategySingle {
		return 1
	}
	if requested > s.batchSize {
		return s.batchSize
	}
	return requested
}

// NewBatchStrategy builds the high-throughput policy. Zero or negative
// parameters fall back to the defaults (3 units, 500ms).
func NewBatchStrategy(batchSize int, unitDelay time.Duration) Strategy {
	if batchSize <= 0 {
		batchSize = 3
	}
	if unitDelay <= 0 {
		unitDelay = 500 * time.Millisecond
	}
	return Strategy{name: StrategyBatch, batchSize: batchSize, unitDelay: unitDelay}
}

// NewSingleStrategy builds the one-at-a-time policy (1 unit, 2.5s default).
func NewSingleStrategy(unitDelay time.Duration) Strategy {
	if unitDelay <= 0 {
		unitDelay = 2500 * time.Millisecond
	}
	return Strategy{name: StrategySingle, batchSize: 1, unitDelay: unitDelay}
}
