package metrics

import "time"

// DispatchEvent represents one dispatched unit to be recorded.
type DispatchEvent struct {
	UnitID     string
	LocationID string
	Strategy   string
	CallerRole string
	Requested  int
	UnitDelay  time.Duration
	Time       time.Time
}

// ReceiveEvent captures the outcome of a receive attempt.
type ReceiveEvent struct {
	LocationID string
	Accepted   bool
	Enforced   bool
	Time       time.Time
}

// SimulationEvent captures one simulator invocation.
type SimulationEvent struct {
	WorkloadSize          int
	EfficiencyDiffPercent float64
	Time                  time.Time
}

// DispatchRunEvent summarizes one completed dispatch call.
type DispatchRunEvent struct {
	Strategy   string
	CallerRole string
	Requested  int
	Dispatched int
	Elapsed    time.Duration
	Time       time.Time
}

// MetricsSink records dispatch engine events for observability purposes.
type MetricsSink interface {
	RecordDispatch(events []DispatchEvent) error
	RecordReceive(ev ReceiveEvent) error
	RecordSimulation(ev SimulationEvent) error
}

// DispatchRunRecorder is implemented by sinks that also track whole dispatch
// runs. The event collector feeds it from the bus; sinks without it only see
// the per-unit events.
type DispatchRunRecorder interface {
	RecordDispatchRun(ev DispatchRunEvent) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordDispatch([]DispatchEvent) error { return nil }
func (NopSink) RecordReceive(ReceiveEvent) error     { return nil }
func (NopSink) RecordSimulation(SimulationEvent) error {
	return nil
}
