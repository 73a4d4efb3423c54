package metrics

import coremetrics "github.com/ombralis/packdispatch/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the events to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordDispatch(events []coremetrics.DispatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(events); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatchRun forwards run events to the sinks that track them.
func (m *MultiSink) RecordDispatchRun(ev coremetrics.DispatchRunEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(coremetrics.DispatchRunRecorder); ok {
			if err := r.RecordDispatchRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordReceive forwards receive events.
func (m *MultiSink) RecordReceive(ev coremetrics.ReceiveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordReceive(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSimulation forwards simulation events.
func (m *MultiSink) RecordSimulation(ev coremetrics.SimulationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSimulation(ev); err != nil {
			return err
		}
	}
	return nil
}
