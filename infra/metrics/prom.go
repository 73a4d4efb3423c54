package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/ombralis/packdispatch/core/metrics"
)

// PromSink records dispatch engine events in Prometheus metrics.
type PromSink struct {
	dispatched  *prometheus.CounterVec
	unitDelay   *prometheus.HistogramVec
	runTime     *prometheus.HistogramVec
	runs        *prometheus.CounterVec
	receives    *prometheus.CounterVec
	simulations prometheus.Counter
}

// NewPromSink registers metrics on the default Prometheus registerer. The
// Prometheus server should be started separately using the configured port.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "units_dispatched_total",
		Help: "Total number of units dispatched",
	}, []string{"strategy", "location_id"})
	unitDelay := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_unit_delay_seconds",
		Help:    "Per-unit processing delay applied during dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	runTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_run_duration_seconds",
		Help:    "Wall time of a whole dispatch call",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_runs_total",
		Help: "Total number of dispatch calls",
	}, []string{"strategy", "caller_role"})
	receives := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receive_attempts_total",
		Help: "Total number of receive attempts by outcome",
	}, []string{"location_id", "accepted"})
	simulations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulations_total",
		Help: "Total number of simulation runs",
	})

	if err := reg.Register(dispatched); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dispatched = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(unitDelay); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			unitDelay = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(runTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runTime = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(receives); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			receives = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(simulations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			simulations = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{dispatched: dispatched, unitDelay: unitDelay, runTime: runTime, runs: runs, receives: receives, simulations: simulations}, nil
}

// RecordDispatch increments the counter for each dispatched unit.
func (s *PromSink) RecordDispatch(events []coremetrics.DispatchEvent) error {
	for _, ev := range events {
		s.dispatched.WithLabelValues(ev.Strategy, ev.LocationID).Inc()
		s.unitDelay.WithLabelValues(ev.Strategy).Observe(ev.UnitDelay.Seconds())
	}
	return nil
}

// RecordDispatchRun counts whole dispatch calls and observes their wall time.
func (s *PromSink) RecordDispatchRun(ev coremetrics.DispatchRunEvent) error {
	s.runs.WithLabelValues(ev.Strategy, ev.CallerRole).Inc()
	s.runTime.WithLabelValues(ev.Strategy).Observe(ev.Elapsed.Seconds())
	return nil
}

// RecordReceive counts receive attempts by outcome.
func (s *PromSink) RecordReceive(ev coremetrics.ReceiveEvent) error {
	s.receives.WithLabelValues(ev.LocationID, strconv.FormatBool(ev.Accepted)).Inc()
	return nil
}

// RecordSimulation counts simulation runs.
func (s *PromSink) RecordSimulation(coremetrics.SimulationEvent) error {
	s.simulations.Inc()
	return nil
}
