package metrics

import (
	"context"

	"github.com/ombralis/packdispatch/core/dispatch"
	coremetrics "github.com/ombralis/packdispatch/core/metrics"
	"github.com/ombralis/packdispatch/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// dispatch events. It stops when the context is canceled or the bus closes.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case dispatch.DispatchCompletedEvent:
					// Per-unit counts are recorded synchronously by the
					// manager; the bus carries the run-level summary.
					if r, ok := sink.(coremetrics.DispatchRunRecorder); ok {
						_ = r.RecordDispatchRun(coremetrics.DispatchRunEvent{
							Strategy:   e.Strategy,
							CallerRole: e.CallerRole,
							Requested:  e.Requested,
							Dispatched: e.Dispatched,
							Elapsed:    e.Elapsed,
							Time:       e.Time,
						})
					}
				}
			}
		}
	}()
}
