package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/logger"
	"github.com/ombralis/packdispatch/core/metrics"
	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/internal/eventbus"
)

// Manager executes dispatch requests against the inventory store. Units are
// claimed before the per-unit delay and committed after it, so two concurrent
// dispatches can never drain the same unit and a committed flip is immediately
// visible to subsequent reads.
type Manager struct {
	selector Selector
	store    inventory.Store
	journal  Journal
	log      logger.Logger
	sink     metrics.MetricsSink
	bus      eventbus.EventBus
}

// NewManager wires a Manager. Journal, sink and bus may be nil.
func NewManager(selector Selector, store inventory.Store, journal Journal, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) *Manager {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Manager{selector: selector, store: store, journal: journal, log: log, sink: sink, bus: bus}
}

// Selector exposes the role mapping for collaborators (the receiving path
// needs it to pick the gate variant).
func (m *Manager) Selector() Selector { return m.selector }

// Dispatch drains up to the strategy's effective count of undispatched units,
// FIFO across all locations. Fewer units than requested is a normal outcome;
// an empty store yields an empty slice and no error. On cancellation,
// already-committed units stay dispatched, unprocessed claims are released and
// the context error is returned alongside the partial result.
func (m *Manager) Dispatch(ctx context.Context, callerRole string, requested int) ([]model.StoredUnit, error) {
	strat := m.selector.Select(callerRole)
	count := strat.EffectiveCount(requested)
	if count == 0 {
		return []model.StoredUnit{}, nil
	}

	start := time.Now()
	claimed, err := m.store.Claim(ctx, "", count)
	if err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		m.log.Debugf("dispatch %s: no undispatched units available", strat.Name())
		return []model.StoredUnit{}, nil
	}

	dispatched := make([]model.StoredUnit, 0, len(claimed))
	var events []metrics.DispatchEvent
	for i, unit := range claimed {
		if err := m.waitUnitDelay(ctx, strat.UnitDelay()); err != nil {
			m.releaseRest(claimed[i:])
			m.finish(strat, callerRole, requested, dispatched, events, start)
			return dispatched, err
		}
		if err := m.store.CommitDispatch(ctx, unit.ID); err != nil {
			// The unit vanished or was flipped underneath us; skip it, but
			// hand the claim back so the unit cannot stay stranded.
			m.log.Warnf("commit dispatch %s: %v", unit.ID, err)
			if rerr := m.store.Release(ctx, unit.ID); rerr != nil && !errors.Is(rerr, inventory.ErrUnitNotFound) {
				m.log.Warnf("release claim %s: %v", unit.ID, rerr)
			}
			continue
		}
		unit.Dispatched = true
		unit.Claimed = false
		dispatched = append(dispatched, unit)
		events = append(events, metrics.DispatchEvent{
			UnitID:     unit.ID,
			LocationID: unit.LocationID,
			Strategy:   strat.Name(),
			CallerRole: callerRole,
			Requested:  requested,
			UnitDelay:  strat.UnitDelay(),
			Time:       time.Now().UTC(),
		})
		if m.bus != nil {
			m.bus.Publish(UnitDispatchedEvent{
				UnitID:     unit.ID,
				LocationID: unit.LocationID,
				Strategy:   strat.Name(),
				CallerRole: callerRole,
				Time:       time.Now().UTC(),
			})
		}
	}
	m.finish(strat, callerRole, requested, dispatched, events, start)
	return dispatched, nil
}

// waitUnitDelay blocks for the strategy's per-unit delay without halting the
// scheduler: a timer select, not a sleep, so cancellation wins immediately.
func (m *Manager) waitUnitDelay(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (m *Manager) releaseRest(units []model.StoredUnit) {
	// Claims are released on a fresh context: the caller's one is already
	// cancelled.
	ctx := context.Background()
	for _, u := range units {
		if err := m.store.Release(ctx, u.ID); err != nil {
			m.log.Warnf("release claim %s: %v", u.ID, err)
		}
	}
}

func (m *Manager) finish(strat Strategy, role string, requested int, dispatched []model.StoredUnit, events []metrics.DispatchEvent, start time.Time) {
	elapsed := time.Since(start)
	if len(events) > 0 {
		if err := m.sink.RecordDispatch(events); err != nil {
			m.log.Warnf("record dispatch metrics: %v", err)
		}
	}
	if m.journal != nil {
		rec := NewJournalRecord(strat.Name(), role, requested, dispatched, elapsed)
		if err := m.journal.Append(context.Background(), rec); err != nil {
			m.log.Warnf("append dispatch journal: %v", err)
		}
	}
	if m.bus != nil {
		m.bus.Publish(DispatchCompletedEvent{
			Strategy:   strat.Name(),
			CallerRole: role,
			Requested:  requested,
			Dispatched: len(dispatched),
			Elapsed:    elapsed,
			Time:       time.Now().UTC(),
		})
	}
	m.log.Debugw("dispatch completed", map[string]any{
		"strategy":   strat.Name(),
		"requested":  requested,
		"dispatched": len(dispatched),
		"elapsed":    elapsed.String(),
	})
}
