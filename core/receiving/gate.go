// Package receiving admits new units into storage locations and enforces the
// capacity invariant: undispatched units in a location never exceed its
// declared maximum.
package receiving

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/logger"
	"github.com/ombralis/packdispatch/core/metrics"
	"github.com/ombralis/packdispatch/core/model"
)

// Gate validates and admits units. The capacity check and the insertion run as
// one atomic store call, so two racing receives cannot jointly exceed the
// ceiling.
type Gate struct {
	store inventory.Store
	log   logger.Logger
	sink  metrics.MetricsSink
	// enforceForPrivileged controls whether the batch-dispatch receive path
	// also checks capacity. Defaults to false, preserving the asymmetry where
	// trusted high-volume operators bypass the limit.
	enforceForPrivileged bool
}

// NewGate wires a Gate. sink may be nil.
func NewGate(store inventory.Store, log logger.Logger, sink metrics.MetricsSink, enforceForPrivileged bool) *Gate {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Gate{store: store, log: log, sink: sink, enforceForPrivileged: enforceForPrivileged}
}

// Receive creates a new undispatched unit in the location. privileged marks
// the caller as resolving to the batch policy; unless configured otherwise,
// that path skips the capacity check. A full location yields
// *inventory.CapacityExceededError, an unknown one inventory.ErrLocationNotFound.
func (g *Gate) Receive(ctx context.Context, locationID string, payload json.RawMessage, privileged bool) (model.StoredUnit, error) {
	if _, err := g.store.GetLocation(ctx, locationID); err != nil {
		return model.StoredUnit{}, err
	}
	enforce := !privileged || g.enforceForPrivileged
	unit := model.NewStoredUnit(locationID, payload)
	if err := g.store.Insert(ctx, unit, enforce); err != nil {
		g.record(locationID, false, enforce)
		return model.StoredUnit{}, err
	}
	g.record(locationID, true, enforce)
	g.log.Debugw("unit received", map[string]any{
		"unit_id":  unit.ID,
		"location": locationID,
		"enforced": enforce,
	})
	return unit, nil
}

func (g *Gate) record(locationID string, accepted, enforced bool) {
	ev := metrics.ReceiveEvent{LocationID: locationID, Accepted: accepted, Enforced: enforced, Time: time.Now().UTC()}
	if err := g.sink.RecordReceive(ev); err != nil {
		g.log.Warnf("record receive metrics: %v", err)
	}
}
