package dispatch

import "time"

// UnitDispatchedEvent is published on the event bus for every committed unit.
type UnitDispatchedEvent struct {
	UnitID     string
	LocationID string
	Strategy   string
	CallerRole string
	Time       time.Time
}

// DispatchCompletedEvent is published once per dispatch call.
type DispatchCompletedEvent struct {
	Strategy   string
	CallerRole string
	Requested  int
	Dispatched int
	Elapsed    time.Duration
	Time       time.Time
}
