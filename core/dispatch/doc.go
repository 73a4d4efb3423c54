// Package dispatch implements the core logic for draining stored units from
// warehouse inventory under two fixed dispatch policies.
//
// A dispatch request carries a requested count and the caller's role. The
// Selector resolves the role to one of two strategies:
//   - BatchDispatch: up to 3 units per call, 500ms processing delay per unit.
//   - SingleDispatch: exactly 1 unit per call, 2.5s processing delay per unit.
//
// The Manager executes the resolved strategy against the inventory store
// using a claim-then-process-then-commit sequence: units are atomically
// claimed before the per-unit delay and committed after it, so concurrent
// dispatches never drain the same unit and each unit is dispatched exactly
// once.
//
// Dispatch flow:
//  1. Resolve the strategy from the caller role
//  2. Claim up to the effective count of undispatched units (FIFO)
//  3. Apply the per-unit delay, commit the dispatched flag
//  4. Record metrics, publish bus events, append to the journal
//
// Fewer units than requested is a normal outcome; an empty store yields an
// empty result without error. Cancellation releases unprocessed claims and
// never rolls back committed units.
package dispatch
