// Package engine implements the pulse-propagation simulator.
//
// ARCHITECTURE:
//
// Single-Writer Press Loop:
// A Simulator owns its module state and its pulse queue exclusively and
// processes every pulse on the calling goroutine. Nothing is shared, so
// nothing is locked.
//
// Press Flow:
//  1. Press() enqueues one synthetic Low pulse button -> broadcaster
//  2. The front pulse is dequeued and tallied (Low or High)
//  3. Pulses to undefined modules stop here (counted, then absorbed)
//  4. The destination's transition rule runs against its state
//  5. Every emitted pulse is appended to the BACK of the queue
//  6. The press ends at quiescence (empty queue)
//
// Appending to the back is load-bearing: all pulses produced by one event
// reach their targets before any of those targets' own emissions are
// processed, which keeps a conjunction's "all inputs High" check well
// defined within a press.
//
// Determinism:
// Queue order is a pure function of emission order, which is fixed by the
// static destination-list order. The same graph pressed the same number of
// times yields identical totals and an identical state snapshot.
//
// State is never reset between presses. A fresh Simulator is the only way
// to start over.
package engine
