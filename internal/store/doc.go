// Package store provides a SQLite-backed run log for pulsesim.
//
// The log records what a simulation did, for inspection and replay
// verification:
//   - Runs: graph hash, network text, press count, totals, state hash
//   - Pulses: optional per-pulse trace, keyed by (run, seq)
//   - First highs: per-input results of a cycle search
//
// Simulator state is never loaded back from the log; a replay re-simulates
// from the stored network text and compares results.
//
// # Ordering
//
// All queries order by logical seq (ORDER BY seq ASC), never by wall time,
// so reads are identical across machines.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
