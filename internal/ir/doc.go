// Package ir provides the shared value types of pulsesim: amplitudes,
// module kinds, and the records the store and harness exchange.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Logical clocks (press, seq) only, never wall-clock timestamps
//   - All JSON tags use snake_case
//   - Content hashes are computed over canonical JSON (see canonical.go)
package ir
