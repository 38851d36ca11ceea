// Package harness runs YAML scenarios against the pulse simulator.
//
// # Scenario Format
//
//	name: two_inverters
//	description: "What this scenario checks"
//	network: |
//	  broadcaster -> a
//	  %a -> inv, con
//	  &inv -> b
//	  %b -> con
//	  &con -> output
//	presses: 1000          # default 1000
//	trace_presses: 1       # presses captured in Result.Trace, default 1
//	target: rx             # optional, enables the cycle search
//	horizon: 100000        # optional cycle-search bound
//	assertions:
//	  - type: pulse_counts
//	    low: 4250
//	    high: 2750
//	  - type: product
//	    value: 11687500
//
// network_file may replace network; the path is relative to the scenario
// file.
//
// # Assertion Types
//
//   - pulse_counts: totals after all presses
//   - product: Low × High after all presses
//   - trace_order: destinations receive pulses in the listed order during
//     one press (intervening pulses allowed)
//   - final_state: flip-flop bits and conjunction memory after all presses
//   - first_high: the first-High press of one feeder input
//   - answer: the extrapolated press count for target
//   - unsolvable: the cycle search fails with the given error code
//
// # Determinism
//
// Scenarios run on a fresh simulator and compare logical sequence numbers
// only, so traces are byte-identical across runs and suitable for golden
// files (see RunWithGolden).
package harness
