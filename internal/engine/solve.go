package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
)

// SolveConfig parameterises Solve.
type SolveConfig struct {
	Presses int    // Presses for the bounded question (default 1000)
	Target  string // Target of the unbounded question; empty skips it
	Horizon int64  // Safety horizon for the cycle search (default 100 000)

	// Options are applied to both simulators (e.g. WithMaxPulsesPerPress).
	Options []Option

	// BoundedOptions are applied to the bounded run only, e.g. an
	// observer that records its trace.
	BoundedOptions []Option
}

// Solution holds both answers.
type Solution struct {
	Counts  Counts       `json:"counts"`
	Part1   int64        `json:"part1"`
	Part2   uint64       `json:"part2,omitempty"`
	Cycles  *CycleReport `json:"cycles,omitempty"`
	Presses int          `json:"presses"`

	// State is the module state after the bounded run.
	State ir.StateSnapshot `json:"-"`
}

// Solve answers the bounded question (Low × High after cfg.Presses) and,
// when cfg.Target is set, the unbounded one via Extrapolate. Each question
// runs on its own fresh simulator.
func Solve(g *network.Graph, cfg SolveConfig) (*Solution, error) {
	if cfg.Presses <= 0 {
		cfg.Presses = DefaultPresses
	}

	opts := append(slices.Clone(cfg.Options), cfg.BoundedOptions...)
	sim, err := New(g, opts...)
	if err != nil {
		return nil, err
	}
	counts, err := sim.Run(cfg.Presses)
	if err != nil {
		return nil, fmt.Errorf("part 1: %w", err)
	}

	sol := &Solution{
		Counts:  counts,
		Part1:   counts.Product(),
		Presses: cfg.Presses,
		State:   sim.Snapshot(),
	}
	if cfg.Target == "" {
		return sol, nil
	}

	fresh, err := New(g, cfg.Options...)
	if err != nil {
		return nil, err
	}
	report, err := Extrapolate(fresh, cfg.Target, cfg.Horizon)
	if err != nil {
		return sol, fmt.Errorf("part 2: %w", err)
	}
	sol.Cycles = report
	sol.Part2 = report.Answer
	return sol, nil
}
