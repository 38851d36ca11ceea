package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// SimOptions holds the simulation flags shared by solve, press and cycles.
// Each overrides the matching run.cue field when set explicitly.
type SimOptions struct {
	Presses   int
	Target    string
	Horizon   int64
	MaxPulses int64
}

// apply overrides cfg with explicitly set flags. Counts must be positive,
// matching the run.cue constraints.
func (o *SimOptions) apply(cmd *cobra.Command, cfg *RunConfig) error {
	flags := cmd.Flags()
	if flags.Changed("presses") {
		if o.Presses <= 0 {
			return &LoadError{Code: ErrCodeConfigInvalid, Message: fmt.Sprintf("--presses must be > 0, got %d", o.Presses)}
		}
		cfg.Presses = o.Presses
	}
	if flags.Changed("target") {
		cfg.Target = o.Target
	}
	if flags.Changed("horizon") {
		if o.Horizon <= 0 {
			return &LoadError{Code: ErrCodeConfigInvalid, Message: fmt.Sprintf("--horizon must be > 0, got %d", o.Horizon)}
		}
		cfg.Horizon = o.Horizon
	}
	if flags.Changed("max-pulses") {
		if o.MaxPulses <= 0 {
			return &LoadError{Code: ErrCodeConfigInvalid, Message: fmt.Sprintf("--max-pulses must be > 0, got %d", o.MaxPulses)}
		}
		cfg.MaxPulsesPerPress = o.MaxPulses
	}
	return nil
}

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	SimOptions
	RecordOptions
}

// SolveOutput is the JSON payload of solve.
type SolveOutput struct {
	Part1   int64               `json:"part1"`
	Part2   uint64              `json:"part2,omitempty"`
	Low     int64               `json:"low"`
	High    int64               `json:"high"`
	Presses int                 `json:"presses"`
	Cycles  *engine.CycleReport `json:"cycles,omitempty"`
	RunID   string              `json:"run_id,omitempty"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <network-file | run.cue>",
		Short: "Answer both questions for a network",
		Long: `Answer both questions for a network.

Part 1 is Low × High after the configured number of presses (default 1000).
Part 2 is the number of presses until the target (default rx) first
receives a Low pulse, extrapolated from the periods of the conjunction
feeding it. Pass --target "" to skip part 2.

Exit codes:
  0 - Both parts answered
  1 - Part 2 unsolvable, or a press exceeded the pulse quota
  2 - Command error (missing file, malformed network, bad config)

Examples:
  pulsesim solve input.txt
  pulsesim solve run.cue --presses 10
  pulsesim solve input.txt --db runs.db --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	addSimFlags(cmd, &opts.SimOptions, true)
	opts.RecordOptions.addFlags(cmd)
	return cmd
}

func addSimFlags(cmd *cobra.Command, o *SimOptions, withTarget bool) {
	cmd.Flags().IntVarP(&o.Presses, "presses", "n", engine.DefaultPresses, "button presses")
	cmd.Flags().Int64Var(&o.MaxPulses, "max-pulses", engine.DefaultMaxPulsesPerPress, "per-press pulse quota")
	if withTarget {
		cmd.Flags().StringVar(&o.Target, "target", "rx", "module whose first Low pulse is extrapolated")
		cmd.Flags().Int64Var(&o.Horizon, "horizon", engine.DefaultHorizon, "press bound for the cycle search")
	}
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		return f.Fail("load network", err)
	}
	if err := opts.SimOptions.apply(cmd, cfg); err != nil {
		return f.Fail("flags", err)
	}
	f.VerboseLog("Loaded %d modules from %s", cfg.Graph.Len(), cfg.NetworkPath)

	rec, err := startRecording(ctx, &opts.RecordOptions, cfg.Graph)
	if err != nil {
		return f.Fail("open run log", err)
	}
	defer rec.close()

	sol, solveErr := engine.Solve(cfg.Graph, engine.SolveConfig{
		Presses:        cfg.Presses,
		Target:         cfg.Target,
		Horizon:        cfg.Horizon,
		Options:        cfg.Options(),
		BoundedOptions: rec.observers(),
	})
	if sol == nil {
		_ = rec.finish(0, engine.Counts{}, ir.StateSnapshot{}, solveErr)
		return f.Fail("solve", solveErr)
	}
	if err := rec.finish(int64(sol.Presses), sol.Counts, sol.State, nil); err != nil {
		return f.Fail("record run", err)
	}
	if err := rec.firstHighs(sol.Cycles); err != nil {
		return f.Fail("record run", err)
	}

	out := SolveOutput{
		Part1:   sol.Part1,
		Part2:   sol.Part2,
		Low:     sol.Counts.Low,
		High:    sol.Counts.High,
		Presses: sol.Presses,
		Cycles:  sol.Cycles,
		RunID:   rec.runID(),
	}
	if solveErr != nil {
		// Part 1 stands even when the target cannot be extrapolated.
		if !f.JSON() {
			fmt.Fprintf(f.Writer, "Part 1: %d\n", out.Part1)
		}
		return f.Fail("solve", solveErr)
	}

	if f.JSON() {
		return f.Success(out)
	}
	fmt.Fprintf(f.Writer, "Part 1: %d\n", out.Part1)
	if cfg.Target != "" {
		fmt.Fprintf(f.Writer, "Part 2: %d\n", out.Part2)
	}
	if out.RunID != "" {
		f.VerboseLog("Recorded run %s", out.RunID)
	}
	return nil
}

// commandContext returns the command's context, or Background outside
// cobra's Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
