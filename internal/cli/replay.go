package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
	"github.com/roach88/pulsesim/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID         string   `json:"run_id"`
	Presses       int64    `json:"presses"`
	Deterministic bool     `json:"deterministic"`
	Mismatches    []string `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-simulate recorded runs and verify determinism",
		Long: `Re-simulate recorded runs from their stored network text and press
count, and check that graph hash, pulse totals and final state hash all
match the log. With a stored trace, every pulse is compared too.

Exit codes:
  0 - All runs reproduced exactly
  1 - At least one run differs
  2 - Command error (database not found, unknown run, etc.)

Examples:
  pulsesim replay --db runs.db
  pulsesim replay --db runs.db --run 0190...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")
	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail("open run log", err)
	}
	defer st.Close()

	var runs []ir.RunRecord
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return f.Fail("read run", err)
		}
		runs = []ir.RunRecord{run}
	} else if runs, err = st.ListRuns(ctx); err != nil {
		return f.Fail("list runs", err)
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:        len(runs),
		AllDeterministic: true,
	}
	for _, run := range runs {
		rr, err := replayRun(ctx, st, run)
		if err != nil {
			return f.Fail(fmt.Sprintf("replay run %s", run.ID), err)
		}
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, rr)
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(f, result)
	}

	if !result.AllDeterministic {
		return &ExitError{Code: ExitFailure, Message: "replay differs from the run log", Reported: true}
	}
	return nil
}

// replayRun re-simulates one run and lists every difference from the log.
func replayRun(ctx context.Context, st *store.Store, run ir.RunRecord) (ReplayRunResult, error) {
	rr := ReplayRunResult{RunID: run.ID, Presses: run.Presses}

	g, err := network.Parse(run.Network)
	if err != nil {
		return rr, err
	}
	stored, err := st.ReadPulses(ctx, run.ID, 0)
	if err != nil {
		return rr, err
	}

	mismatch := func(format string, args ...any) {
		rr.Mismatches = append(rr.Mismatches, fmt.Sprintf(format, args...))
	}

	var opts []engine.Option
	i := 0 // Next stored pulse to compare
	if len(stored) > 0 {
		opts = append(opts, engine.WithObserver(engine.ObserverFunc(func(ev engine.PulseEvent) {
			got := ev.Record(g)
			switch {
			case i >= len(stored):
				if i == len(stored) {
					mismatch("trace: extra pulse at seq %d", got.Seq)
				}
			case got != stored[i]:
				if len(rr.Mismatches) < 10 {
					mismatch("trace seq %d: got %s -%s-> %s, logged %s -%s-> %s",
						got.Seq, got.Source, got.Amplitude, got.Destination,
						stored[i].Source, stored[i].Amplitude, stored[i].Destination)
				}
			}
			i++
		})))
	}

	sim, err := engine.New(g, opts...)
	if err != nil {
		return rr, err
	}
	if _, err := sim.Run(int(run.Presses)); err != nil {
		return rr, err
	}

	graphHash, err := g.Hash()
	if err != nil {
		return rr, err
	}
	stateHash, err := ir.StateHash(sim.Snapshot())
	if err != nil {
		return rr, err
	}
	totals := sim.Totals()

	if i < len(stored) {
		mismatch("trace: %d logged pulse(s) not replayed", len(stored)-i)
	}
	if graphHash != run.GraphHash {
		mismatch("graph hash %s, logged %s", graphHash, run.GraphHash)
	}
	if totals.Low != run.Low || totals.High != run.High {
		mismatch("totals low=%d high=%d, logged low=%d high=%d", totals.Low, totals.High, run.Low, run.High)
	}
	if stateHash != run.StateHash {
		mismatch("state hash %s, logged %s", stateHash, run.StateHash)
	}

	rr.Deterministic = len(rr.Mismatches) == 0
	return rr, nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	if result.TotalRuns == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return
	}
	for _, r := range result.Runs {
		if r.Deterministic {
			fmt.Fprintf(f.Writer, "✓ %s (%d presses)\n", r.RunID, r.Presses)
			continue
		}
		fmt.Fprintf(f.Writer, "✗ %s\n", r.RunID)
		for _, m := range r.Mismatches {
			fmt.Fprintf(f.Writer, "  %s\n", m)
		}
	}
	if result.AllDeterministic {
		fmt.Fprintf(f.Writer, "\nAll %d run(s) deterministic\n", result.TotalRuns)
	} else {
		fmt.Fprintln(f.Writer, "\nReplay differs from the run log")
	}
}
