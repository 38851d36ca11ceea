package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string
	Press    int64 // 0 = all presses
}

// TraceResult is the JSON payload of trace.
type TraceResult struct {
	Run        ir.RunRecord         `json:"run"`
	Pulses     []ir.PulseRecord     `json:"pulses"`
	FirstHighs []ir.FirstHighRecord `json:"first_highs,omitempty"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Print a recorded run",
		Long: `Print a run recorded with --db: its totals, the stored pulse trace
(when it was recorded with --trace) and any cycle-search results.
Without --run, lists the recorded runs.

Examples:
  pulsesim trace --db runs.db
  pulsesim trace --db runs.db --run 0190... --press 1
  pulsesim trace --db runs.db --run 0190... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to print (default: list runs)")
	cmd.Flags().Int64Var(&opts.Press, "press", 0, "only print pulses of this press")
	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := commandContext(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail("open run log", err)
	}
	defer st.Close()

	if opts.RunID == "" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return f.Fail("list runs", err)
		}
		if f.JSON() {
			return f.Success(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(f.Writer, "No runs recorded.")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(f.Writer, "%s  presses=%d low=%d high=%d product=%d\n", r.ID, r.Presses, r.Low, r.High, r.Product())
		}
		return nil
	}

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		return f.Fail("read run", err)
	}
	pulses, err := st.ReadPulses(ctx, opts.RunID, opts.Press)
	if err != nil {
		return f.Fail("read pulses", err)
	}
	highs, err := st.ReadFirstHighs(ctx, opts.RunID)
	if err != nil {
		return f.Fail("read first highs", err)
	}

	if f.JSON() {
		return f.Success(TraceResult{Run: run, Pulses: pulses, FirstHighs: highs})
	}

	fmt.Fprintf(f.Writer, "Run %s\n", run.ID)
	fmt.Fprintf(f.Writer, "  presses=%d low=%d high=%d product=%d\n", run.Presses, run.Low, run.High, run.Product())
	fmt.Fprintf(f.Writer, "  graph=%s\n  state=%s\n", run.GraphHash, run.StateHash)

	if len(pulses) > 0 {
		fmt.Fprintln(f.Writer)
		press := int64(0)
		for _, p := range pulses {
			if p.Press != press {
				press = p.Press
				fmt.Fprintf(f.Writer, "press %d\n", press)
			}
			fmt.Fprintf(f.Writer, "  [%d] %s -%s-> %s\n", p.Seq, p.Source, p.Amplitude, p.Destination)
		}
	}
	if len(highs) > 0 {
		fmt.Fprintln(f.Writer)
		for _, h := range highs {
			fmt.Fprintf(f.Writer, "first high %s -> &%s (target %s): press %d\n", h.Input, h.Feeder, h.Target, h.Press)
		}
	}
	return nil
}
