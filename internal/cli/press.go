package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// PressOptions holds flags for the press command.
type PressOptions struct {
	*RootOptions
	SimOptions
	RecordOptions
	Broadcaster string
}

// PressOutput is the JSON payload of press.
type PressOutput struct {
	Presses   int64  `json:"presses"`
	Low       int64  `json:"low"`
	High      int64  `json:"high"`
	Product   int64  `json:"product"`
	StateHash string `json:"state_hash"`
	RunID     string `json:"run_id,omitempty"`
}

// NewPressCommand creates the press command.
func NewPressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PressOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "press <network-file | run.cue>",
		Short: "Press the button N times and report pulse totals",
		Long: `Press the button N times on a fresh network and report how many low
and high pulses were delivered, their product, and a fingerprint of the
final module state.

Examples:
  pulsesim press input.txt -n 4
  pulsesim press input.txt -n 1000 --db runs.db --trace`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPress(opts, args[0], cmd)
		},
	}

	addSimFlags(cmd, &opts.SimOptions, false)
	opts.RecordOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Broadcaster, "broadcaster", "", "module that receives the button pulse (default: first broadcaster)")
	return cmd
}

func runPress(opts *PressOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		return f.Fail("load network", err)
	}
	if err := opts.SimOptions.apply(cmd, cfg); err != nil {
		return f.Fail("flags", err)
	}

	rec, err := startRecording(commandContext(cmd), &opts.RecordOptions, cfg.Graph)
	if err != nil {
		return f.Fail("open run log", err)
	}
	defer rec.close()

	simOpts := append(cfg.Options(), rec.observers()...)
	if opts.Broadcaster != "" {
		simOpts = append(simOpts, engine.WithBroadcaster(opts.Broadcaster))
	}
	sim, err := engine.New(cfg.Graph, simOpts...)
	if err != nil {
		return f.Fail("create simulator", err)
	}

	_, runErr := sim.Run(cfg.Presses)
	snap := sim.Snapshot()
	if err := rec.finish(sim.Presses(), sim.Totals(), snap, runErr); err != nil {
		return f.Fail("record run", err)
	}
	if runErr != nil {
		return f.Fail("press", runErr)
	}

	stateHash, err := ir.StateHash(snap)
	if err != nil {
		return f.Fail("fingerprint state", err)
	}
	totals := sim.Totals()
	out := PressOutput{
		Presses:   sim.Presses(),
		Low:       totals.Low,
		High:      totals.High,
		Product:   totals.Product(),
		StateHash: stateHash,
		RunID:     rec.runID(),
	}

	if f.JSON() {
		return f.Success(out)
	}
	fmt.Fprintf(f.Writer, "Presses: %d\n", out.Presses)
	fmt.Fprintf(f.Writer, "Low:     %d\n", out.Low)
	fmt.Fprintf(f.Writer, "High:    %d\n", out.High)
	fmt.Fprintf(f.Writer, "Product: %d\n", out.Product)
	fmt.Fprintf(f.Writer, "State:   %s\n", out.StateHash)
	if out.RunID != "" {
		fmt.Fprintf(f.Writer, "Run:     %s\n", out.RunID)
	}
	return nil
}
