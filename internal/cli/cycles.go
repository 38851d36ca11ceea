package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
)

// CyclesOptions holds flags for the cycles command.
type CyclesOptions struct {
	*RootOptions
	SimOptions
}

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CyclesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cycles <network-file | run.cue>",
		Short: "Show the cycle search behind part 2",
		Long: `Locate the conjunction feeding the target, report the press in which
each of its inputs first sent it a high pulse, and the LCM of those presses.

The LCM is only the answer if every input is an independent counter that
fires exactly on multiples of its first press. That holds for the networks
the puzzle generates; it is not checked.

Examples:
  pulsesim cycles input.txt
  pulsesim cycles input.txt --target rx --horizon 20000`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycles(opts, args[0], cmd)
		},
	}

	addSimFlags(cmd, &opts.SimOptions, true)
	return cmd
}

func runCycles(opts *CyclesOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		return f.Fail("load network", err)
	}
	if err := opts.SimOptions.apply(cmd, cfg); err != nil {
		return f.Fail("flags", err)
	}
	if cfg.Target == "" {
		return f.Fail("cycles", NewExitError(ExitCommandError, "--target must not be empty"))
	}

	sim, err := engine.New(cfg.Graph, cfg.Options()...)
	if err != nil {
		return f.Fail("create simulator", err)
	}
	report, err := engine.Extrapolate(sim, cfg.Target, cfg.Horizon)
	if err != nil {
		return f.Fail("cycle search", err)
	}

	if f.JSON() {
		return f.Success(report)
	}

	fmt.Fprintf(f.Writer, "Target: %s (fed by &%s)\n\n", report.Target, report.Feeder)
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INPUT\tFIRST HIGH")
	for _, p := range report.Periods {
		fmt.Fprintf(tw, "%s\t%d\n", p.Input, p.Press)
	}
	tw.Flush()
	fmt.Fprintf(f.Writer, "\nLCM: %d (after %d presses)\n", report.Answer, report.Presses)
	return nil
}
