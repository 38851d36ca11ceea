package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/network"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // treat warnings as failures
}

// ValidationResult is the JSON payload of validate.
type ValidationResult struct {
	Valid    bool                        `json:"valid"`
	Modules  int                         `json:"modules"`
	Warnings []network.ValidationWarning `json:"warnings,omitempty"`
	Error    *network.ParseError         `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <network-file>",
		Short: "Parse a network and report structural warnings",
		Long: `Parse a network file without simulating it.

A malformed line is an error. Structural oddities that still simulate
(no broadcaster, undefined destinations, conjunctions nobody feeds, ...)
are reported as warnings.

Exit codes:
  0 - Network parses (and has no warnings under --strict)
  1 - Warnings under --strict
  2 - Malformed network or missing file`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when there are warnings")
	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	g, err := LoadNetwork(path)
	if err != nil {
		var parseErr *network.ParseError
		if errors.As(err, &parseErr) {
			return outputParseError(f, parseErr, err)
		}
		return f.Fail("load network", err)
	}

	warnings := network.Validate(g)
	result := ValidationResult{
		Valid:    !opts.Strict || len(warnings) == 0,
		Modules:  len(g.Modules()),
		Warnings: warnings,
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		for _, w := range warnings {
			fmt.Fprintf(f.Writer, "warning: %s\n", w)
		}
		if result.Valid {
			fmt.Fprintf(f.Writer, "✓ %d modules, %d warning(s)\n", result.Modules, len(warnings))
		} else {
			fmt.Fprintf(f.Writer, "✗ %d warning(s) under --strict\n", len(warnings))
		}
	}

	if !result.Valid {
		return &ExitError{
			Code:     ExitFailure,
			Message:  fmt.Sprintf("validation failed with %d warning(s)", len(warnings)),
			Reported: true,
		}
	}
	return nil
}

// outputParseError reports a malformed line with its position.
func outputParseError(f *OutputFormatter, parseErr *network.ParseError, err error) error {
	if f.JSON() {
		_ = f.Error(ErrCodeParse, err.Error(), ValidationResult{Valid: false, Error: parseErr})
	} else {
		fmt.Fprintln(f.Writer, "✗ Validation failed")
		fmt.Fprintln(f.Writer)
		fmt.Fprintf(f.Writer, "line %d\n", parseErr.Line)
		fmt.Fprintf(f.Writer, "  %s: %s\n", ErrCodeParse, parseErr.Message)
		fmt.Fprintf(f.Writer, "  %s\n", parseErr.Text)
	}
	return &ExitError{Code: ExitCommandError, Message: "malformed network", Err: err, Reported: true}
}
