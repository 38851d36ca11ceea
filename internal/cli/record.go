package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/network"
	"github.com/roach88/pulsesim/internal/store"
)

// RecordOptions holds the run-log flags shared by press and solve.
type RecordOptions struct {
	Database string
	Trace    bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

func (o *RecordOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "record the run in this SQLite run log")
	cmd.Flags().BoolVar(&o.Trace, "trace", false, "also record every pulse (requires --db)")
}

func (o *RecordOptions) generator() engine.RunIDGenerator {
	if o.RunIDs != nil {
		return o.RunIDs
	}
	return engine.UUIDv7Generator{}
}

// recording writes one simulator run to the log. It is an Observer so the
// pulse trace streams into the store as the simulator delivers it.
type recording struct {
	ctx    context.Context
	st     *store.Store
	graph  *network.Graph
	run    ir.RunRecord
	writer *store.RunWriter // nil without --trace
	err    error            // First WritePulse failure
}

// startRecording opens the log and, with --trace, begins a streamed run.
// Returns nil when no --db was given.
func startRecording(ctx context.Context, opts *RecordOptions, g *network.Graph) (*recording, error) {
	if opts.Database == "" {
		if opts.Trace {
			return nil, NewExitError(ExitCommandError, "--trace requires --db")
		}
		return nil, nil
	}

	graphHash, err := g.Hash()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}

	r := &recording{
		ctx:   ctx,
		st:    st,
		graph: g,
		run: ir.RunRecord{
			ID:        opts.generator().Generate(),
			GraphHash: graphHash,
			Network:   g.Text(),
		},
	}
	if opts.Trace {
		if r.writer, err = st.BeginRun(ctx, r.run); err != nil {
			st.Close()
			return nil, err
		}
	}
	slog.Debug("recording run", "id", r.run.ID, "db", opts.Database, "trace", opts.Trace)
	return r, nil
}

// ObservePulse implements engine.Observer.
func (r *recording) ObservePulse(ev engine.PulseEvent) {
	if r.writer == nil || r.err != nil {
		return
	}
	r.err = r.writer.WritePulse(ev.Record(r.graph))
}

// observers returns the simulator options that feed this recording.
func (r *recording) observers() []engine.Option {
	if r == nil || r.writer == nil {
		return nil
	}
	return []engine.Option{engine.WithObserver(r)}
}

// finish stores the outcome of a bounded run, or discards the run if
// simErr is set.
func (r *recording) finish(presses int64, totals engine.Counts, state ir.StateSnapshot, simErr error) error {
	if r == nil {
		return nil
	}
	if simErr != nil || r.err != nil {
		if r.writer != nil {
			if err := r.writer.Abort(); err != nil {
				slog.Error("abort run", "id", r.run.ID, "error", err)
			}
			r.writer = nil
		}
		if simErr != nil {
			return nil
		}
		return fmt.Errorf("record pulse trace: %w", r.err)
	}

	stateHash, err := ir.StateHash(state)
	if err != nil {
		return err
	}
	r.run.Presses = presses
	r.run.Low = totals.Low
	r.run.High = totals.High
	r.run.StateHash = stateHash

	if r.writer != nil {
		err = r.writer.Finish(r.run)
		r.writer = nil
	} else {
		err = r.st.WriteRun(r.ctx, r.run)
	}
	if err != nil {
		return err
	}
	slog.Info("run recorded", "id", r.run.ID, "presses", r.run.Presses)
	return nil
}

// firstHighs stores the periods of a completed cycle search against the run.
func (r *recording) firstHighs(report *engine.CycleReport) error {
	if r == nil || report == nil {
		return nil
	}
	records := make([]ir.FirstHighRecord, len(report.Periods))
	for i, p := range report.Periods {
		records[i] = ir.FirstHighRecord{
			RunID:  r.run.ID,
			Target: report.Target,
			Feeder: report.Feeder,
			Input:  p.Input,
			Press:  p.Press,
		}
	}
	return r.st.WriteFirstHighs(r.ctx, records)
}

func (r *recording) close() {
	if r == nil {
		return
	}
	if r.writer != nil {
		_ = r.writer.Abort()
	}
	if err := r.st.Close(); err != nil {
		slog.Error("error closing run log", "error", err)
	}
}

// runID returns the recorded run's ID, or "" without --db.
func (r *recording) runID() string {
	if r == nil {
		return ""
	}
	return r.run.ID
}
