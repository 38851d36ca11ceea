package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// WriteRun inserts a finished run record without a pulse trace.
// Returns an error if a run with the same ID already exists.
func (s *Store) WriteRun(ctx context.Context, run ir.RunRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := insertRun(ctx, tx, run); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := finishRun(ctx, tx, run); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// insertRun adds the run row with seq = max(seq)+1 inside tx.
func insertRun(ctx context.Context, tx *sql.Tx, run ir.RunRecord) error {
	engineVersion := run.EngineVersion
	if engineVersion == "" {
		engineVersion = ir.EngineVersion
	}
	recordVersion := run.RecordVersion
	if recordVersion == "" {
		recordVersion = ir.RecordVersion
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, seq, graph_hash, network, engine_version, record_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?)
	`, run.ID, run.GraphHash, run.Network, engineVersion, recordVersion)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// finishRun stores totals and marks the run finished.
func finishRun(ctx context.Context, tx *sql.Tx, run ir.RunRecord) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE runs
		SET presses = ?, low = ?, high = ?, state_hash = ?, finished = 1
		WHERE id = ? AND finished = 0
	`, run.Presses, run.Low, run.High, run.StateHash, run.ID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	if n != 1 {
		return fmt.Errorf("finish run %s: run missing or already finished", run.ID)
	}
	return nil
}

// RunWriter streams a pulse trace for one run inside a single transaction.
// Nothing is visible to readers until Finish commits.
//
// Not thread-safe: feed it from the simulator's goroutine.
type RunWriter struct {
	ctx   context.Context
	tx    *sql.Tx
	stmt  *sql.Stmt
	runID string
	count int64
}

// BeginRun inserts an unfinished run row and prepares for pulse writes.
// Only ID, GraphHash and Network of run are used here; totals are supplied
// to Finish.
func (s *Store) BeginRun(ctx context.Context, run ir.RunRecord) (*RunWriter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}
	if err := insertRun(ctx, tx, run); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("begin run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pulses (run_id, seq, press, source, destination, amplitude)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("begin run: prepare: %w", err)
	}
	return &RunWriter{ctx: ctx, tx: tx, stmt: stmt, runID: run.ID}, nil
}

// WritePulse appends one pulse to the trace.
func (w *RunWriter) WritePulse(p ir.PulseRecord) error {
	_, err := w.stmt.ExecContext(w.ctx, w.runID, p.Seq, p.Press, p.Source, p.Destination, p.Amplitude.String())
	if err != nil {
		return fmt.Errorf("write pulse %d: %w", p.Seq, err)
	}
	w.count++
	return nil
}

// Count returns the number of pulses written so far.
func (w *RunWriter) Count() int64 {
	return w.count
}

// Finish stores the run totals and commits the trace.
func (w *RunWriter) Finish(run ir.RunRecord) error {
	defer w.stmt.Close()
	run.ID = w.runID
	if err := finishRun(w.ctx, w.tx, run); err != nil {
		w.tx.Rollback()
		return err
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("finish run %s: commit: %w", w.runID, err)
	}
	return nil
}

// Abort discards the run and its trace.
func (w *RunWriter) Abort() error {
	w.stmt.Close()
	if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("abort run %s: %w", w.runID, err)
	}
	return nil
}

// WriteFirstHighs records the per-input results of a cycle search.
// The referenced run must exist (foreign key constraint).
func (s *Store) WriteFirstHighs(ctx context.Context, records []ir.FirstHighRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write first highs: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, r := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO first_highs (run_id, target, feeder, input, press)
			VALUES (?, ?, ?, ?, ?)
		`, r.RunID, r.Target, r.Feeder, r.Input, r.Press)
		if err != nil {
			return fmt.Errorf("write first high %s/%s: %w", r.RunID, r.Input, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write first highs: commit: %w", err)
	}
	return nil
}
