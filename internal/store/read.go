package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// ErrRunNotFound is returned when no finished run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// ReadRun returns the finished run with the given ID.
// Unfinished (aborted or in-flight) runs are invisible.
func (s *Store) ReadRun(ctx context.Context, id string) (ir.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, graph_hash, network, presses, low, high, state_hash, engine_version, record_version
		FROM runs
		WHERE id = ? AND finished = 1
	`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return ir.RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every finished run in insertion order.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) ListRuns(ctx context.Context) ([]ir.RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, graph_hash, network, presses, low, high, state_hash, engine_version, record_version
		FROM runs
		WHERE finished = 1
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []ir.RunRecord{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadPulses returns the stored trace of a run ordered by seq.
// press > 0 restricts the result to that press.
//
// Returns an empty slice (not nil) if the run has no stored trace.
func (s *Store) ReadPulses(ctx context.Context, runID string, press int64) ([]ir.PulseRecord, error) {
	query := `
		SELECT press, seq, source, destination, amplitude
		FROM pulses
		WHERE run_id = ?`
	args := []any{runID}
	if press > 0 {
		query += ` AND press = ?`
		args = append(args, press)
	}
	query += ` ORDER BY seq ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pulses: %w", err)
	}
	defer rows.Close()

	pulses := []ir.PulseRecord{}
	for rows.Next() {
		var p ir.PulseRecord
		var amp string
		if err := rows.Scan(&p.Press, &p.Seq, &p.Source, &p.Destination, &amp); err != nil {
			return nil, fmt.Errorf("scan pulse: %w", err)
		}
		if p.Amplitude, err = ir.ParseAmplitude(amp); err != nil {
			return nil, fmt.Errorf("scan pulse %d: %w", p.Seq, err)
		}
		pulses = append(pulses, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pulses: %w", err)
	}
	return pulses, nil
}

// ReadFirstHighs returns the cycle-search results stored for a run,
// ordered by target then input.
func (s *Store) ReadFirstHighs(ctx context.Context, runID string) ([]ir.FirstHighRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, target, feeder, input, press
		FROM first_highs
		WHERE run_id = ?
		ORDER BY target COLLATE BINARY ASC, input COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query first highs: %w", err)
	}
	defer rows.Close()

	out := []ir.FirstHighRecord{}
	for rows.Next() {
		var r ir.FirstHighRecord
		if err := rows.Scan(&r.RunID, &r.Target, &r.Feeder, &r.Input, &r.Press); err != nil {
			return nil, fmt.Errorf("scan first high: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate first highs: %w", err)
	}
	return out, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(r rowScanner) (ir.RunRecord, error) {
	var run ir.RunRecord
	err := r.Scan(
		&run.ID,
		&run.GraphHash,
		&run.Network,
		&run.Presses,
		&run.Low,
		&run.High,
		&run.StateHash,
		&run.EngineVersion,
		&run.RecordVersion,
	)
	if err != nil {
		return ir.RunRecord{}, err
	}
	return run, nil
}
