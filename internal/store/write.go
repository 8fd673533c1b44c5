package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// SaveExpansion inserts an expansion into the store and returns its
// sequence number. Uses ON CONFLICT(key) DO NOTHING: saving a key that is
// already present keeps the existing entry and reports inserted=false.
//
// The caller sets Key (normally ir.ExpansionKey); Seq and Hits are assigned
// by the store.
func (s *Store) SaveExpansion(ctx context.Context, e Expansion) (seq int64, inserted bool, err error) {
	if e.Key == "" {
		return 0, false, fmt.Errorf("save expansion: empty key")
	}
	report, err := marshalReport(e.Report)
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: %w", err)
	}
	warnings, err := marshalReport(e.Warnings)
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	seq, err = nextSeq(ctx, tx, "expansions")
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO expansions
		(key, file, source, catalog_digest, output, report, warnings, seq, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`,
		e.Key,
		e.File,
		e.Source,
		e.CatalogDigest,
		e.Output,
		report,
		warnings,
		seq,
		e.EngineVersion,
		e.IRVersion,
	)
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: insert: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("save expansion: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Conflict - keep the existing entry and report its seq
		err = tx.QueryRowContext(ctx, `SELECT seq FROM expansions WHERE key = ?`, e.Key).Scan(&seq)
		if err != nil {
			return 0, false, fmt.Errorf("save expansion: select existing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("save expansion: commit: %w", err)
	}
	return seq, rowsAffected > 0, nil
}

// WriteRun records the outcome of one run and returns its ID. A run with an
// empty ID gets a random one; its expansion must already be stored (foreign
// key constraint).
func (s *Store) WriteRun(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	argsJSON, err := marshalArgs(r.Args)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback()

	seq, err := nextSeq(ctx, tx, "runs")
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, expansion_key, entry, args, max_steps, value, error_code, steps, output, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.ExpansionKey,
		r.Entry,
		argsJSON,
		r.MaxSteps,
		r.Value,
		r.ErrorCode,
		r.Steps,
		r.Output,
		seq,
	)
	if err != nil {
		return "", fmt.Errorf("write run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("write run: commit: %w", err)
	}
	return r.ID, nil
}

// Prune deletes expansions produced by any engine or IR version other than
// the given ones, together with their runs. It returns the number of
// expansions deleted.
func (s *Store) Prune(ctx context.Context, engineVersion, irVersion string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM expansions
		WHERE engine_version != ? OR ir_version != ?
	`, engineVersion, irVersion)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune: rows affected: %w", err)
	}
	return n, nil
}

// nextSeq returns the next logical clock value for table.
func nextSeq(ctx context.Context, tx *sql.Tx, table string) (int64, error) {
	var seq int64
	// table is one of our own constants, never user input
	err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM "+table).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next seq: %w", err)
	}
	return seq, nil
}
