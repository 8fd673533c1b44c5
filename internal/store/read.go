package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const expansionColumns = `key, file, source, catalog_digest, output, report, warnings, seq, hits, engine_version, ir_version`

const runColumns = `id, expansion_key, entry, args, max_steps, value, error_code, steps, output, seq`

// LookupExpansion returns the expansion stored under key and counts the hit.
// found is false when the key is not stored.
func (s *Store) LookupExpansion(ctx context.Context, key string) (e Expansion, found bool, err error) {
	result, err := s.db.ExecContext(ctx, `UPDATE expansions SET hits = hits + 1 WHERE key = ?`, key)
	if err != nil {
		return Expansion{}, false, fmt.Errorf("lookup expansion: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return Expansion{}, false, fmt.Errorf("lookup expansion: rows affected: %w", err)
	} else if n == 0 {
		return Expansion{}, false, nil
	}

	e, err = s.ReadExpansion(ctx, key)
	if err != nil {
		return Expansion{}, false, err
	}
	return e, true, nil
}

// ReadExpansion returns the expansion stored under key without counting a
// hit. Returns sql.ErrNoRows (wrapped) when the key is not stored.
func (s *Store) ReadExpansion(ctx context.Context, key string) (Expansion, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+expansionColumns+` FROM expansions WHERE key = ?`, key)
	e, err := scanExpansion(row)
	if err != nil {
		return Expansion{}, fmt.Errorf("read expansion %s: %w", key, err)
	}
	return e, nil
}

// ListExpansions returns every stored expansion in seq order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListExpansions(ctx context.Context) ([]Expansion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+expansionColumns+`
		FROM expansions
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query expansions: %w", err)
	}
	defer rows.Close()

	expansions := []Expansion{}
	for rows.Next() {
		e, err := scanExpansion(rows)
		if err != nil {
			return nil, err
		}
		expansions = append(expansions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expansions: %w", err)
	}
	return expansions, nil
}

// ReadRuns returns the runs recorded for an expansion in seq order, or every
// run when key is empty. Returns an empty slice (not nil) if none exist.
func (s *Store) ReadRuns(ctx context.Context, key string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM runs
		WHERE ? = '' OR expansion_key = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, key, key)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// IsNotFound reports whether err means a requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExpansion(sc scanner) (Expansion, error) {
	var e Expansion
	var report, warnings string
	err := sc.Scan(
		&e.Key,
		&e.File,
		&e.Source,
		&e.CatalogDigest,
		&e.Output,
		&report,
		&warnings,
		&e.Seq,
		&e.Hits,
		&e.EngineVersion,
		&e.IRVersion,
	)
	if err != nil {
		return Expansion{}, fmt.Errorf("scan expansion: %w", err)
	}
	e.Report = []byte(report)
	e.Warnings = []byte(warnings)
	return e, nil
}

func scanRun(sc scanner) (Run, error) {
	var r Run
	var args string
	err := sc.Scan(
		&r.ID,
		&r.ExpansionKey,
		&r.Entry,
		&args,
		&r.MaxSteps,
		&r.Value,
		&r.ErrorCode,
		&r.Steps,
		&r.Output,
		&r.Seq,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	if r.Args, err = unmarshalArgs(args); err != nil {
		return Run{}, err
	}
	return r, nil
}
