package store

import (
	"context"
	"fmt"
)

// ReplayTarget is a recorded run together with the expansion it ran.
type ReplayTarget struct {
	Run       Run
	Expansion Expansion
}

// ReplayRuns returns every recorded run with its expansion, in run seq
// order, so a caller can execute each again and compare outcomes. An empty
// key selects all runs.
func (s *Store) ReplayRuns(ctx context.Context, key string) ([]ReplayTarget, error) {
	runs, err := s.ReadRuns(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("replay runs: %w", err)
	}

	cache := make(map[string]Expansion)
	targets := make([]ReplayTarget, 0, len(runs))
	for _, r := range runs {
		e, ok := cache[r.ExpansionKey]
		if !ok {
			e, err = s.ReadExpansion(ctx, r.ExpansionKey)
			if err != nil {
				return nil, fmt.Errorf("replay runs: %w", err)
			}
			cache[r.ExpansionKey] = e
		}
		targets = append(targets, ReplayTarget{Run: r, Expansion: e})
	}
	return targets, nil
}

// Stats summarizes the store contents.
type Stats struct {
	Expansions int64
	Runs       int64
	Hits       int64
	LastSeq    int64
}

// GetStats returns counts over both tables. LastSeq is the highest logical
// clock value either table has assigned.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM expansions),
			(SELECT COUNT(*) FROM runs),
			(SELECT COALESCE(SUM(hits), 0) FROM expansions),
			MAX(
				(SELECT COALESCE(MAX(seq), 0) FROM expansions),
				(SELECT COALESCE(MAX(seq), 0) FROM runs)
			)
	`).Scan(&st.Expansions, &st.Runs, &st.Hits, &st.LastSeq)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}
