package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayRuns_PairsRunsWithExpansions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := saveTestExpansion(t, s, "fn a() {}")
	b := saveTestExpansion(t, s, "fn b() {}")

	for _, key := range []string{b, a, b} {
		_, err := s.WriteRun(ctx, Run{ExpansionKey: key, Entry: "main"})
		require.NoError(t, err)
	}

	targets, err := s.ReplayRuns(ctx, "")
	require.NoError(t, err)
	require.Len(t, targets, 3)
	for i, want := range []string{b, a, b} {
		assert.Equal(t, want, targets[i].Expansion.Key)
		assert.Equal(t, want, targets[i].Run.ExpansionKey)
		assert.Equal(t, int64(i+1), targets[i].Run.Seq)
	}

	only, err := s.ReplayRuns(ctx, a)
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.Equal(t, "fn a() {}", only[0].Expansion.Source)
}

func TestGetStats(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	st, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	a := saveTestExpansion(t, s, "fn a() {}")
	saveTestExpansion(t, s, "fn b() {}")
	_, _, err = s.LookupExpansion(ctx, a)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, Run{ExpansionKey: a, Entry: "a"})
	require.NoError(t, err)

	st, err = s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Expansions: 2, Runs: 1, Hits: 1, LastSeq: 2}, st)
}
