package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EMcConnell20/tri-ton/internal/ir"
)

func TestSaveExpansion_AssignsSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq1, inserted, err := s.SaveExpansion(ctx, createTestExpansion("fn a() {}"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(1), seq1)

	seq2, inserted, err := s.SaveExpansion(ctx, createTestExpansion("fn b() {}"))
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(2), seq2)
}

func TestSaveExpansion_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := createTestExpansion("fn a() {}")
	seq, _, err := s.SaveExpansion(ctx, e)
	require.NoError(t, err)

	e.Output = "something else"
	again, inserted, err := s.SaveExpansion(ctx, e)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, seq, again)

	stored, err := s.ReadExpansion(ctx, e.Key)
	require.NoError(t, err)
	assert.Equal(t, "expanded: fn a() {}", stored.Output, "existing entries are never replaced")
}

func TestSaveExpansion_RejectsEmptyKey(t *testing.T) {
	s := createTestStore(t)
	_, _, err := s.SaveExpansion(context.Background(), Expansion{})
	assert.Error(t, err)
}

func TestWriteRun_RequiresExpansion(t *testing.T) {
	s := createTestStore(t)
	_, err := s.WriteRun(context.Background(), Run{ExpansionKey: "missing", Entry: "main"})
	assert.Error(t, err, "foreign key constraint must reject unknown expansions")
}

func TestWriteRun_GeneratesID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	key := saveTestExpansion(t, s, "fn main() { 1 }")

	id, err := s.WriteRun(ctx, Run{ExpansionKey: key, Entry: "main", Value: "1", Steps: 1})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	fixed, err := s.WriteRun(ctx, Run{ID: "run-2", ExpansionKey: key, Entry: "main", Value: "1", Steps: 1})
	require.NoError(t, err)
	assert.Equal(t, "run-2", fixed)
}

func TestPrune_RemovesOtherVersions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	current := saveTestExpansion(t, s, "fn a() {}")

	old := createTestExpansion("fn b() {}")
	old.EngineVersion = "0.0.1"
	_, _, err := s.SaveExpansion(ctx, old)
	require.NoError(t, err)
	_, err = s.WriteRun(ctx, Run{ExpansionKey: old.Key, Entry: "b"})
	require.NoError(t, err)

	n, err := s.Prune(ctx, ir.EngineVersion, ir.IRVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	all, err := s.ListExpansions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, current, all[0].Key)

	runs, err := s.ReadRuns(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, runs, "runs of pruned expansions are deleted with them")
}
