package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupExpansion_CountsHits(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	key := saveTestExpansion(t, s, "fn main() {}")

	for i := 1; i <= 3; i++ {
		e, found, err := s.LookupExpansion(ctx, key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, int64(i), e.Hits)
	}

	e, err := s.ReadExpansion(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), e.Hits, "ReadExpansion does not count")
}

func TestLookupExpansion_Miss(t *testing.T) {
	s := createTestStore(t)
	_, found, err := s.LookupExpansion(context.Background(), "no-such-key")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadExpansion_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestExpansion("fn main() { tri!(x => Some[y] <> 0); }")
	_, _, err := s.SaveExpansion(ctx, want)
	require.NoError(t, err)

	got, err := s.ReadExpansion(ctx, want.Key)
	require.NoError(t, err)
	assert.Equal(t, want.Source, got.Source)
	assert.Equal(t, want.Output, got.Output)
	assert.Equal(t, want.CatalogDigest, got.CatalogDigest)
	assert.JSONEq(t, string(want.Report), string(got.Report))
	assert.JSONEq(t, string(want.Warnings), string(got.Warnings))
	assert.Equal(t, int64(1), got.Seq)
}

func TestReadExpansion_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadExpansion(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListExpansions_Empty(t *testing.T) {
	s := createTestStore(t)
	all, err := s.ListExpansions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestReadRuns_FiltersAndOrders(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	a := saveTestExpansion(t, s, "fn a() {}")
	b := saveTestExpansion(t, s, "fn b() {}")

	for _, r := range []Run{
		{ID: "z", ExpansionKey: a, Entry: "a", Args: []string{`Some("<x>")`}, Value: "()"},
		{ID: "y", ExpansionKey: b, Entry: "b", ErrorCode: "QUOTA_EXCEEDED", Steps: 11, MaxSteps: 10},
		{ID: "x", ExpansionKey: a, Entry: "a", Output: "hi\n"},
	} {
		_, err := s.WriteRun(ctx, r)
		require.NoError(t, err)
	}

	runs, err := s.ReadRuns(ctx, a)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "z", runs[0].ID)
	assert.Equal(t, "x", runs[1].ID)
	assert.Equal(t, []string{`Some("<x>")`}, runs[0].Args)
	assert.Equal(t, []string{}, runs[1].Args)
	assert.Equal(t, "hi\n", runs[1].Output)

	all, err := s.ReadRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	r := all[1]
	assert.Equal(t, "y", r.ID)
	assert.Equal(t, "QUOTA_EXCEEDED", r.ErrorCode)
	assert.Equal(t, int64(11), r.Steps)
	assert.Equal(t, int64(10), r.MaxSteps)
	assert.Equal(t, int64(2), r.Seq)
}
