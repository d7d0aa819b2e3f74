package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStats is a fake statistics repository that counts round trips.
type countingStats struct {
	relationCalls    int
	histogramCalls   int
	cardinalityCalls int
	failHistogram    bool
}

func (s *countingStats) RelationOwning(ctx context.Context, column string) (string, error) {
	s.relationCalls++
	return "lineitem", nil
}

func (s *countingStats) HistogramBounds(ctx context.Context, relation, column string) ([]float64, error) {
	s.histogramCalls++
	if s.failHistogram {
		return nil, fmt.Errorf("no histogram")
	}
	return []float64{0, 10, 20}, nil
}

func (s *countingStats) Cardinality(ctx context.Context, relation string) (int64, error) {
	s.cardinalityCalls++
	return 20000, nil
}

func TestStatisticsCacheMemoizes(t *testing.T) {
	ctx := context.Background()
	inner := &countingStats{}
	c := NewStatisticsCache(inner)

	for i := 0; i < 3; i++ {
		relation, err := c.RelationOwning(ctx, "l_quantity")
		require.NoError(t, err)
		assert.Equal(t, "lineitem", relation)

		bounds, err := c.HistogramBounds(ctx, "lineitem", "l_quantity")
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 10, 20}, bounds)

		cardinality, err := c.Cardinality(ctx, "lineitem")
		require.NoError(t, err)
		assert.Equal(t, int64(20000), cardinality)
	}

	assert.Equal(t, 1, inner.relationCalls)
	assert.Equal(t, 1, inner.histogramCalls)
	assert.Equal(t, 1, inner.cardinalityCalls)

	stats := c.Stats()
	assert.Equal(t, uint64(6), stats.Hits)
	assert.Equal(t, uint64(3), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 0.001)
}

func TestStatisticsCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	inner := &countingStats{failHistogram: true}
	c := NewStatisticsCache(inner)

	_, err := c.HistogramBounds(ctx, "lineitem", "l_comment")
	require.Error(t, err)
	_, err = c.HistogramBounds(ctx, "lineitem", "l_comment")
	require.Error(t, err)

	assert.Equal(t, 2, inner.histogramCalls, "failed lookups must not be memoized")
}

func TestStatsHitRateEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Stats{}.HitRate())
}

func TestStatisticsCacheDistinctKeys(t *testing.T) {
	ctx := context.Background()
	inner := &countingStats{}
	c := NewStatisticsCache(inner)

	_, err := c.HistogramBounds(ctx, "lineitem", "l_quantity")
	require.NoError(t, err)
	_, err = c.HistogramBounds(ctx, "lineitem", "l_extendedprice")
	require.NoError(t, err)
	_, err = c.HistogramBounds(ctx, "orders", "l_quantity")
	require.NoError(t, err)

	assert.Equal(t, 3, inner.histogramCalls, "each relation/column pair is a distinct key")
}
