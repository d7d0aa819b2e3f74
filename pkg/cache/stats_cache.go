// Package cache provides a per-request memoizing layer over the statistics
// repository. The catalog is assumed stable for the duration of one top-level
// request, so a fresh cache is created per request and never shared.
package cache

import (
	"context"

	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

type relationColumn struct {
	relation string
	column   string
}

// StatisticsCache memoizes statistics lookups for a single request.
type StatisticsCache struct {
	inner repositories.StatisticsRepository
	stats *StatsCollector

	relations     map[string]string
	histograms    map[relationColumn][]float64
	cardinalities map[string]int64
}

// NewStatisticsCache wraps a statistics repository with request-scoped
// memoization.
func NewStatisticsCache(inner repositories.StatisticsRepository) *StatisticsCache {
	return &StatisticsCache{
		inner:         inner,
		stats:         NewStatsCollector(),
		relations:     make(map[string]string),
		histograms:    make(map[relationColumn][]float64),
		cardinalities: make(map[string]int64),
	}
}

// RelationOwning resolves which relation a column belongs to, memoized.
func (c *StatisticsCache) RelationOwning(ctx context.Context, column string) (string, error) {
	if relation, ok := c.relations[column]; ok {
		c.stats.RecordHit()
		return relation, nil
	}
	c.stats.RecordMiss()

	relation, err := c.inner.RelationOwning(ctx, column)
	if err != nil {
		return "", err
	}
	c.relations[column] = relation
	return relation, nil
}

// HistogramBounds returns the histogram bounds for a column, memoized.
func (c *StatisticsCache) HistogramBounds(ctx context.Context, relation, column string) ([]float64, error) {
	key := relationColumn{relation: relation, column: column}
	if bounds, ok := c.histograms[key]; ok {
		c.stats.RecordHit()
		return bounds, nil
	}
	c.stats.RecordMiss()

	bounds, err := c.inner.HistogramBounds(ctx, relation, column)
	if err != nil {
		return nil, err
	}
	c.histograms[key] = bounds
	return bounds, nil
}

// Cardinality returns the row estimate for a relation, memoized.
func (c *StatisticsCache) Cardinality(ctx context.Context, relation string) (int64, error) {
	if cardinality, ok := c.cardinalities[relation]; ok {
		c.stats.RecordHit()
		return cardinality, nil
	}
	c.stats.RecordMiss()

	cardinality, err := c.inner.Cardinality(ctx, relation)
	if err != nil {
		return 0, err
	}
	c.cardinalities[relation] = cardinality
	return cardinality, nil
}

// Stats returns the cache's hit/miss statistics.
func (c *StatisticsCache) Stats() Stats {
	return c.stats.GetStats()
}
