package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) IncrementCounter(name string, labels ...string)               {}
func (nopMetrics) RecordHistogram(name string, value float64, labels ...string) {}
func (nopMetrics) RecordGauge(name string, value float64, labels ...string)     {}
func (nopMetrics) StartTimer(name string) Timer                                 { return nopTimer{} }

type nopTimer struct{}

func (nopTimer) Stop() time.Duration { return 0 }

// fakeStatsRepository serves canned statistics and counts lookups.
type fakeStatsRepository struct {
	relations     map[string]string
	histograms    map[string][]float64
	cardinalities map[string]int64

	relationCalls  int
	histogramCalls int
}

func (f *fakeStatsRepository) RelationOwning(_ context.Context, column string) (string, error) {
	f.relationCalls++
	relation, ok := f.relations[column]
	if !ok {
		return "", errors.New(errors.CodeStatisticsUnavailable, "unknown column").
			WithDetail("column", column)
	}
	return relation, nil
}

func (f *fakeStatsRepository) HistogramBounds(_ context.Context, relation, column string) ([]float64, error) {
	f.histogramCalls++
	bounds, ok := f.histograms[relation+"."+column]
	if !ok {
		return nil, errors.New(errors.CodeStatisticsUnavailable, "no histogram").
			WithDetail("relation", relation).
			WithDetail("column", column)
	}
	return bounds, nil
}

func (f *fakeStatsRepository) Cardinality(_ context.Context, relation string) (int64, error) {
	cardinality, ok := f.cardinalities[relation]
	if !ok {
		return 0, errors.New(errors.CodeStatisticsUnavailable, "unknown relation").
			WithDetail("relation", relation)
	}
	return cardinality, nil
}

// fakePlanRepository answers plan requests through a callback and records
// every query it sees.
type fakePlanRepository struct {
	planFn  func(query string) (*models.PlanNode, error)
	actual  *models.PlanNode
	queries []string
}

func (f *fakePlanRepository) Plan(_ context.Context, query string) (*models.PlanNode, error) {
	f.queries = append(f.queries, query)
	return f.planFn(query)
}

func (f *fakePlanRepository) ActualPlan(_ context.Context, query string) (*models.PlanNode, error) {
	if f.actual == nil {
		return nil, errors.New(errors.CodeEngineQuery, "no actual plan configured")
	}
	return f.actual, nil
}

func seqScanPlan(relation string) *models.PlanNode {
	return &models.PlanNode{
		NodeType:     "Seq Scan",
		TotalCost:    431.0,
		PlanRows:     1000,
		RelationName: relation,
	}
}

func indexScanPlan(relation, index string) *models.PlanNode {
	return &models.PlanNode{
		NodeType:     "Index Scan",
		TotalCost:    52.3,
		PlanRows:     40,
		RelationName: relation,
		IndexName:    index,
	}
}

// instantiatedValue pulls the first substituted predicate value back out of
// an instantiated template query.
func instantiatedValue(query string) float64 {
	idx := strings.Index(query, "<= ")
	if idx < 0 {
		return 0
	}
	rest := query[idx+3:]
	end := 0
	for end < len(rest) && (rest[end] == '.' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	v, _ := strconv.ParseFloat(rest[:end], 64)
	return v
}
