package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

func newExplorer(plans *fakePlanRepository, stats *fakeStatsRepository) Explorer {
	return NewExplorer(newTemplateService(), plans, stats, 10, nopLogger{}, nopMetrics{})
}

func lineitemStats() *fakeStatsRepository {
	return &fakeStatsRepository{
		relations:     map[string]string{"l_quantity": "lineitem"},
		histograms:    map[string][]float64{"lineitem.l_quantity": boundsRange(0, 100, 10)},
		cardinalities: map[string]int64{"lineitem": 6000000},
	}
}

func TestExploreEndToEnd(t *testing.T) {
	plans := &fakePlanRepository{
		planFn: func(query string) (*models.PlanNode, error) {
			if instantiatedValue(query) < 40 {
				return indexScanPlan("lineitem", "idx_quantity"), nil
			}
			return seqScanPlan("lineitem"), nil
		},
		actual: indexScanPlan("lineitem", "idx_quantity"),
	}
	explorer := newExplorer(plans, lineitemStats())

	result, err := explorer.Explore(context.Background(), "SELECT * FROM lineitem WHERE l_quantity < 30")
	require.NoError(t, err)

	assert.Equal(t, models.StatusFull, result.Status)
	assert.Equal(t, "SELECT * FROM lineitem WHERE l_quantity :varies", result.Template.Text)
	assert.Equal(t, []string{"l_quantity"}, result.Attributes)

	require.Len(t, result.DistinctPlans, 2)
	assert.Equal(t, 1, result.Grid.Rows)
	assert.Equal(t, 10, result.Grid.Cols)
	assert.Equal(t, []int{1, 1, 1, 1, 2, 2, 2, 2, 2, 2}, result.Grid.Cells)

	require.Len(t, result.Ranges, 2)
	require.Len(t, result.Explanations, 2)
	assert.Equal(t, "For Plan 1, the selectivity range for l_quantity ranges from 0 % to 40 %", result.Explanations[0])

	// The literal query's plan matches the first enumerated plan.
	assert.Equal(t, 1, result.ActualPlanIndex)
	assert.Empty(t, result.Warning)
}

func TestExploreActualPlanUnmatched(t *testing.T) {
	plans := &fakePlanRepository{
		planFn: func(query string) (*models.PlanNode, error) {
			return seqScanPlan("lineitem"), nil
		},
		actual: indexScanPlan("lineitem", "idx_quantity"),
	}
	explorer := newExplorer(plans, lineitemStats())

	result, err := explorer.Explore(context.Background(), "SELECT * FROM lineitem WHERE l_quantity < 30")
	require.NoError(t, err)
	assert.Zero(t, result.ActualPlanIndex)
}

func TestExploreFallsBackWithoutNumericPredicates(t *testing.T) {
	plans := &fakePlanRepository{
		planFn: func(query string) (*models.PlanNode, error) {
			t.Fatal("fallback must not enumerate plans")
			return nil, nil
		},
		actual: seqScanPlan("lineitem"),
	}
	explorer := newExplorer(plans, &fakeStatsRepository{})

	result, err := explorer.Explore(context.Background(), "SELECT * FROM lineitem WHERE l_shipdate < '1995-01-01'")
	require.NoError(t, err)

	assert.Equal(t, models.StatusActualOnly, result.Status)
	assert.NotNil(t, result.ActualPlan)
	assert.NotEmpty(t, result.Warning)
	assert.Nil(t, result.Template)
	assert.Empty(t, result.DistinctPlans)
}

func TestExploreRejectsTooManyPredicatesBeforeEngine(t *testing.T) {
	plans := &fakePlanRepository{
		planFn: func(query string) (*models.PlanNode, error) {
			t.Fatal("no engine round trip may happen")
			return nil, nil
		},
	}
	explorer := newExplorer(plans, &fakeStatsRepository{})

	_, err := explorer.Explore(context.Background(),
		"SELECT * FROM lineitem WHERE l_quantity < 30 AND l_extendedprice > 100 AND l_discount < 0.05")
	require.Error(t, err)
	assert.True(t, errors.IsTooManyPredicates(err))
	assert.Empty(t, plans.queries)
}

func TestExplorePropagatesEngineFailure(t *testing.T) {
	plans := &fakePlanRepository{
		planFn: func(query string) (*models.PlanNode, error) {
			return nil, errors.New(errors.CodeEngineQuery, "connection reset")
		},
		actual: seqScanPlan("lineitem"),
	}
	explorer := newExplorer(plans, lineitemStats())

	result, err := explorer.Explore(context.Background(), "SELECT * FROM lineitem WHERE l_quantity < 30")
	require.Error(t, err)
	assert.True(t, errors.IsEngineQuery(err))
	assert.Nil(t, result)
}

func TestExplainOnly(t *testing.T) {
	plans := &fakePlanRepository{
		actual: seqScanPlan("lineitem"),
	}
	explorer := newExplorer(plans, &fakeStatsRepository{})

	result, err := explorer.ExplainOnly(context.Background(), "SELECT * FROM lineitem")
	require.NoError(t, err)

	assert.Equal(t, models.StatusActualOnly, result.Status)
	assert.NotNil(t, result.ActualPlan)
	assert.Empty(t, result.Warning)
}
