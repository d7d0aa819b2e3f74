// Package repositories defines interfaces for the engine and catalog
// collaborators the exploration pipeline depends on.
package repositories

import (
	"context"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// PlanRepository produces query execution plans from the engine.
type PlanRepository interface {
	// Plan returns the engine's plan for an instantiated template query.
	Plan(ctx context.Context, query string) (*models.PlanNode, error)
	// ActualPlan returns the engine's plan for the literal, untemplated query.
	ActualPlan(ctx context.Context, query string) (*models.PlanNode, error)
}

// StatisticsRepository reads column and relation statistics from the catalog.
type StatisticsRepository interface {
	// RelationOwning resolves which relation a column belongs to.
	RelationOwning(ctx context.Context, column string) (string, error)
	// HistogramBounds returns the ordered histogram bucket bounds for a column.
	HistogramBounds(ctx context.Context, relation, column string) ([]float64, error)
	// Cardinality returns the estimated row count of a relation.
	Cardinality(ctx context.Context, relation string) (int64, error)
}
