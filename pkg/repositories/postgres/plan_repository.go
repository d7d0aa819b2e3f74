// Package postgres provides PostgreSQL-backed repository implementations.
package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

// explainPrefix requests the plan as JSON with planner cost estimates and no
// execution, matching the RawPlan shape the pipeline decodes.
const explainPrefix = "EXPLAIN (FORMAT JSON, COSTS TRUE, TIMING FALSE, VERBOSE TRUE) "

// planRepository implements repositories.PlanRepository for PostgreSQL.
type planRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPlanRepository creates a new PostgreSQL plan repository.
func NewPlanRepository(pool *pgxpool.Pool, logger zerolog.Logger) repositories.PlanRepository {
	return &planRepository{
		pool:   pool,
		logger: logger,
	}
}

// Plan returns the engine's plan for an instantiated template query.
func (r *planRepository) Plan(ctx context.Context, query string) (*models.PlanNode, error) {
	return r.explain(ctx, query)
}

// ActualPlan returns the engine's plan for the literal, untemplated query.
func (r *planRepository) ActualPlan(ctx context.Context, query string) (*models.PlanNode, error) {
	return r.explain(ctx, query)
}

func (r *planRepository) explain(ctx context.Context, query string) (*models.PlanNode, error) {
	r.logger.Debug().Str("query", query).Msg("Requesting plan")

	var payload []byte
	if err := r.pool.QueryRow(ctx, explainPrefix+query).Scan(&payload); err != nil {
		return nil, errors.Wrapf(err, errors.CodeEngineQuery, "explain failed: %s", query).
			WithDetail("query", query)
	}

	var out []models.ExplainOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, errors.Wrap(err, errors.CodeEngineQuery, "malformed explain output").
			WithDetail("query", query)
	}
	if len(out) == 0 || out[0].Plan == nil {
		return nil, errors.New(errors.CodeEngineQuery, "empty explain output").
			WithDetail("query", query)
	}

	return out[0].Plan, nil
}
