package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

// statsRepository implements repositories.StatisticsRepository against the
// pg_stats and pg_class catalogs.
type statsRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewStatsRepository creates a new PostgreSQL statistics repository.
func NewStatsRepository(pool *pgxpool.Pool, logger zerolog.Logger) repositories.StatisticsRepository {
	return &statsRepository{
		pool:   pool,
		logger: logger,
	}
}

// RelationOwning resolves which ordinary relation a column belongs to.
func (r *statsRepository) RelationOwning(ctx context.Context, column string) (string, error) {
	const query = `
		SELECT c.relname
		FROM pg_class AS c
		INNER JOIN pg_attribute AS a ON a.attrelid = c.oid
		WHERE a.attname = $1 AND c.relkind = 'r'
		LIMIT 1`

	var relation string
	err := r.pool.QueryRow(ctx, query, column).Scan(&relation)
	if err == pgx.ErrNoRows {
		return "", errors.Wrapf(err, errors.CodeStatisticsUnavailable, "no relation owns column %q", column)
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeStatisticsUnavailable, "relation lookup failed for column %q", column)
	}

	r.logger.Debug().Str("column", column).Str("relation", relation).Msg("Resolved owning relation")
	return relation, nil
}

// HistogramBounds returns the ordered histogram bucket bounds for a column.
// pg_stats exposes the bounds as an anyarray, so they come back as text and
// are parsed here.
func (r *statsRepository) HistogramBounds(ctx context.Context, relation, column string) ([]float64, error) {
	const query = `
		SELECT histogram_bounds::text
		FROM pg_stats
		WHERE tablename = $1 AND attname = $2`

	var raw *string
	err := r.pool.QueryRow(ctx, query, relation, column).Scan(&raw)
	if err == pgx.ErrNoRows || (err == nil && raw == nil) {
		return nil, errors.New(errors.CodeStatisticsUnavailable, "no histogram").
			WithDetail("relation", relation).
			WithDetail("column", column)
	}
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeStatisticsUnavailable, "histogram lookup failed for %s.%s", relation, column)
	}

	bounds, err := parseFloatArray(*raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeStatisticsUnavailable, "non-numeric histogram for %s.%s", relation, column)
	}

	r.logger.Debug().
		Str("relation", relation).
		Str("column", column).
		Int("bounds", len(bounds)).
		Msg("Histogram retrieved")
	return bounds, nil
}

// Cardinality returns the planner's estimated row count of a relation.
func (r *statsRepository) Cardinality(ctx context.Context, relation string) (int64, error) {
	const query = `SELECT reltuples::bigint FROM pg_class WHERE relname = $1`

	var cardinality int64
	err := r.pool.QueryRow(ctx, query, relation).Scan(&cardinality)
	if err == pgx.ErrNoRows {
		return 0, errors.Wrapf(err, errors.CodeStatisticsUnavailable, "unknown relation %q", relation)
	}
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeStatisticsUnavailable, "cardinality lookup failed for %q", relation)
	}
	return cardinality, nil
}

// parseFloatArray parses a Postgres array literal like "{0,10,20}" into floats.
func parseFloatArray(raw string) ([]float64, error) {
	trimmed := strings.Trim(strings.TrimSpace(raw), "{}")
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, ",")
	bounds := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, v)
	}
	return bounds, nil
}
