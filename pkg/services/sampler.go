package services

import (
	"context"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

type selectivitySampler struct {
	stats      repositories.StatisticsRepository
	resolution int
	logger     Logger
}

// NewSelectivitySampler creates a sampler that draws predicate values from
// the catalog's histogram statistics at the given grid resolution.
func NewSelectivitySampler(stats repositories.StatisticsRepository, resolution int, logger Logger) SelectivitySampler {
	return &selectivitySampler{
		stats:      stats,
		resolution: resolution,
		logger:     logger,
	}
}

// Sample returns one value series per template attribute. Each series holds
// at most resolution values spread across the attribute's histogram, so
// sweeping a series walks the column's selectivity from low to high.
func (s *selectivitySampler) Sample(ctx context.Context, template *models.QueryTemplate) ([][]float64, error) {
	if len(template.Attributes) > 2 {
		return nil, errors.ErrTooManyPredicates.
			WithDetail("attributes", template.Attributes)
	}

	series := make([][]float64, 0, len(template.Attributes))
	for _, attribute := range template.Attributes {
		values, err := s.sampleAttribute(ctx, attribute)
		if err != nil {
			return nil, err
		}
		series = append(series, values)
	}
	return series, nil
}

func (s *selectivitySampler) sampleAttribute(ctx context.Context, attribute string) ([]float64, error) {
	relation, err := s.stats.RelationOwning(ctx, attribute)
	if err != nil {
		return nil, err
	}

	bounds, err := s.stats.HistogramBounds(ctx, relation, attribute)
	if err != nil {
		return nil, err
	}
	if len(bounds) < 2 {
		return nil, errors.New(errors.CodeStatisticsUnavailable, "too few histogram bounds").
			WithDetail("relation", relation).
			WithDetail("column", attribute).
			WithDetail("bounds", len(bounds))
	}

	cardinality, err := s.stats.Cardinality(ctx, relation)
	if err != nil {
		return nil, err
	}

	values := midpoints(bounds, s.resolution)

	s.logger.Info("sampled attribute",
		"attribute", attribute,
		"relation", relation,
		"cardinality", cardinality,
		"bounds", len(bounds),
		"samples", len(values))

	return values, nil
}

// midpoints thins the histogram bounds to roughly resolution+1 entries and
// returns the midpoint of each retained bound and its successor, capped at
// resolution values. The last retained bound has no successor and stands for
// itself.
func midpoints(bounds []float64, resolution int) []float64 {
	stride := len(bounds) / resolution
	if stride < 1 {
		stride = 1
	}

	retained := make([]float64, 0, resolution+1)
	for i := 0; i < len(bounds); i += stride {
		retained = append(retained, bounds[i])
	}

	values := make([]float64, 0, resolution)
	for i := 0; i < len(retained) && len(values) < resolution; i++ {
		if i+1 < len(retained) {
			values = append(values, (retained[i]+retained[i+1])/2)
		} else {
			values = append(values, retained[i])
		}
	}
	return values
}
