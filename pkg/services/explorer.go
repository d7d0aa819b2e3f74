package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/dkoriadi/query-plans-visualiser/pkg/cache"
	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/plandiff"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

// fallbackWarning explains why only the actual plan is shown.
const fallbackWarning = "query has no numeric predicates to vary; showing the plan for the literal query only"

type explorerService struct {
	templates  TemplateService
	plans      repositories.PlanRepository
	stats      repositories.StatisticsRepository
	resolution int
	logger     Logger
	metrics    MetricsCollector
}

// NewExplorer wires the full exploration pipeline. Statistics lookups are
// memoized per request on top of the given repository.
func NewExplorer(
	templates TemplateService,
	plans repositories.PlanRepository,
	stats repositories.StatisticsRepository,
	resolution int,
	logger Logger,
	metrics MetricsCollector,
) Explorer {
	return &explorerService{
		templates:  templates,
		plans:      plans,
		stats:      stats,
		resolution: resolution,
		logger:     logger,
		metrics:    metrics,
	}
}

// Explore runs the pipeline end to end: template the query, sample predicate
// values from histogram statistics, enumerate plans over the selectivity
// grid, synthesize per-plan ranges, and compare the literal query's actual
// plan against the enumerated set.
//
// A query that cannot be templated degrades to the actual plan alone; every
// other failure is terminal.
func (s *explorerService) Explore(ctx context.Context, query string) (*models.ExplorationResult, error) {
	requestID := uuid.New().String()
	timer := s.metrics.StartTimer("exploration_duration_seconds")
	defer timer.Stop()

	s.logger.Info("starting exploration",
		"request_id", requestID,
		"query", query)

	template, err := s.templates.Convert(query)
	if err != nil {
		if errors.IsTemplateConversion(err) {
			s.logger.Warn("template conversion failed, falling back to actual plan",
				"request_id", requestID,
				"error", err)
			s.metrics.IncrementCounter("explorations_total", "status", "fallback")
			return s.actualOnly(ctx, query, fallbackWarning)
		}
		s.metrics.IncrementCounter("explorations_total", "status", "error")
		return nil, err
	}

	statsCache := cache.NewStatisticsCache(s.stats)
	sampler := NewSelectivitySampler(statsCache, s.resolution, s.logger)
	samples, err := sampler.Sample(ctx, template)
	if err != nil {
		s.metrics.IncrementCounter("explorations_total", "status", "error")
		return nil, err
	}

	enumerator := NewPlanEnumerator(s.plans, s.templates, s.logger, s.metrics)
	enumeration, err := enumerator.Enumerate(ctx, template, samples)
	if err != nil {
		s.metrics.IncrementCounter("explorations_total", "status", "error")
		return nil, err
	}

	ranges := SynthesizeRanges(enumeration)
	explanations := FormatExplanations(ranges, template.Attributes, s.resolution)

	actual, err := s.plans.ActualPlan(ctx, query)
	if err != nil {
		s.metrics.IncrementCounter("explorations_total", "status", "error")
		return nil, err
	}
	actualIndex := matchActual(enumeration.Distinct, actual)

	cacheStats := statsCache.Stats()
	s.logger.Info("exploration complete",
		"request_id", requestID,
		"distinct_plans", len(enumeration.Distinct),
		"actual_plan_index", actualIndex,
		"stats_cache_hit_rate", cacheStats.HitRate())
	s.metrics.IncrementCounter("explorations_total", "status", "ok")

	return &models.ExplorationResult{
		Status:          models.StatusFull,
		Query:           query,
		Template:        template,
		Attributes:      template.Attributes,
		DistinctPlans:   enumeration.Distinct,
		Grid:            enumeration.Grid,
		Ranges:          ranges,
		Explanations:    explanations,
		ActualPlan:      actual,
		ActualPlanIndex: actualIndex,
	}, nil
}

// ExplainOnly skips the selectivity sweep and returns just the engine's plan
// for the literal query.
func (s *explorerService) ExplainOnly(ctx context.Context, query string) (*models.ExplorationResult, error) {
	return s.actualOnly(ctx, query, "")
}

func (s *explorerService) actualOnly(ctx context.Context, query, warning string) (*models.ExplorationResult, error) {
	actual, err := s.plans.ActualPlan(ctx, query)
	if err != nil {
		return nil, err
	}
	return &models.ExplorationResult{
		Status:     models.StatusActualOnly,
		Query:      query,
		ActualPlan: actual,
		Warning:    warning,
	}, nil
}

// matchActual returns the 1-based number of the first enumerated plan
// structurally equivalent to the actual plan, or 0 when none matches.
func matchActual(distinct []*models.PlanNode, actual *models.PlanNode) int {
	for i, plan := range distinct {
		if plandiff.Equivalent(plan, actual) {
			return i + 1
		}
	}
	return 0
}
