// Package services contains the exploration pipeline business logic.
package services

import (
	"context"
	"time"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// PredicateExtractor discovers numeric-candidate comparisons in a query.
type PredicateExtractor interface {
	Extract(query string) ([]models.PredicateComparison, error)
}

// TemplateService converts a query into a reusable template and instantiates
// it at concrete predicate values.
type TemplateService interface {
	Convert(query string) (*models.QueryTemplate, error)
	Instantiate(template *models.QueryTemplate, values []float64) string
}

// SelectivitySampler turns a template's attributes into sampled predicate
// values drawn from histogram statistics.
type SelectivitySampler interface {
	Sample(ctx context.Context, template *models.QueryTemplate) ([][]float64, error)
}

// PlanEnumerator sweeps the sampled selectivity space and collects the
// distinct plans the engine chooses.
type PlanEnumerator interface {
	Enumerate(ctx context.Context, template *models.QueryTemplate, samples [][]float64) (*models.Enumeration, error)
}

// Explorer runs the full pipeline for one query.
type Explorer interface {
	Explore(ctx context.Context, query string) (*models.ExplorationResult, error)
	ExplainOnly(ctx context.Context, query string) (*models.ExplorationResult, error)
}

// Logger defines logging interface.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// MetricsCollector defines metrics collection interface.
type MetricsCollector interface {
	IncrementCounter(name string, labels ...string)
	RecordHistogram(name string, value float64, labels ...string)
	RecordGauge(name string, value float64, labels ...string)
	StartTimer(name string) Timer
}

// Timer represents a timing measurement.
type Timer interface {
	Stop() time.Duration
}
