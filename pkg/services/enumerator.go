package services

import (
	"context"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/plandiff"
	"github.com/dkoriadi/query-plans-visualiser/pkg/repositories"
)

type planEnumerator struct {
	plans     repositories.PlanRepository
	templates TemplateService
	logger    Logger
	metrics   MetricsCollector
}

// NewPlanEnumerator creates an enumerator that sweeps sampled predicate
// values against the engine.
func NewPlanEnumerator(plans repositories.PlanRepository, templates TemplateService, logger Logger, metrics MetricsCollector) PlanEnumerator {
	return &planEnumerator{
		plans:     plans,
		templates: templates,
		logger:    logger,
		metrics:   metrics,
	}
}

// Enumerate instantiates the template at every sampled point and records
// which distinct plan the engine chose there. Plan numbering is first come
// first served: the plan seen at the first grid cell is plan 1, and each
// later cell reuses the number of the earliest equivalent plan.
//
// Any engine failure aborts the sweep; a partially filled grid is never
// returned.
func (e *planEnumerator) Enumerate(ctx context.Context, template *models.QueryTemplate, samples [][]float64) (*models.Enumeration, error) {
	rows, cols := gridShape(samples)
	grid := models.NewPlanIndexGrid(rows, cols)

	enumeration := &models.Enumeration{Grid: grid}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			values := pointValues(samples, row, col)
			query := e.templates.Instantiate(template, values)

			timer := e.metrics.StartTimer("engine_explain_duration_seconds")
			plan, err := e.plans.Plan(ctx, query)
			timer.Stop()
			if err != nil {
				e.metrics.IncrementCounter("engine_explain_total", "status", "error")
				return nil, errors.Wrap(err, errors.CodeEngineQuery, "plan enumeration aborted").
					WithDetail("row", row).
					WithDetail("col", col).
					WithDetail("query", query)
			}
			e.metrics.IncrementCounter("engine_explain_total", "status", "ok")

			index := e.assign(enumeration, plan)
			grid.Cells = append(grid.Cells, index)

			e.logger.Debug("enumerated grid cell",
				"row", row,
				"col", col,
				"plan", index)
		}
	}

	e.metrics.RecordGauge("distinct_plans", float64(len(enumeration.Distinct)))
	e.logger.Info("plan enumeration complete",
		"rows", rows,
		"cols", cols,
		"distinct", len(enumeration.Distinct))

	return enumeration, nil
}

// assign returns the 1-based number of the earliest plan structurally
// equivalent to the given one, registering it as new when none matches.
func (e *planEnumerator) assign(enumeration *models.Enumeration, plan *models.PlanNode) int {
	for i, known := range enumeration.Distinct {
		if plandiff.Equivalent(known, plan) {
			return i + 1
		}
	}
	enumeration.Distinct = append(enumeration.Distinct, plan)
	e.metrics.IncrementCounter("plan_discoveries_total")
	return len(enumeration.Distinct)
}

// gridShape maps sample series onto grid dimensions. One attribute yields a
// single row swept column-wise; two attributes put the first attribute on
// rows and the second on columns.
func gridShape(samples [][]float64) (rows, cols int) {
	switch len(samples) {
	case 1:
		return 1, len(samples[0])
	default:
		return len(samples[0]), len(samples[1])
	}
}

func pointValues(samples [][]float64, row, col int) []float64 {
	if len(samples) == 1 {
		return []float64{samples[0][col]}
	}
	return []float64{samples[0][row], samples[1][col]}
}
