package services

import (
	"fmt"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// SynthesizeRanges reduces the grid to one bounding box of cells per
// distinct plan, ordered by plan number.
func SynthesizeRanges(enumeration *models.Enumeration) []models.SelectivityRange {
	grid := enumeration.Grid
	ranges := make([]models.SelectivityRange, len(enumeration.Distinct))
	for i := range ranges {
		ranges[i] = models.SelectivityRange{
			PlanIndex: i + 1,
			RowMin:    grid.Rows,
			ColMin:    grid.Cols,
			RowMax:    -1,
			ColMax:    -1,
		}
	}

	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			r := &ranges[grid.At(row, col)-1]
			if row < r.RowMin {
				r.RowMin = row
			}
			if row > r.RowMax {
				r.RowMax = row
			}
			if col < r.ColMin {
				r.ColMin = col
			}
			if col > r.ColMax {
				r.ColMax = col
			}
		}
	}
	return ranges
}

// FormatExplanations renders one selectivity sentence per plan and
// attribute. Each grid cell covers a step of 100/resolution percent, so a
// cell span [min, max] reads as the half-open percentage range
// [min*step, (max+1)*step).
func FormatExplanations(ranges []models.SelectivityRange, attributes []string, resolution int) []string {
	step := 100 / resolution
	explanations := make([]string, 0, len(ranges)*len(attributes))
	for _, r := range ranges {
		if len(attributes) == 1 {
			explanations = append(explanations, explanation(r.PlanIndex, attributes[0], r.ColMin, r.ColMax, step))
			continue
		}
		explanations = append(explanations, explanation(r.PlanIndex, attributes[0], r.RowMin, r.RowMax, step))
		explanations = append(explanations, explanation(r.PlanIndex, attributes[1], r.ColMin, r.ColMax, step))
	}
	return explanations
}

func explanation(planIndex int, attribute string, min, max, step int) string {
	return fmt.Sprintf("For Plan %d, the selectivity range for %s ranges from %d %% to %d %%",
		planIndex, attribute, min*step, (max+1)*step)
}
