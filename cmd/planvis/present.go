package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
	"github.com/dkoriadi/query-plans-visualiser/pkg/plantree"
)

// printResult renders an exploration result for the terminal.
func printResult(w io.Writer, result *models.ExplorationResult) {
	if result.Status == models.StatusActualOnly {
		if result.Warning != "" {
			fmt.Fprintf(w, "Note: %s\n\n", result.Warning)
		}
		fmt.Fprintln(w, "Actual plan:")
		fmt.Fprintln(w, plantree.RenderPlan(result.ActualPlan))
		return
	}

	fmt.Fprintf(w, "Query:    %s\n", result.Query)
	fmt.Fprintf(w, "Template: %s\n", result.Template.Text)
	fmt.Fprintf(w, "Varying:  %s\n\n", strings.Join(result.Attributes, ", "))

	for i, plan := range result.DistinctPlans {
		fmt.Fprintf(w, "Plan %d:\n", i+1)
		fmt.Fprintln(w, plantree.RenderPlan(plan))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Selectivity map:")
	printGrid(w, result.Grid)
	fmt.Fprintln(w)

	for _, explanation := range result.Explanations {
		fmt.Fprintln(w, explanation)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Actual plan:")
	fmt.Fprintln(w, plantree.RenderPlan(result.ActualPlan))
	if result.ActualPlanIndex > 0 {
		fmt.Fprintf(w, "\nThe actual plan matches Plan %d\n", result.ActualPlanIndex)
	} else {
		fmt.Fprintln(w, "\nThe actual plan does not match any enumerated plan")
	}
}

// printGrid writes the plan index grid row by row, low selectivity first.
func printGrid(w io.Writer, grid *models.PlanIndexGrid) {
	for row := 0; row < grid.Rows; row++ {
		cells := make([]string, 0, grid.Cols)
		for col := 0; col < grid.Cols; col++ {
			cells = append(cells, fmt.Sprintf("%d", grid.At(row, col)))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(cells, " "))
	}
}
