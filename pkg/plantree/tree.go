// Package plantree turns raw query execution plans into annotated trees with
// stable human-readable identifiers and per-operator costs, and renders them
// as indented text reports.
package plantree

import (
	"fmt"
	"math"
	"strings"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// absentFilter is printed for operators without a filter expression.
const absentFilter = "-"

// Node is one annotated operator in a plan tree. A node is either an operator
// (ID, OwnCost, Rows, Filter populated) or a synthetic relation leaf attached
// under the scan that reads it.
type Node struct {
	ID         string
	Operator   string
	OwnCost    float64
	Rows       int64
	Filter     string
	Relation   string
	IsRelation bool
	Children   []*Node
}

// Annotate converts a raw plan into an annotated tree. Identifiers are
// assigned pre-order as "{operator}_{k}" with k counting occurrences of the
// same operator kind, so repeated operators stay distinguishable. Own-cost is
// the node's total cost minus its children's total costs, clamped at zero and
// rounded to two decimals; computing it requires the children's totals, so
// costs resolve bottom-up inside the same traversal. Scans with no sub-plans
// get a synthetic relation leaf carrying the relation they read.
func Annotate(root *models.PlanNode) *Node {
	if root == nil {
		return nil
	}
	counter := make(map[string]int)
	return annotate(root, counter)
}

func annotate(plan *models.PlanNode, counter map[string]int) *Node {
	counter[plan.NodeType]++
	node := &Node{
		ID:       fmt.Sprintf("%s_%d", plan.NodeType, counter[plan.NodeType]),
		Operator: plan.NodeType,
		Rows:     plan.PlanRows,
		Filter:   plan.Filter,
	}

	childTotals := 0.0
	for _, child := range plan.Plans {
		node.Children = append(node.Children, annotate(child, counter))
		childTotals += clampCost(child.TotalCost)
	}
	node.OwnCost = clampCost(plan.TotalCost - childTotals)

	if !plan.HasChildren() && plan.RelationName != "" {
		node.Children = append(node.Children, &Node{
			Relation:   plan.RelationName,
			IsRelation: true,
		})
	}
	return node
}

// clampCost keeps costs non-negative and at two decimal places.
func clampCost(v float64) float64 {
	if v < 0 {
		v = 0
	}
	return math.Round(v*100) / 100
}

// Render walks the annotated tree and produces an indented text report with
// standard branch markers. Operators print their kind, own cost, cardinality
// estimate and filter; relation leaves print just the relation name.
func Render(root *Node) string {
	if root == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(label(root))
	sb.WriteString("\n")
	renderChildren(root, "", &sb)
	return sb.String()
}

func renderChildren(node *Node, prefix string, sb *strings.Builder) {
	for i, child := range node.Children {
		branch, indent := "├── ", "│   "
		if i == len(node.Children)-1 {
			branch, indent = "└── ", "    "
		}
		sb.WriteString(prefix)
		sb.WriteString(branch)
		sb.WriteString(label(child))
		sb.WriteString("\n")
		renderChildren(child, prefix+indent, sb)
	}
}

func label(node *Node) string {
	if node.IsRelation {
		return fmt.Sprintf("Relation: %s", node.Relation)
	}
	filter := node.Filter
	if filter == "" {
		filter = absentFilter
	}
	return fmt.Sprintf("%s || Cost: %.2f || Cardinality: %d || Filter: %s",
		node.Operator, node.OwnCost, node.Rows, filter)
}

// RenderPlan annotates and renders a raw plan in one step.
func RenderPlan(plan *models.PlanNode) string {
	return Render(Annotate(plan))
}
