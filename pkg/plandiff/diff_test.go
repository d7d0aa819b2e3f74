package plandiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

func seqScanPlan(cost float64, rows int64, filter string) *models.PlanNode {
	return &models.PlanNode{
		NodeType:     "Seq Scan",
		TotalCost:    cost,
		PlanRows:     rows,
		RelationName: "lineitem",
		Filter:       filter,
	}
}

func hashJoinPlan(outer, inner *models.PlanNode) *models.PlanNode {
	return &models.PlanNode{
		NodeType:  "Hash Join",
		TotalCost: outer.TotalCost + inner.TotalCost + 100,
		PlanRows:  500,
		Plans: []*models.PlanNode{
			outer,
			{NodeType: "Hash", TotalCost: inner.TotalCost, PlanRows: inner.PlanRows, Plans: []*models.PlanNode{inner}},
		},
	}
}

func TestEquivalentReflexive(t *testing.T) {
	plan := hashJoinPlan(seqScanPlan(632, 20000, "(l_quantity <= 24.5)"), seqScanPlan(10.7, 70, ""))

	assert.True(t, Equivalent(plan, plan))
	assert.Empty(t, Compare(plan, plan))
}

func TestEquivalentToleratesCostAndRowDrift(t *testing.T) {
	a := hashJoinPlan(seqScanPlan(632, 20000, "(l_quantity <= 24.5)"), seqScanPlan(10.7, 70, ""))
	b := hashJoinPlan(seqScanPlan(981, 4800, "(l_quantity <= 75.5)"), seqScanPlan(10.7, 70, ""))

	changes := Compare(a, b)
	assert.NotEmpty(t, changes, "cost and filter drift must still be reported")
	for _, c := range changes {
		assert.NotEqual(t, FieldNodeType, c.Field)
	}
	assert.True(t, Equivalent(a, b))
}

func TestEquivalentRejectsOperatorSubstitution(t *testing.T) {
	a := seqScanPlan(632, 20000, "")
	b := &models.PlanNode{NodeType: "Index Scan", TotalCost: 632, PlanRows: 20000, RelationName: "lineitem"}

	changes := Compare(a, b)
	require.NotEmpty(t, changes)
	assert.Equal(t, FieldNodeType, changes[0].Field)
	assert.Equal(t, "Seq Scan", changes[0].Old)
	assert.Equal(t, "Index Scan", changes[0].New)
	assert.False(t, Equivalent(a, b))
}

func TestEquivalentRejectsInsertionAndDeletion(t *testing.T) {
	flat := seqScanPlan(632, 20000, "")
	nested := &models.PlanNode{
		NodeType:  "Seq Scan",
		TotalCost: 632,
		PlanRows:  20000,
		Plans:     []*models.PlanNode{{NodeType: "Sort", TotalCost: 50, PlanRows: 20000}},
	}

	assert.False(t, Equivalent(flat, nested), "extra child on the right is a strategy change")
	assert.False(t, Equivalent(nested, flat), "extra child on the left is a strategy change")

	changes := Compare(flat, nested)
	require.Len(t, changes, 1)
	assert.Equal(t, Added, changes[0].Kind)
	assert.Equal(t, FieldNodeType, changes[0].Field)
	assert.Equal(t, "Plan/Plans[0]", changes[0].Path)

	reverse := Compare(nested, flat)
	require.Len(t, reverse, 1)
	assert.Equal(t, Removed, reverse[0].Kind)
}

func TestEquivalentIsSymmetric(t *testing.T) {
	plans := []*models.PlanNode{
		seqScanPlan(632, 20000, ""),
		seqScanPlan(981, 4800, "(l_quantity <= 75.5)"),
		hashJoinPlan(seqScanPlan(632, 20000, ""), seqScanPlan(10.7, 70, "")),
		{NodeType: "Index Scan", TotalCost: 120, PlanRows: 100, IndexName: "lineitem_pkey"},
	}

	for i, a := range plans {
		for j, b := range plans {
			assert.Equalf(t, Equivalent(a, b), Equivalent(b, a),
				"equivalence must be symmetric for plans %d and %d", i, j)
		}
	}
}

func TestCompareReportsScalarChanges(t *testing.T) {
	a := seqScanPlan(632, 20000, "(l_quantity <= 24.5)")
	b := seqScanPlan(981, 4800, "(l_quantity <= 75.5)")

	changes := Compare(a, b)
	fields := make(map[string]Change, len(changes))
	for _, c := range changes {
		fields[c.Field] = c
	}

	require.Contains(t, fields, "Total Cost")
	assert.Equal(t, 632.0, fields["Total Cost"].Old)
	assert.Equal(t, 981.0, fields["Total Cost"].New)
	require.Contains(t, fields, "Plan Rows")
	require.Contains(t, fields, "Filter")
	assert.Equal(t, "Plan", fields["Filter"].Path)
	assert.Equal(t, "modified", fields["Filter"].Kind.String())
}
