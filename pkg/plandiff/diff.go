// Package plandiff computes structural differences between query execution
// plans and decides whether two plans represent the same strategy.
package plandiff

import (
	"fmt"

	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// ChangeKind classifies one reported difference.
type ChangeKind int

const (
	// Modified means a field holds different values on the two sides.
	Modified ChangeKind = iota
	// Added means a node exists only on the right side.
	Added
	// Removed means a node exists only on the left side.
	Removed
)

// String returns the kind name.
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "modified"
	}
}

// FieldNodeType is the field name carried by every change that touches an
// operator kind, including whole-node insertions and deletions.
const FieldNodeType = "Node Type"

// Change is one difference between two plan trees at a given path.
type Change struct {
	Path  string
	Field string
	Kind  ChangeKind
	Old   interface{}
	New   interface{}
}

// Compare walks two plan trees in lockstep and returns every difference as a
// typed change record. Children are matched by position; a child present on
// only one side is reported as a single Added or Removed change for the whole
// subtree, carrying the node-type field. Compare(a, b) and Compare(b, a)
// report the same paths with Old/New and Added/Removed swapped, so any
// predicate over field names is symmetric.
func Compare(a, b *models.PlanNode) []Change {
	var changes []Change
	compareNodes(a, b, "Plan", &changes)
	return changes
}

func compareNodes(a, b *models.PlanNode, path string, changes *[]Change) {
	if a == nil && b == nil {
		return
	}
	if a == nil {
		*changes = append(*changes, Change{Path: path, Field: FieldNodeType, Kind: Added, New: b.NodeType})
		return
	}
	if b == nil {
		*changes = append(*changes, Change{Path: path, Field: FieldNodeType, Kind: Removed, Old: a.NodeType})
		return
	}

	if a.NodeType != b.NodeType {
		*changes = append(*changes, Change{Path: path, Field: FieldNodeType, Kind: Modified, Old: a.NodeType, New: b.NodeType})
	}
	compareScalar(path, "Strategy", a.Strategy, b.Strategy, changes)
	compareScalar(path, "Startup Cost", a.StartupCost, b.StartupCost, changes)
	compareScalar(path, "Total Cost", a.TotalCost, b.TotalCost, changes)
	compareScalar(path, "Plan Rows", a.PlanRows, b.PlanRows, changes)
	compareScalar(path, "Plan Width", a.PlanWidth, b.PlanWidth, changes)
	compareScalar(path, "Relation Name", a.RelationName, b.RelationName, changes)
	compareScalar(path, "Alias", a.Alias, b.Alias, changes)
	compareScalar(path, "Index Name", a.IndexName, b.IndexName, changes)
	compareScalar(path, "Filter", a.Filter, b.Filter, changes)
	compareScalar(path, "Index Cond", a.IndexCond, b.IndexCond, changes)
	compareScalar(path, "Join Type", a.JoinType, b.JoinType, changes)
	compareScalar(path, "Hash Cond", a.HashCond, b.HashCond, changes)
	compareScalar(path, "Merge Cond", a.MergeCond, b.MergeCond, changes)

	n := len(a.Plans)
	if len(b.Plans) > n {
		n = len(b.Plans)
	}
	for i := 0; i < n; i++ {
		childPath := fmt.Sprintf("%s/Plans[%d]", path, i)
		var childA, childB *models.PlanNode
		if i < len(a.Plans) {
			childA = a.Plans[i]
		}
		if i < len(b.Plans) {
			childB = b.Plans[i]
		}
		compareNodes(childA, childB, childPath, changes)
	}
}

func compareScalar(path, field string, oldVal, newVal interface{}, changes *[]Change) {
	if oldVal != newVal {
		*changes = append(*changes, Change{Path: path, Field: field, Kind: Modified, Old: oldVal, New: newVal})
	}
}

// Equivalent reports whether two plans represent the same execution strategy.
// Differences in costs, row estimates, filter text and other per-operator
// detail are tolerated; any difference touching an operator kind anywhere in
// the tree, including operators present on only one side, makes the plans
// distinct.
func Equivalent(a, b *models.PlanNode) bool {
	for _, change := range Compare(a, b) {
		if change.Field == FieldNodeType {
			return false
		}
	}
	return true
}
