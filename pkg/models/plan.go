// Package models provides data structures used throughout the plan explorer.
package models

// PlanNode is one operator in a query execution plan as produced by the
// engine's JSON EXPLAIN output. Optional fields are explicit so "no filter"
// and "empty filter" stay distinguishable after decoding.
type PlanNode struct {
	NodeType           string  `json:"Node Type"`
	ParentRelationship string  `json:"Parent Relationship,omitempty"`
	Strategy           string  `json:"Strategy,omitempty"`
	StartupCost        float64 `json:"Startup Cost"`
	TotalCost          float64 `json:"Total Cost"`
	PlanRows           int64   `json:"Plan Rows"`
	PlanWidth          int     `json:"Plan Width,omitempty"`

	// Scan leaves
	RelationName  string `json:"Relation Name,omitempty"`
	Alias         string `json:"Alias,omitempty"`
	IndexName     string `json:"Index Name,omitempty"`
	ScanDirection string `json:"Scan Direction,omitempty"`

	// Conditions
	Filter    string `json:"Filter,omitempty"`
	IndexCond string `json:"Index Cond,omitempty"`
	JoinType  string `json:"Join Type,omitempty"`
	HashCond  string `json:"Hash Cond,omitempty"`
	MergeCond string `json:"Merge Cond,omitempty"`

	SortKey []string `json:"Sort Key,omitempty"`

	Plans []*PlanNode `json:"Plans,omitempty"`
}

// HasChildren reports whether the node has sub-plans.
func (n *PlanNode) HasChildren() bool {
	return len(n.Plans) > 0
}

// ExplainOutput is one element of the JSON array returned by
// EXPLAIN (FORMAT JSON). The wrapper carries the root plan and its
// overall planning cost.
type ExplainOutput struct {
	Plan         *PlanNode `json:"Plan"`
	PlanningTime float64   `json:"Planning Time,omitempty"`
}
