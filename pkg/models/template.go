package models

// PredicateToken is the placeholder substituted for a qualifying comparison
// when a query is converted into a reusable template.
const PredicateToken = " :varies"

// PredicateComparison is one numeric-candidate comparison discovered in a
// query's filtering clauses. Start and End delimit the full comparison text
// within the original query string.
type PredicateComparison struct {
	Column   string // referenced column, possibly table-qualified
	Operator string // one of < <= > >= <> !=
	RHS      string // right-hand operand literal text
	Start    int    // byte offset of the comparison in the query
	End      int    // byte offset one past the comparison
}

// Text returns the comparison as it appears in the query.
func (c PredicateComparison) Text(query string) string {
	if c.Start < 0 || c.End > len(query) || c.Start >= c.End {
		return ""
	}
	return query[c.Start:c.End]
}

// QueryTemplate is a query whose qualifying comparisons have been replaced
// by predicate tokens. Attributes holds the bare column name behind each
// token, in discovery order; the number of tokens in Text always equals
// len(Attributes).
type QueryTemplate struct {
	Text       string
	Attributes []string
}

// PlanIndexGrid assigns every sampled selectivity point the 1-based index of
// the distinct plan the engine chose there. The 1-D case is a single row.
type PlanIndexGrid struct {
	Cells []int // row-major
	Rows  int
	Cols  int
}

// NewPlanIndexGrid creates an empty grid of the given shape.
func NewPlanIndexGrid(rows, cols int) *PlanIndexGrid {
	return &PlanIndexGrid{
		Cells: make([]int, 0, rows*cols),
		Rows:  rows,
		Cols:  cols,
	}
}

// At returns the plan index at grid position (row, col).
func (g *PlanIndexGrid) At(row, col int) int {
	return g.Cells[row*g.Cols+col]
}

// Enumeration is the outcome of sweeping the selectivity space: the distinct
// plans discovered (index+1 is the externally visible plan number) and the
// per-cell assignment.
type Enumeration struct {
	Distinct []*PlanNode
	Grid     *PlanIndexGrid
}

// SelectivityRange is the bounding box of grid cells assigned to one plan.
// Bounds are inclusive grid coordinates, not percentages; in the 1-D case
// the row pair is always (0,0) and only the column pair is meaningful.
type SelectivityRange struct {
	PlanIndex int
	RowMin    int
	RowMax    int
	ColMin    int
	ColMax    int
}

// ResultStatus discriminates between a full exploration result and the
// actual-plan-only fallback after a failed template conversion.
type ResultStatus int

const (
	// StatusFull means the selectivity space was enumerated.
	StatusFull ResultStatus = iota
	// StatusActualOnly means only the literal query's plan is available.
	StatusActualOnly
)

// ExplorationResult is everything the presentation layer needs to display
// one top-level request.
type ExplorationResult struct {
	Status        ResultStatus
	Query         string
	Template      *QueryTemplate
	Attributes    []string
	DistinctPlans []*PlanNode
	Grid          *PlanIndexGrid
	Ranges        []SelectivityRange
	Explanations  []string
	ActualPlan    *PlanNode

	// ActualPlanIndex is the 1-based plan number the actual plan matched,
	// or 0 when no enumerated plan is equivalent to it.
	ActualPlanIndex int

	// Warning carries the explanatory note for the fallback path.
	Warning string
}
