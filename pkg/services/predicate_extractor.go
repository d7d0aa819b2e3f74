package services

import (
	"sort"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

// comparisonOperators are the operators a selectivity predicate may use.
// The parser normalizes != to <> before we ever see it.
var comparisonOperators = map[string]bool{
	"<":  true,
	"<=": true,
	">":  true,
	">=": true,
	"<>": true,
}

type predicateExtractor struct {
	logger Logger
}

// NewPredicateExtractor creates a parser-backed predicate extractor.
func NewPredicateExtractor(logger Logger) PredicateExtractor {
	return &predicateExtractor{logger: logger}
}

// Extract parses the query and collects every column-versus-constant
// comparison from its filtering clauses, in textual order.
func (e *predicateExtractor) Extract(query string) ([]models.PredicateComparison, error) {
	parsed, err := pg_query.Parse(query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidRequest, "failed to parse query").
			WithDetail("query", query)
	}
	if len(parsed.Stmts) != 1 {
		return nil, errors.New(errors.CodeInvalidRequest, "expected exactly one statement").
			WithDetail("statements", len(parsed.Stmts))
	}

	selectStmt := parsed.Stmts[0].Stmt.GetSelectStmt()
	if selectStmt == nil {
		return nil, errors.New(errors.CodeInvalidRequest, "only SELECT statements are supported")
	}

	var comparisons []models.PredicateComparison
	e.walk(selectStmt.GetWhereClause(), query, &comparisons)
	for _, item := range selectStmt.GetFromClause() {
		e.walkFrom(item, query, &comparisons)
	}
	e.walk(selectStmt.GetHavingClause(), query, &comparisons)
	for _, item := range selectStmt.GetGroupClause() {
		e.walk(item, query, &comparisons)
	}
	for _, item := range selectStmt.GetSortClause() {
		if sortBy := item.GetSortBy(); sortBy != nil {
			e.walk(sortBy.GetNode(), query, &comparisons)
		}
	}

	sort.SliceStable(comparisons, func(i, j int) bool {
		return comparisons[i].Start < comparisons[j].Start
	})

	e.logger.Debug("extracted predicate comparisons",
		"query", query,
		"count", len(comparisons))

	return comparisons, nil
}

// walkFrom descends join trees so ON clauses are inspected too.
func (e *predicateExtractor) walkFrom(node *pg_query.Node, query string, out *[]models.PredicateComparison) {
	if node == nil {
		return
	}
	if join := node.GetJoinExpr(); join != nil {
		e.walkFrom(join.GetLarg(), query, out)
		e.walkFrom(join.GetRarg(), query, out)
		e.walk(join.GetQuals(), query, out)
	}
}

// walk descends a boolean expression tree collecting qualifying comparisons.
func (e *predicateExtractor) walk(node *pg_query.Node, query string, out *[]models.PredicateComparison) {
	if node == nil {
		return
	}

	if boolExpr := node.GetBoolExpr(); boolExpr != nil {
		for _, arg := range boolExpr.GetArgs() {
			e.walk(arg, query, out)
		}
		return
	}

	aExpr := node.GetAExpr()
	if aExpr == nil || aExpr.GetKind() != pg_query.A_Expr_Kind_AEXPR_OP {
		return
	}
	if len(aExpr.GetName()) != 1 {
		return
	}
	opName := aExpr.GetName()[0].GetString_()
	if opName == nil || !comparisonOperators[opName.Sval] {
		return
	}

	columnRef := unwrapColumnRef(aExpr.GetLexpr())
	if columnRef == nil {
		return
	}
	constant := unwrapConst(aExpr.GetRexpr())
	if constant == nil {
		return
	}

	column := columnName(columnRef)
	if column == "" {
		return
	}

	start := int(columnRef.GetLocation())
	end := constantEnd(query, int(constant.GetLocation()))
	if start < 0 || end <= start || end > len(query) {
		return
	}

	*out = append(*out, models.PredicateComparison{
		Column:   column,
		Operator: opName.Sval,
		RHS:      query[int(constant.GetLocation()):end],
		Start:    start,
		End:      end,
	})
}

// unwrapColumnRef returns the column reference behind a node, looking
// through explicit casts.
func unwrapColumnRef(node *pg_query.Node) *pg_query.ColumnRef {
	if node == nil {
		return nil
	}
	if ref := node.GetColumnRef(); ref != nil {
		return ref
	}
	if cast := node.GetTypeCast(); cast != nil {
		return unwrapColumnRef(cast.GetArg())
	}
	return nil
}

// unwrapConst returns the constant behind a node, looking through casts.
func unwrapConst(node *pg_query.Node) *pg_query.A_Const {
	if node == nil {
		return nil
	}
	if c := node.GetAConst(); c != nil {
		return c
	}
	if cast := node.GetTypeCast(); cast != nil {
		return unwrapConst(cast.GetArg())
	}
	return nil
}

// columnName joins a column reference's fields into dotted form, e.g.
// "lineitem.l_quantity".
func columnName(ref *pg_query.ColumnRef) string {
	parts := make([]string, 0, len(ref.GetFields()))
	for _, field := range ref.GetFields() {
		s := field.GetString_()
		if s == nil {
			return ""
		}
		parts = append(parts, s.Sval)
	}
	return strings.Join(parts, ".")
}

// constantEnd finds the byte offset one past a constant literal that starts
// at the given location. Quoted strings run to the closing quote; everything
// else runs to the end of the bare token.
func constantEnd(query string, loc int) int {
	if loc < 0 || loc >= len(query) {
		return -1
	}
	if query[loc] == '\'' {
		for i := loc + 1; i < len(query); i++ {
			if query[i] == '\'' {
				return i + 1
			}
		}
		return -1
	}
	end := loc
	for end < len(query) && isTokenChar(query[end]) {
		end++
	}
	return end
}

func isTokenChar(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	case c == '.', c == '_', c == '-', c == '+':
		return true
	}
	return false
}
