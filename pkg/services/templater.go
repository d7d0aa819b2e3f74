package services

import (
	"strconv"
	"strings"

	"github.com/dkoriadi/query-plans-visualiser/pkg/errors"
	"github.com/dkoriadi/query-plans-visualiser/pkg/models"
)

type templateService struct {
	extractor PredicateExtractor
	logger    Logger
}

// NewTemplateService creates a template service on top of a predicate
// extractor.
func NewTemplateService(extractor PredicateExtractor, logger Logger) TemplateService {
	return &templateService{
		extractor: extractor,
		logger:    logger,
	}
}

// Convert replaces every numeric comparison in the query with a predicate
// token and records the bare attribute behind each token. Comparisons whose
// right-hand side does not reduce to a number are left untouched; if none
// qualify the query cannot be templated.
func (s *templateService) Convert(query string) (*models.QueryTemplate, error) {
	comparisons, err := s.extractor.Extract(query)
	if err != nil {
		return nil, err
	}

	numeric := make([]models.PredicateComparison, 0, len(comparisons))
	for _, c := range comparisons {
		if isNumericLiteral(c.RHS) {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) == 0 {
		return nil, errors.ErrNoNumericPredicates.WithDetail("query", query)
	}

	var sb strings.Builder
	attributes := make([]string, 0, len(numeric))
	cursor := 0
	for _, c := range numeric {
		if c.Start < cursor {
			continue
		}
		sb.WriteString(query[cursor:c.Start])
		sb.WriteString(c.Column)
		sb.WriteString(models.PredicateToken)
		cursor = c.End
		attributes = append(attributes, bareAttribute(c.Column))
	}
	sb.WriteString(query[cursor:])

	template := &models.QueryTemplate{
		Text:       sb.String(),
		Attributes: attributes,
	}

	s.logger.Info("converted query to template",
		"template", template.Text,
		"attributes", attributes)

	return template, nil
}

// Instantiate substitutes the template's tokens with upper-bound predicates
// at the given values, first token first. The template itself is never
// modified.
func (s *templateService) Instantiate(template *models.QueryTemplate, values []float64) string {
	text := template.Text
	for _, v := range values {
		predicate := " <= " + strconv.FormatFloat(v, 'f', -1, 64)
		text = strings.Replace(text, models.PredicateToken, predicate, 1)
	}
	return text
}

// isNumericLiteral reports whether a right-hand side reduces to a number
// once decoration such as quotes is stripped.
func isNumericLiteral(rhs string) bool {
	stripped := stripNonToken(rhs)
	if stripped == "" {
		return false
	}
	_, err := strconv.ParseFloat(stripped, 64)
	return err == nil
}

// stripNonToken removes every character that cannot be part of a numeric
// token, so quoted numbers still qualify while dates and words do not.
func stripNonToken(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r == '.', r == '-':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// bareAttribute strips any relation qualifier from a column reference.
func bareAttribute(column string) string {
	if idx := strings.LastIndex(column, "."); idx >= 0 {
		return column[idx+1:]
	}
	return column
}
