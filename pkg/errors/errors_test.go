package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExploreError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ExploreError
		expected string
	}{
		{
			name: "error without cause",
			err: &ExploreError{
				Code:    CodeTemplateConversion,
				Message: "no numeric predicates",
			},
			expected: "TEMPLATE_CONVERSION_FAILED: no numeric predicates",
		},
		{
			name: "error with cause",
			err: &ExploreError{
				Code:    CodeEngineQuery,
				Message: "explain failed",
				Cause:   fmt.Errorf("underlying error"),
			},
			expected: "ENGINE_QUERY_FAILED: explain failed (caused by: underlying error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestExploreError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying error")
	err := &ExploreError{
		Code:    CodeEngineQuery,
		Message: "explain failed",
		Cause:   cause,
	}

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, &ExploreError{Code: CodeEngineQuery}))
}

func TestExploreError_Is(t *testing.T) {
	err1 := &ExploreError{Code: CodeTooManyPredicates, Message: "three attributes"}
	err2 := &ExploreError{Code: CodeTooManyPredicates, Message: "different message"}
	err3 := &ExploreError{Code: CodeInvalidRequest, Message: "invalid"}
	stdErr := fmt.Errorf("standard error")

	assert.True(t, err1.Is(err2), "errors with same code should match")
	assert.False(t, err1.Is(err3), "errors with different codes should not match")
	assert.False(t, err1.Is(stdErr), "explore error should not match standard error")
}

func TestExploreError_WithDetail(t *testing.T) {
	err := New(CodeEngineQuery, "explain failed")

	err = err.WithDetail("row", 3).WithDetail("col", 7).WithDetail("query", "SELECT 1")

	assert.Equal(t, 3, err.Details["row"])
	assert.Equal(t, 7, err.Details["col"])
	assert.Equal(t, "SELECT 1", err.Details["query"])
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeConnectionFailed, "database connection failed")

	assert.Equal(t, CodeConnectionFailed, err.Code)
	assert.Equal(t, cause, err.Cause)
	assert.Nil(t, Wrap(nil, CodeInternal, "should be nil"))
}

func TestWrapf(t *testing.T) {
	cause := fmt.Errorf("syntax error")
	err := Wrapf(cause, CodeEngineQuery, "failed at grid point (%d,%d)", 2, 5)

	assert.Equal(t, "failed at grid point (2,5)", err.Message)
	assert.Equal(t, cause, err.Cause)
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNoNumericPredicates)

	assert.True(t, IsTemplateConversion(wrapped))
	assert.False(t, IsTemplateConversion(ErrTooManyPredicates))

	assert.True(t, IsTooManyPredicates(ErrTooManyPredicates))
	assert.True(t, IsStatisticsUnavailable(Wrap(fmt.Errorf("no rows"), CodeStatisticsUnavailable, "no histogram")))
	assert.True(t, IsEngineQuery(ErrEngineQuery))
	assert.False(t, IsEngineQuery(fmt.Errorf("plain error")))
}

func TestGetCodeAndMessage(t *testing.T) {
	err := New(CodeStatisticsUnavailable, "no histogram for l_quantity")

	assert.Equal(t, CodeStatisticsUnavailable, GetCode(err))
	assert.Equal(t, "no histogram for l_quantity", GetMessage(err))

	plain := fmt.Errorf("plain error")
	assert.Equal(t, CodeInternal, GetCode(plain))
	assert.Equal(t, "plain error", GetMessage(plain))
}
