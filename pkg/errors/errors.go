// Package errors provides standardized error types for the plan explorer.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the exploration pipeline
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeTemplateConversion    = "TEMPLATE_CONVERSION_FAILED"
	CodeTooManyPredicates     = "TOO_MANY_PREDICATES"
	CodeStatisticsUnavailable = "STATISTICS_UNAVAILABLE"
	CodeEngineQuery           = "ENGINE_QUERY_FAILED"
	CodeConnectionFailed      = "CONNECTION_FAILED"
	CodeInternal              = "INTERNAL_ERROR"
)

// ExploreError represents an exploration error with code, message, and optional details.
type ExploreError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface.
func (e *ExploreError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ExploreError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ExploreError) Is(target error) bool {
	t, ok := target.(*ExploreError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetails adds details to the error.
func (e *ExploreError) WithDetails(details map[string]interface{}) *ExploreError {
	e.Details = details
	return e
}

// WithDetail adds a single detail to the error.
func (e *ExploreError) WithDetail(key string, value interface{}) *ExploreError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Common errors
var (
	ErrNoNumericPredicates = &ExploreError{Code: CodeTemplateConversion, Message: "no numeric predicates survive filtering"}
	ErrTooManyPredicates   = &ExploreError{Code: CodeTooManyPredicates, Message: "more than two predicate attributes"}
	ErrStatsUnavailable    = &ExploreError{Code: CodeStatisticsUnavailable, Message: "column statistics unavailable"}
	ErrEngineQuery         = &ExploreError{Code: CodeEngineQuery, Message: "engine rejected query"}
	ErrConnectionFailed    = &ExploreError{Code: CodeConnectionFailed, Message: "database connection failed"}
	ErrInvalidQuery        = &ExploreError{Code: CodeInvalidRequest, Message: "invalid query"}
)

// New creates a new ExploreError with the given code and message.
func New(code, message string) *ExploreError {
	return &ExploreError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an ExploreError.
func Wrap(err error, code, message string) *ExploreError {
	if err == nil {
		return nil
	}
	return &ExploreError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code, format string, args ...interface{}) *ExploreError {
	if err == nil {
		return nil
	}
	return &ExploreError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   err,
	}
}

// IsTemplateConversion reports whether an error is a template conversion failure.
// This is the only recoverable error in the pipeline: the caller falls back to
// requesting just the actual plan.
func IsTemplateConversion(err error) bool {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Code == CodeTemplateConversion
	}
	return false
}

// IsTooManyPredicates reports whether an error is a predicate count violation.
func IsTooManyPredicates(err error) bool {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Code == CodeTooManyPredicates
	}
	return false
}

// IsStatisticsUnavailable reports whether an error is a statistics lookup failure.
func IsStatisticsUnavailable(err error) bool {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Code == CodeStatisticsUnavailable
	}
	return false
}

// IsEngineQuery reports whether an error is an engine round-trip failure.
func IsEngineQuery(err error) bool {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Code == CodeEngineQuery
	}
	return false
}

// GetCode extracts the error code from an error.
func GetCode(err error) string {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Code
	}
	return CodeInternal
}

// GetMessage extracts the error message from an error.
func GetMessage(err error) string {
	var exploreErr *ExploreError
	if errors.As(err, &exploreErr) {
		return exploreErr.Message
	}
	return err.Error()
}
