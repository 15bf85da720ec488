// Package errors provides standardized error handling for the search service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation / contract errors surfaced to the caller.
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidOperator  ErrorCode = "INVALID_OPERATOR"
	ErrCodeUnknownField     ErrorCode = "UNKNOWN_FIELD"

	// Store errors. Remote failures are recovered locally and never
	// surfaced; local corruption degrades to an empty collection.
	ErrCodeRemoteUnavailable ErrorCode = "REMOTE_UNAVAILABLE"
	ErrCodeLocalStoreCorrupt ErrorCode = "LOCAL_STORE_CORRUPT"
	ErrCodeLocalStoreFailed  ErrorCode = "LOCAL_STORE_FAILED"

	// Record search backends.
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed    ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout        ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeQueryNotFound        ErrorCode = "QUERY_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is supports errors.Is matching on the error code.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the ErrorCode from an error, or empty when it is not a
// StandardError.
func CodeOf(err error) ErrorCode {
	if se, ok := err.(*StandardError); ok {
		return se.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable validation error.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidOperatorError creates a non-retryable operator contract error.
func NewInvalidOperatorError(fieldID, operator string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidOperator,
		Message:   "Operator not valid for field",
		Details:   fmt.Sprintf("fieldId: %s, operator: %s", fieldID, operator),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownFieldError creates a non-retryable unknown field error.
func NewUnknownFieldError(fieldID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownField,
		Message:   "Field is not registered in the search catalog",
		Details:   fmt.Sprintf("fieldId: %s", fieldID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRemoteUnavailableError creates a retryable remote store error.
func NewRemoteUnavailableError(operation string, err error) *StandardError {
	details := fmt.Sprintf("operation: %s", operation)
	if err != nil {
		details = fmt.Sprintf("operation: %s, error: %s", operation, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeRemoteUnavailable,
		Message:   "Remote query store unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLocalStoreCorruptError creates a non-retryable corruption error.
// Callers recover by treating the collection as empty.
func NewLocalStoreCorruptError(namespace string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocalStoreCorrupt,
		Message:   "Local store collection failed to parse",
		Details:   fmt.Sprintf("namespace: %s, error: %s", namespace, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLocalStoreFailedError creates a retryable local store I/O error.
func NewLocalStoreFailedError(namespace string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocalStoreFailed,
		Message:   "Local store operation failed",
		Details:   fmt.Sprintf("namespace: %s, error: %s", namespace, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable record query error.
func NewQueryExecutionFailedError(backend string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Record query execution error",
		Details:   fmt.Sprintf("backend: %s, error: %s", backend, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search backend error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search index query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Search index query timeout",
		Details:   "query exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryNotFoundError creates a non-retryable not-found error.
func NewQueryNotFoundError(id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryNotFound,
		Message:   "Saved query not found",
		Details:   fmt.Sprintf("queryId: %s", id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
