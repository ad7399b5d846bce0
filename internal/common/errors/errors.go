// Package errors provides standardized error handling for action dispatch.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnknownActionCode ErrorCode = "UNKNOWN_ACTION_CODE"
	ErrCodeActionDisabled    ErrorCode = "ACTION_DISABLED"
	ErrCodeMissingField      ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidContext    ErrorCode = "INVALID_CONTEXT"

	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendError       ErrorCode = "BACKEND_ERROR"
	ErrCodeResourceNotFound   ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeEmptyDataSet       ErrorCode = "EMPTY_DATA_SET"

	ErrCodePriceConflict     ErrorCode = "PRICE_CONFLICT"
	ErrCodePriceUpdateFailed ErrorCode = "PRICE_UPDATE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewUnknownActionCodeError creates a non-retryable registry lookup error.
func NewUnknownActionCodeError(actionCode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownActionCode,
		Message:   fmt.Sprintf("unknown action code: %s", actionCode),
		Details:   fmt.Sprintf("actionCode: %s", actionCode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionDisabledError creates a non-retryable error for a registered but
// disabled action.
func NewActionDisabledError(actionCode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionDisabled,
		Message:   fmt.Sprintf("action %s is disabled", actionCode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingFieldError creates a non-retryable validation error naming the
// missing field and the operation that needed it.
func NewMissingFieldError(field, operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingField,
		Message:   fmt.Sprintf("%s is required for %s", field, operation),
		Details:   fmt.Sprintf("field: %s, operation: %s", field, operation),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidContextError creates a non-retryable error for a malformed
// additional_context payload.
func NewInvalidContextError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidContext,
		Message:   "additional_context failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnavailableError wraps a transport-level failure reaching the
// listing backend. Retryable by classification, but the dispatcher never
// retries; the flag feeds logging and metric labels only.
func NewBackendUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnavailable,
		Message:   "listing backend unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendError wraps a non-2xx answer from the listing backend.
func NewBackendError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendError,
		Message:   "listing backend request failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceNotFoundError creates a non-retryable not-found error.
func NewResourceNotFoundError(resource, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("%s '%s' not found", resource, id),
		Details:   fmt.Sprintf("resource: %s, id: %s", resource, id),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyDataSetError creates a non-retryable error for an analysis whose
// input set is empty under the "error" empty-data policy.
func NewEmptyDataSetError(analysis, scope string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyDataSet,
		Message:   fmt.Sprintf("no data available for %s", analysis),
		Details:   scope,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPriceConflictError creates a non-retryable optimistic-write error: the
// listing's live price no longer matches the price the caller saw.
func NewPriceConflictError(listingID string, expected, actual float64) *StandardError {
	return &StandardError{
		Code:    ErrCodePriceConflict,
		Message: fmt.Sprintf("price for listing %s changed from %.2f to %.2f since analysis", listingID, expected, actual),
		Details: fmt.Sprintf("listingId: %s, expected: %.2f, actual: %.2f", listingID, expected, actual),
		Metadata: map[string]interface{}{
			"expectedPrice": expected,
			"actualPrice":   actual,
		},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPriceUpdateFailedError wraps a failed price write. The write is neither
// retried nor rolled back; the backend is the sole source of truth.
func NewPriceUpdateFailedError(listingID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePriceUpdateFailed,
		Message:   "price update failed",
		Details:   fmt.Sprintf("listingId: %s, error: %s", listingID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure (including recovered panics).
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   fmt.Sprintf("unexpected error: %v", err),
		Details:   fmt.Sprintf("%v", err),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures any error is carried as a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return NewInternalError(fmt.Errorf("no error provided"))
	}
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ACTION"):
		return "DISPATCH"
	case strings.Contains(codeStr, "FIELD") || strings.Contains(codeStr, "CONTEXT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "BACKEND"):
		return "BACKEND"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "EMPTY"):
		return "DATA"
	case strings.Contains(codeStr, "PRICE"):
		return "WRITE"
	default:
		return "OTHER"
	}
}
