// Package errors provides the standardized error kinds raised by the analysis engine
// and its collaborators.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode identifies an error kind.
type ErrorCode string

const (
	ErrCodeValidationFailed          ErrorCode = "VALIDATION_FAILED"
	ErrCodeClassificationUnavailable ErrorCode = "CLASSIFICATION_UNAVAILABLE"
	ErrCodeImageRejected             ErrorCode = "IMAGE_REJECTED"
	ErrCodeCatalogMiss               ErrorCode = "CATALOG_MISS"
	ErrCodeCatalogInvalid            ErrorCode = "CATALOG_INVALID"
	ErrCodePersistenceFailed         ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeAnalysisNotFound          ErrorCode = "ANALYSIS_NOT_FOUND"
)

// StandardError is a structured error carrying a code and optional details.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// Is matches any StandardError with the same code, so the Err* sentinels work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation  = &StandardError{Code: ErrCodeValidationFailed}
	ErrUnavailable = &StandardError{Code: ErrCodeClassificationUnavailable}
	ErrRejected    = &StandardError{Code: ErrCodeImageRejected}
	ErrCatalogMiss = &StandardError{Code: ErrCodeCatalogMiss}
	ErrCatalog     = &StandardError{Code: ErrCodeCatalogInvalid}
	ErrPersistence = &StandardError{Code: ErrCodePersistenceFailed}
	ErrNotFound    = &StandardError{Code: ErrCodeAnalysisNotFound}
)

func newError(code ErrorCode, msg, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   msg,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewValidationError reports a malformed property attribute.
func NewValidationError(field, details string) *StandardError {
	return newError(ErrCodeValidationFailed, "invalid attribute "+field, details, false, nil)
}

// NewClassificationUnavailableError wraps a classifier failure or timeout.
func NewClassificationUnavailableError(cause error) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return newError(ErrCodeClassificationUnavailable, "image classifier unavailable", details, true, cause)
}

// NewImageRejectedError reports an image classified as not showing a property.
func NewImageRejectedError(label string) *StandardError {
	return newError(ErrCodeImageRejected, "image does not show a property", "label="+label, false, nil)
}

// NewCatalogMissError reports a category with too few eligible templates.
func NewCatalogMissError(category string, eligible, want int) *StandardError {
	return newError(ErrCodeCatalogMiss, "not enough eligible templates",
		fmt.Sprintf("category=%s eligible=%d want=%d", category, eligible, want), false, nil)
}

// NewCatalogInvalidError reports a malformed catalog asset.
func NewCatalogInvalidError(details string) *StandardError {
	return newError(ErrCodeCatalogInvalid, "invalid prospect catalog", details, false, nil)
}

// NewPersistenceError wraps a storage failure.
func NewPersistenceError(op string, cause error) *StandardError {
	details := op
	if cause != nil {
		details = op + ": " + cause.Error()
	}
	return newError(ErrCodePersistenceFailed, "persistence failure", details, true, cause)
}

// NewNotFoundError reports an unknown analysis id.
func NewNotFoundError(id string) *StandardError {
	return newError(ErrCodeAnalysisNotFound, "analysis not found", "id="+id, false, nil)
}

// CodeOf returns the code of the first StandardError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether err carries a retryable StandardError.
func IsRetryable(err error) bool {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Retryable
	}
	return false
}
