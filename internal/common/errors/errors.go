// Package errors provides the standardized error taxonomy for the intake and
// evaluation pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Synchronous intake failures, surfaced to the submitter.
	ErrCodeValidation           ErrorCode = "VALIDATION_ERROR"
	ErrCodeDuplicateApplication ErrorCode = "DUPLICATE_APPLICATION"

	// Locally recovered pipeline failures, never surfaced to the submitter.
	ErrCodeExtractionFailed       ErrorCode = "EXTRACTION_FAILED"
	ErrCodeScoringFailed          ErrorCode = "SCORING_FAILED"
	ErrCodeScoringTimeout         ErrorCode = "SCORING_TIMEOUT"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeIndexingFailed         ErrorCode = "INDEXING_FAILED"

	// Storage failures.
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"

	// Evaluation engine.
	ErrCodeEvaluationNotFound ErrorCode = "EVALUATION_NOT_FOUND"
	ErrCodeRoleNotFound       ErrorCode = "ROLE_NOT_FOUND"
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

// Is allows errors.Is matching by code against another *StandardError.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code == e.Code
}

// NewValidationError creates a non-retryable validation error rejected before
// any side effect.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Submission failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError creates a non-retryable business-rule conflict:
// an application for the same (email, role) pair already exists.
func NewDuplicateApplicationError(email, roleID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "An application for this role already exists",
		Details:   fmt.Sprintf("email: %s, roleId: %s", email, roleID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionFailedError creates a non-retryable extraction error. The intake
// pipeline recovers locally by continuing with no resume text.
func NewExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtractionFailed,
		Message:   "Resume text extraction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringFailedError creates a retryable scoring error (malformed model
// output, quota, transport).
func NewScoringFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "Scoring engine call failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewScoringTimeoutError creates a retryable scoring timeout error.
func NewScoringTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringTimeout,
		Message:   "Scoring engine call timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a non-retryable notification error.
// Attempts are logged with outcome=failed and never retried automatically.
func NewNotificationSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexingFailedError creates a non-retryable search indexing error. The
// search index is best-effort; the sweep does not replay indexing work.
func NewIndexingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexingFailed,
		Message:   "Search indexing failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable storage error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query error.
func NewQueryExecutionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEvaluationNotFoundError creates the normal not-found result of the
// evaluation deletion operation.
func NewEvaluationNotFoundError(applicantID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEvaluationNotFound,
		Message:   "No evaluation result for applicant in current run",
		Details:   fmt.Sprintf("applicantId: %s", applicantID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRoleNotFoundError creates a non-retryable role lookup error.
func NewRoleNotFoundError(roleID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRoleNotFound,
		Message:   "Role profile not found",
		Details:   fmt.Sprintf("roleId: %s", roleID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err carries the given code, unwrapping as needed.
func IsCode(err error, code ErrorCode) bool {
	var se *StandardError
	return stderrors.As(err, &se) && se.Code == code
}

// CodeOf extracts the code for labelling; non-standard errors map to UNKNOWN.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return "UNKNOWN"
}
