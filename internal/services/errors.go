package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/assessment-engine/internal/errors"
	"github.com/SAP-F-2025/assessment-engine/internal/grading"
	"github.com/SAP-F-2025/assessment-engine/internal/repositories"
	"github.com/SAP-F-2025/assessment-engine/internal/selector"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound   = errors.New("practice session not found")
	ErrSessionCompleted  = errors.New("practice session is completed")
	ErrSessionHasNoLink  = errors.New("practice session has no linked passage")
	ErrQuestionNotServed = errors.New("question was not served in this session")
	ErrAttemptRecorded   = errors.New("question already answered in this session")

	// Question specific errors
	ErrQuestionNotFound = errors.New("question not found")

	// Grading specific errors
	ErrCoreNotFound       = errors.New("assessment core not found")
	ErrWrapperNotFound    = errors.New("assessment wrapper not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAnalysisNotFound   = errors.New("analysis not found")
	ErrBonusNotInCore     = errors.New("bonus question is not part of the core")

	// ErrConcurrentUpdate is returned when optimistic retries are exhausted.
	ErrConcurrentUpdate = errors.New("too many concurrent updates")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrCoreNotFound) ||
		errors.Is(err, ErrWrapperNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrAnalysisNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrBonusNotInCore) ||
		errors.Is(err, ErrQuestionNotServed) ||
		errors.Is(err, ErrSessionHasNoLink) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrConcurrentUpdate) ||
		errors.Is(err, repositories.ErrVersionConflict) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrAttemptRecorded)
}

// IsStructureMismatch reports a submission that cannot be aligned with its core.
func IsStructureMismatch(err error) bool {
	return errors.Is(err, grading.ErrStructureMismatch)
}

// IsExhausted reports that a selection ran out of questions. It is an
// expected end of a session, not a failure.
func IsExhausted(err error) bool {
	switch selector.CodeOf(err) {
	case selector.CodeEndOfQuestions, selector.CodeNoMoreLinkQuestions:
		return true
	}
	return false
}
