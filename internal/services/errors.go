package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/review"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")

	// Assessment specific errors
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrSubjectNotFound    = errors.New("subject not found")

	// Questionnaire specific errors
	ErrQuestionnaireNotFound = errors.New("questionnaire version not found")
	ErrNoActiveQuestionnaire = errors.New("no active questionnaire version")
	ErrLookupMiss            = catalog.ErrLookupMiss

	// Review workflow errors
	ErrConcurrencyConflict     = errors.New("assessment was modified concurrently, retry")
	ErrInvalidReviewTransition = review.ErrInvalidTransition

	// Permission errors
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	ActorID    string `json:"actor_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: actor %s cannot %s %s %s - %s",
		pe.ActorID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

func (pe *PermissionError) Unwrap() error {
	return ErrInsufficientPermissions
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(actorID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		ActorID:    actorID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// mapRepositoryError converts storage sentinels into service errors
func mapRepositoryError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFoundError(err):
		return fmt.Errorf("%w: %v", notFound, err)
	case errors.Is(err, repositories.ErrStateConflict):
		return fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
	default:
		return err
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrSubjectNotFound) ||
		errors.Is(err, ErrQuestionnaireNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInsufficientPermissions)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	if errors.As(err, &single) {
		return true
	}
	var incomplete *apperrors.IncompleteAnswerSetError
	return errors.As(err, &incomplete)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict) ||
		errors.Is(err, ErrInvalidReviewTransition)
}

// IsConfiguration checks if error is a data seeding or setup defect
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNoActiveQuestionnaire) ||
		errors.Is(err, ErrLookupMiss) ||
		apperrors.IsConfigurationError(err)
}
