package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/review"
	"github.com/SAP-F-2025/suggestibility-service/internal/scoring"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ===== PERMISSION CHECKS =====

// canViewSubject allows the subject themselves and any clinician or admin
func canViewSubject(actor models.Actor, subjectID string) bool {
	if actor.Role.AtLeast(models.RoleClinician) {
		return true
	}
	return actor.Role.IsValid() && actor.ID != "" && actor.ID == subjectID
}

func requireClinician(actor models.Actor, resourceID, resource, action string) error {
	if !actor.Role.IsValid() {
		return ErrUnauthorized
	}
	if !review.CanReview(actor.Role) {
		return NewPermissionError(actor.ID, resourceID, resource, action, "clinician role required")
	}
	return nil
}

func requireAdmin(actor models.Actor, resourceID, resource, action string) error {
	if !actor.Role.IsValid() {
		return ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return NewPermissionError(actor.ID, resourceID, resource, action, "admin role required")
	}
	return nil
}

// ===== REVIEW TRAIL =====

// systemActor performs automatic review transitions
var systemActor = models.Actor{ID: models.SystemActorID, Role: models.RoleAdmin}

// autoFlag moves a Submitted record to Flagged on behalf of the system inside tx
// and records the triggering reasons. It returns the event to publish once tx
// commits. The update is conditional on the record still being Submitted, so a
// concurrent transition surfaces as repositories.ErrStateConflict.
func autoFlag(ctx context.Context, repo repositories.Repository, tx *gorm.DB, a *models.SuggestibilityAssessment, reasons []string, now time.Time) (*events.AssessmentEvent, error) {
	if err := repo.Assessment().UpdateReviewState(ctx, tx, a.ID, models.ReviewSubmitted, models.ReviewFlagged,
		repositories.ReviewStateUpdate{ActorID: systemActor.ID, At: now}); err != nil {
		return nil, fmt.Errorf("failed to flag assessment: %w", err)
	}

	from := models.ReviewSubmitted
	reason := strings.Join(reasons, "; ")
	flagged := newReviewEvent(a.ID, models.ReviewActionFlagged, &from, models.ReviewFlagged,
		systemActor, &reason, map[string]interface{}{"reasons": reasons, "automatic": true}, now)
	if err := repo.ReviewEvent().Create(ctx, tx, flagged); err != nil {
		return nil, fmt.Errorf("failed to record flag: %w", err)
	}

	flaggedBy := systemActor.ID
	a.ReviewState = models.ReviewFlagged
	a.FlaggedAt = &now
	a.FlaggedBy = &flaggedBy
	return events.NewAssessmentFlaggedEvent(a, models.ReviewActionFlagged, systemActor.ID, reasons, now), nil
}

func newReviewEvent(
	assessmentID string,
	action models.ReviewAction,
	from *models.ReviewState,
	to models.ReviewState,
	actor models.Actor,
	reason *string,
	metadata map[string]interface{},
	at time.Time,
) *models.AssessmentReviewEvent {
	event := &models.AssessmentReviewEvent{
		ID:           uuid.NewString(),
		AssessmentID: assessmentID,
		Action:       action,
		FromState:    from,
		ToState:      to,
		ActorID:      actor.ID,
		ActorRole:    actor.Role,
		Reason:       reason,
		CreatedAt:    at,
	}
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			event.Metadata = datatypes.JSON(data)
		}
	}
	return event
}

// ===== RESPONSES =====

// responseFor decodes the stored answers and attaches the interpretation. The
// per-answer breakdown is skipped when the record's version cannot be loaded,
// and undecodable review reasons are logged and shown as an empty list.
func responseFor(ctx context.Context, catalogs catalog.Provider, logger *slog.Logger, assessment *models.SuggestibilityAssessment) (*AssessmentResponse, error) {
	answers, err := assessment.AnswerSet()
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored answers: %w", err)
	}

	c, err := catalogs.GetVersion(ctx, assessment.QuestionnaireVersionID)
	if err != nil {
		logger.Warn("Questionnaire version unavailable for stored assessment",
			"assessment_id", assessment.ID,
			"version_id", assessment.QuestionnaireVersionID,
			"error", err)
		c = nil
	}

	reasons, err := assessment.ReasonList()
	if err != nil {
		logger.Error("Stored review reasons are unreadable",
			"assessment_id", assessment.ID,
			"error", err)
		reasons = nil
	}
	return buildAssessmentResponse(assessment, reasons, answers, c), nil
}

func buildAssessmentResponse(a *models.SuggestibilityAssessment, reasons []string, answers models.AnswerSet, c *catalog.Catalog) *AssessmentResponse {
	resp := &AssessmentResponse{
		SuggestibilityAssessment: a,
		ReviewReasons:            reasons,
		Answers:                  answers,
		Interpretation:           scoring.Interpret(a.SuggestibilityType, a.PhysicalPercentage, a.EmotionalPercentage),
	}
	if resp.ReviewReasons == nil {
		resp.ReviewReasons = []string{}
	}
	if c != nil {
		breakdown := scoring.BreakdownAnswers(answers, c)
		resp.AnswerBreakdown = &breakdown
	}
	return resp
}

// ===== EVENT PUBLISHING =====

// publishAll sends events collected inside a committed transaction. Failures are
// logged and never undo the write.
func publishAll(ctx context.Context, publisher events.EventPublisher, logger *slog.Logger, pending []*events.AssessmentEvent) {
	if publisher == nil {
		return
	}
	for _, event := range pending {
		if err := publisher.PublishAssessmentEvent(ctx, event); err != nil {
			logger.Error("Failed to publish assessment event",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
		}
	}
}
