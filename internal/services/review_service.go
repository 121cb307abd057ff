package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/review"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
	"gorm.io/gorm"
)

type reviewService struct {
	repo      repositories.Repository
	catalogs  catalog.Provider
	publisher events.EventPublisher
	metrics   metrics.Recorder
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	now       func() time.Time
}

func NewReviewService(
	repo repositories.Repository,
	catalogs catalog.Provider,
	publisher events.EventPublisher,
	recorder metrics.Recorder,
	v *validator.Validator,
	logger *slog.Logger,
) ReviewService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &reviewService{
		repo:      repo,
		catalogs:  catalogs,
		publisher: publisher,
		metrics:   recorder,
		validator: v,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "suggestibility", Component: "review"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *reviewService) Flag(ctx context.Context, actor models.Actor, id string, req *FlagAssessmentRequest) (*AssessmentResponse, error) {
	op := s.opLogger.WithOperation(ctx, "flag_assessment", actor.ID)
	resp, err := s.flag(ctx, actor, id, req)
	op.LogResult(id, "assessment", err)
	return resp, err
}

func (s *reviewService) flag(ctx context.Context, actor models.Actor, id string, req *FlagAssessmentRequest) (*AssessmentResponse, error) {
	if !actor.Role.IsValid() {
		return nil, ErrUnauthorized
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assessment, err := s.getAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !review.CanFlag(actor, assessment.SubjectID) {
		return nil, NewPermissionError(actor.ID, id, "assessment", "flag", "not owner or insufficient permissions")
	}

	transition, err := review.Flag(assessment.ReviewState)
	if err != nil {
		return nil, err
	}

	now := s.now()
	reason := strings.TrimSpace(req.Reason)
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assessment().UpdateReviewState(ctx, tx, id, transition.From, transition.To,
			repositories.ReviewStateUpdate{ActorID: actor.ID, At: now}); err != nil {
			return err
		}
		from := transition.From
		event := newReviewEvent(id, transition.Action, &from, transition.To, actor, &reason,
			map[string]interface{}{"automatic": false}, now)
		return s.repo.ReviewEvent().Create(ctx, tx, event)
	})
	if err != nil {
		return nil, s.transitionError(err, id)
	}

	s.metrics.AssessmentFlagged(metrics.TriggerManual)
	s.opLogger.LogAuditEvent(ctx, AuditEvent{
		Action:       transition.Action,
		Actor:        actor,
		AssessmentID: id,
		FromState:    transition.From,
		ToState:      transition.To,
		Timestamp:    now,
		Metadata:     map[string]interface{}{"reason": reason},
	})

	updated, err := s.getAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	publishAll(ctx, s.publisher, s.logger, []*events.AssessmentEvent{
		events.NewAssessmentFlaggedEvent(updated, transition.Action, actor.ID, []string{reason}, now),
	})
	return responseFor(ctx, s.catalogs, s.logger, updated)
}

func (s *reviewService) Review(ctx context.Context, actor models.Actor, id string, req *ReviewAssessmentRequest) (*AssessmentResponse, error) {
	op := s.opLogger.WithOperation(ctx, "review_assessment", actor.ID)
	resp, err := s.decide(ctx, actor, id, req)
	op.LogResult(id, "assessment", err)
	return resp, err
}

func (s *reviewService) decide(ctx context.Context, actor models.Actor, id string, req *ReviewAssessmentRequest) (*AssessmentResponse, error) {
	if err := requireClinician(actor, id, "assessment", "review"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	assessment, err := s.getAssessment(ctx, id)
	if err != nil {
		return nil, err
	}

	transition, err := review.Decide(assessment.ReviewState, *req.Approved)
	if err != nil {
		return nil, err
	}

	var notes *string
	if req.Notes != nil {
		if trimmed := strings.TrimSpace(*req.Notes); trimmed != "" {
			notes = &trimmed
		}
	}

	now := s.now()
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assessment().UpdateReviewState(ctx, tx, id, transition.From, transition.To,
			repositories.ReviewStateUpdate{ActorID: actor.ID, At: now, Notes: notes}); err != nil {
			return err
		}
		from := transition.From
		event := newReviewEvent(id, transition.Action, &from, transition.To, actor, notes, nil, now)
		return s.repo.ReviewEvent().Create(ctx, tx, event)
	})
	if err != nil {
		return nil, s.transitionError(err, id)
	}

	s.metrics.ReviewDecided(transition.To)
	s.opLogger.LogAuditEvent(ctx, AuditEvent{
		Action:       transition.Action,
		Actor:        actor,
		AssessmentID: id,
		FromState:    transition.From,
		ToState:      transition.To,
		Timestamp:    now,
		Metadata:     map[string]interface{}{"has_notes": notes != nil},
	})

	updated, err := s.getAssessment(ctx, id)
	if err != nil {
		return nil, err
	}
	publishAll(ctx, s.publisher, s.logger, []*events.AssessmentEvent{
		events.NewAssessmentReviewedEvent(updated, transition.To, actor.ID, notes != nil, now),
	})
	return responseFor(ctx, s.catalogs, s.logger, updated)
}

func (s *reviewService) PendingReviews(ctx context.Context, actor models.Actor, limit, offset int) (*PendingReviewsResponse, error) {
	if err := requireClinician(actor, "", "reviews", "list"); err != nil {
		return nil, err
	}

	limit = clampLimit(limit, DefaultPendingLimit, MaxPendingLimit)
	if offset < 0 {
		offset = 0
	}

	assessments, total, err := s.repo.Assessment().ListByReviewState(ctx, nil, models.ReviewFlagged, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}

	return &PendingReviewsResponse{
		Assessments: toSummaries(assessments),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}, nil
}

func (s *reviewService) ReviewHistory(ctx context.Context, actor models.Actor, id string) ([]*models.AssessmentReviewEvent, error) {
	if err := requireClinician(actor, id, "assessment", "read_reviews"); err != nil {
		return nil, err
	}
	if _, err := s.getAssessment(ctx, id); err != nil {
		return nil, err
	}

	trail, err := s.repo.ReviewEvent().ListByAssessment(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review history: %w", err)
	}
	return trail, nil
}

// ===== HELPERS =====

func (s *reviewService) getAssessment(ctx context.Context, id string) (*models.SuggestibilityAssessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return assessment, nil
}

func (s *reviewService) transitionError(err error, id string) error {
	if errors.Is(err, repositories.ErrStateConflict) {
		s.metrics.ReviewConflict()
		s.logger.Warn("Review transition lost optimistic check", "assessment_id", id)
	}
	mapped := mapRepositoryError(err, ErrAssessmentNotFound)
	if mapped == err {
		return fmt.Errorf("failed to update review state: %w", err)
	}
	return mapped
}
