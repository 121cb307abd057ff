package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/scoring"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const styleCachePrefix = "style:"

type suggestibilityService struct {
	repo      repositories.Repository
	catalogs  catalog.Provider
	cache     cache.CacheService
	publisher events.EventPublisher
	metrics   metrics.Recorder
	validator *validator.Validator
	logger    *slog.Logger
	opLogger  *ServiceLogger
	styleTTL  time.Duration
	now       func() time.Time
}

func NewSuggestibilityService(
	repo repositories.Repository,
	catalogs catalog.Provider,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	recorder metrics.Recorder,
	v *validator.Validator,
	logger *slog.Logger,
	styleTTL time.Duration,
) SuggestibilityService {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &suggestibilityService{
		repo:      repo,
		catalogs:  catalogs,
		cache:     cacheService,
		publisher: publisher,
		metrics:   recorder,
		validator: v,
		logger:    logger,
		opLogger:  NewServiceLogger(logger, LogConfig{Service: "suggestibility", Component: "assessment"}),
		styleTTL:  styleTTL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ===== SUBMISSION =====

func (s *suggestibilityService) Submit(ctx context.Context, actor models.Actor, req *SubmitAssessmentRequest) (*AssessmentResponse, error) {
	op := s.opLogger.WithOperation(ctx, "submit_assessment", actor.ID)
	resp, err := s.submit(ctx, actor, req)
	resourceID := ""
	if resp != nil {
		resourceID = resp.ID
	}
	op.LogResult(resourceID, "assessment", err)
	return resp, err
}

func (s *suggestibilityService) submit(ctx context.Context, actor models.Actor, req *SubmitAssessmentRequest) (*AssessmentResponse, error) {
	if !actor.Role.IsValid() {
		return nil, ErrUnauthorized
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		subjectID = actor.ID
	}
	if subjectID != actor.ID && !actor.Role.AtLeast(models.RoleClinician) {
		return nil, NewPermissionError(actor.ID, subjectID, "subject", "submit", "can only submit own assessments")
	}

	c, err := s.catalogs.GetActiveVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active questionnaire: %w", err)
	}

	// Answer set problems surface before any scoring
	answers, err := s.validator.Answers().ParseFor(req.Answers, c)
	if err != nil {
		return nil, err
	}

	breakdown, err := scoring.Score(answers, c)
	if err != nil {
		return nil, fmt.Errorf("failed to score answers: %w", err)
	}
	quality := scoring.Evaluate(answers.Vector(), req.ElapsedSeconds, c.QuestionCount())

	answersJSON, err := answers.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	now := s.now()
	assessment := &models.SuggestibilityAssessment{
		ID:                     uuid.NewString(),
		SubjectID:              subjectID,
		QuestionnaireVersionID: c.ID(),
		Answers:                answersJSON,
		ElapsedSeconds:         req.ElapsedSeconds,
		CompletedAt:            now,
		ReviewState:            models.ReviewSubmitted,
	}
	if err := applyDerived(assessment, breakdown, quality); err != nil {
		return nil, err
	}

	var pending []*events.AssessmentEvent
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assessment().Create(ctx, tx, assessment); err != nil {
			return fmt.Errorf("failed to create assessment: %w", err)
		}
		submitted := newReviewEvent(assessment.ID, models.ReviewActionSubmitted, nil, models.ReviewSubmitted,
			actor, nil, map[string]interface{}{"subject_id": subjectID}, now)
		if err := s.repo.ReviewEvent().Create(ctx, tx, submitted); err != nil {
			return fmt.Errorf("failed to record submission: %w", err)
		}
		pending = append(pending, events.NewAssessmentSubmittedEvent(assessment))

		if !quality.NeedsReview {
			return nil
		}

		flagged, err := autoFlag(ctx, s.repo, tx, assessment, quality.ReviewReasons, now)
		if err != nil {
			return err
		}
		pending = append(pending, flagged)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AssessmentSubmitted(assessment.SuggestibilityType, assessment.PatternSignature, assessment.ConfidenceScore)
	if assessment.ReviewState == models.ReviewFlagged {
		s.metrics.AssessmentFlagged(metrics.TriggerAutomatic)
	}
	s.invalidateStyle(ctx, subjectID)
	publishAll(ctx, s.publisher, s.logger, pending)

	s.logger.Info("Assessment submitted",
		"assessment_id", assessment.ID,
		"subject_id", subjectID,
		"version_id", c.ID(),
		"type", assessment.SuggestibilityType,
		"pattern", assessment.PatternSignature,
		"confidence", assessment.ConfidenceScore,
		"review_state", assessment.ReviewState)

	return buildAssessmentResponse(assessment, quality.ReviewReasons, answers, c), nil
}

// ===== READS =====

func (s *suggestibilityService) GetAssessment(ctx context.Context, actor models.Actor, id string) (*AssessmentResponse, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}

	if !canViewSubject(actor, assessment.SubjectID) {
		return nil, NewPermissionError(actor.ID, id, "assessment", "read", "not owner or insufficient permissions")
	}

	return responseFor(ctx, s.catalogs, s.logger, assessment)
}

func (s *suggestibilityService) GetLatest(ctx context.Context, actor models.Actor, subjectID string) (*AssessmentResponse, error) {
	if !canViewSubject(actor, subjectID) {
		return nil, NewPermissionError(actor.ID, subjectID, "subject", "read", "not owner or insufficient permissions")
	}

	assessment, err := s.repo.Assessment().GetLatestBySubject(ctx, nil, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}
	if assessment == nil {
		return nil, nil
	}
	return responseFor(ctx, s.catalogs, s.logger, assessment)
}

func (s *suggestibilityService) GetHistory(ctx context.Context, actor models.Actor, subjectID string, limit int) (*HistoryResponse, error) {
	if !canViewSubject(actor, subjectID) {
		return nil, NewPermissionError(actor.ID, subjectID, "subject", "read", "not owner or insufficient permissions")
	}

	limit = clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit)
	assessments, err := s.repo.Assessment().ListBySubject(ctx, nil, subjectID, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment history: %w", err)
	}

	return &HistoryResponse{
		SubjectID:   subjectID,
		Assessments: toSummaries(assessments),
		Trend:       ComputeTrend(assessments),
	}, nil
}

// ComputeTrend compares the oldest and newest of a newest-first history.
// It returns nil for fewer than two assessments.
func ComputeTrend(newestFirst []*models.SuggestibilityAssessment) *Trend {
	if len(newestFirst) < 2 {
		return nil
	}
	latest := newestFirst[0]
	first := newestFirst[len(newestFirst)-1]

	var sumPhysical, sumEmotional int
	for _, a := range newestFirst {
		sumPhysical += a.PhysicalPercentage
		sumEmotional += a.EmotionalPercentage
	}
	n := float64(len(newestFirst))

	change := latest.PhysicalPercentage - first.PhysicalPercentage
	var direction TrendDirection
	switch {
	case math.Abs(float64(change)) < StableTrendThreshold:
		direction = TrendStable
	case change > 0:
		direction = TrendMorePhysical
	default:
		direction = TrendMoreEmotional
	}

	return &Trend{
		Direction:          direction,
		PhysicalChange:     change,
		EmotionalChange:    latest.EmotionalPercentage - first.EmotionalPercentage,
		AveragePhysical:    math.Round(float64(sumPhysical)/n*10) / 10,
		AverageEmotional:   math.Round(float64(sumEmotional)/n*10) / 10,
		FirstAssessmentAt:  first.CompletedAt,
		LatestAssessmentAt: latest.CompletedAt,
		AssessmentCount:    len(newestFirst),
	}
}

// ===== COMMUNICATION STYLE =====

func (s *suggestibilityService) GetCommunicationStyle(ctx context.Context, actor models.Actor, subjectID string) (*CommunicationStyle, error) {
	if !canViewSubject(actor, subjectID) {
		return nil, NewPermissionError(actor.ID, subjectID, "subject", "read", "not owner or insufficient permissions")
	}

	var cached CommunicationStyle
	err := s.cache.Get(ctx, styleCachePrefix+subjectID, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("Communication style cache read failed", "subject_id", subjectID, "error", err)
	}

	latest, err := s.repo.Assessment().GetLatestBySubject(ctx, nil, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest assessment: %w", err)
	}

	style := DeriveCommunicationStyle(latest)
	if err := s.cache.Set(ctx, styleCachePrefix+subjectID, style, s.styleTTL); err != nil {
		s.logger.Warn("Communication style cache write failed", "subject_id", subjectID, "error", err)
	}
	return style, nil
}

// DeriveCommunicationStyle maps the latest assessment to a communication style.
// A nil assessment yields the neutral balanced style with zero confidence.
func DeriveCommunicationStyle(latest *models.SuggestibilityAssessment) *CommunicationStyle {
	if latest == nil {
		return &CommunicationStyle{
			Style:           StyleBalanced,
			Tone:            "neutral",
			UseMetaphors:    true,
			UseLiteral:      true,
			Confidence:      0,
			LanguagePattern: "combine literal and metaphorical",
		}
	}

	style := &CommunicationStyle{
		Confidence:         latest.ConfidenceScore,
		SuggestibilityType: latest.SuggestibilityType,
		AssessmentID:       latest.ID,
	}
	completedAt := latest.CompletedAt
	style.AssessmentDate = &completedAt

	switch {
	case latest.SuggestibilityType.IsPhysical():
		style.Style = StylePhysical
		style.Tone = "direct and clear"
		style.UseLiteral = true
		style.LanguagePattern = "literal and step-by-step"
	case latest.SuggestibilityType.IsEmotional():
		style.Style = StyleEmotional
		style.Tone = "indirect and flowing"
		style.UseMetaphors = true
		style.LanguagePattern = "inferential and metaphorical"
	default:
		style.Style = StyleSomnambulistic
		style.Tone = "flexible - adaptive mix"
		style.UseMetaphors = true
		style.UseLiteral = true
		style.LanguagePattern = "combine literal and metaphorical"
	}

	if latest.ConfidenceScore < scoring.ReviewConfidenceThreshold {
		warning := lowConfidenceWarning
		style.Warning = &warning
	}
	return style
}

func (s *suggestibilityService) invalidateStyle(ctx context.Context, subjectID string) {
	if err := s.cache.Delete(ctx, styleCachePrefix+subjectID); err != nil {
		s.logger.Warn("Failed to invalidate communication style", "subject_id", subjectID, "error", err)
	}
}

// ===== HELPERS =====

// applyDerived copies the score breakdown and quality metrics onto the record
func applyDerived(a *models.SuggestibilityAssessment, b *scoring.Breakdown, q scoring.QualityMetrics) error {
	a.PrimaryScore = b.PrimaryScore
	a.SecondaryScore = b.SecondaryScore
	a.CombinedScore = b.CombinedScore
	a.PhysicalPercentage = b.PhysicalPercentage
	a.EmotionalPercentage = b.EmotionalPercentage
	a.SuggestibilityType = b.SuggestibilityType

	a.PatternSignature = q.PatternSignature
	a.ConfidenceScore = q.ConfidenceScore
	a.ConsistencyScore = q.ConsistencyScore
	a.CompletionPercentage = q.CompletionPercentage
	a.NeedsReview = q.NeedsReview

	reasons, err := models.ReasonsToJSON(q.ReviewReasons)
	if err != nil {
		return err
	}
	a.ReviewReasons = reasons
	return nil
}
