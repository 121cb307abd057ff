package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/scoring"
	"gorm.io/gorm"
)

const rederivePageSize = 100

type qualityService struct {
	repo     repositories.Repository
	catalogs catalog.Provider
	cache     cache.CacheService
	publisher events.EventPublisher
	metrics   metrics.Recorder
	logger    *slog.Logger
	opLogger *ServiceLogger
	now      func() time.Time
}

func NewQualityService(
	repo repositories.Repository,
	catalogs catalog.Provider,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	recorder metrics.Recorder,
	logger *slog.Logger,
) QualityService {
	if cacheService == nil {
		cacheService = cache.NewNoopCache()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &qualityService{
		repo:     repo,
		catalogs: catalogs,
		cache:     cacheService,
		publisher: publisher,
		metrics:   recorder,
		logger:   logger,
		opLogger: NewServiceLogger(logger, LogConfig{Service: "suggestibility", Component: "quality"}),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *qualityService) Statistics(ctx context.Context, actor models.Actor, windowDays int) (*QualityStatistics, error) {
	if err := requireAdmin(actor, "", "quality_statistics", "read"); err != nil {
		return nil, err
	}

	if windowDays == 0 {
		windowDays = DefaultWindowDays
	}
	if windowDays < MinWindowDays || windowDays > MaxWindowDays {
		return nil, NewValidationError("window_days",
			fmt.Sprintf("must be between %d and %d", MinWindowDays, MaxWindowDays), windowDays)
	}

	since := s.now().AddDate(0, 0, -windowDays)
	stats, err := s.repo.Assessment().GetQualityStats(ctx, nil, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get quality statistics: %w", err)
	}

	result := &QualityStatistics{
		WindowDays:       windowDays,
		Since:            since,
		TotalAssessments: stats.TotalAssessments,
		AvgConfidence:    math.Round(stats.AvgConfidence*10) / 10,
		PatternHistogram: make(map[models.PatternSignature]int64, len(models.AllPatternSignatures)),
		FlaggedCount:     stats.FlaggedCount,
		NeedsReviewCount: stats.NeedsReviewCount,
	}
	for _, pattern := range models.AllPatternSignatures {
		result.PatternHistogram[pattern] = stats.PatternDistribution[pattern]
	}
	if stats.TotalAssessments > 0 {
		pct := float64(stats.FlaggedCount) / float64(stats.TotalAssessments) * 100
		result.FlaggedPercentage = math.Round(pct*10) / 10
	}
	return result, nil
}

func (s *qualityService) Rederive(ctx context.Context, actor models.Actor, limit int) (*RederiveResult, error) {
	if err := requireAdmin(actor, "", "assessments", "rederive"); err != nil {
		return nil, err
	}

	op := s.opLogger.WithOperation(ctx, "rederive_assessments", actor.ID)
	result, err := s.rederive(ctx, limit)
	op.LogResult("", "assessment", err)
	return result, err
}

func (s *qualityService) rederive(ctx context.Context, limit int) (*RederiveResult, error) {
	result := &RederiveResult{}

	for offset := 0; ; offset += rederivePageSize {
		pageSize := rederivePageSize
		if limit > 0 {
			remaining := limit - result.Processed
			if remaining <= 0 {
				break
			}
			if remaining < pageSize {
				pageSize = remaining
			}
		}

		page, _, err := s.repo.Assessment().List(ctx, nil, repositories.AssessmentFilters{
			Limit:     pageSize,
			Offset:    offset,
			SortOrder: "asc",
		})
		if err != nil {
			return result, fmt.Errorf("failed to list assessments: %w", err)
		}

		for _, assessment := range page {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			result.Processed++
			flagged, err := s.rederiveOne(ctx, assessment)
			if err != nil {
				result.Failed++
				result.FailedIDs = append(result.FailedIDs, assessment.ID)
				s.logger.Error("Failed to re-derive assessment",
					"assessment_id", assessment.ID,
					"version_id", assessment.QuestionnaireVersionID,
					"error", err)
				continue
			}
			result.Updated++
			if flagged {
				result.Flagged++
			}
		}

		if len(page) < pageSize {
			break
		}
	}

	if result.Updated > 0 {
		if err := s.cache.DeletePattern(ctx, styleCachePrefix+"*"); err != nil {
			s.logger.Warn("Failed to invalidate communication styles", "error", err)
		}
	}

	s.logger.Info("Re-derivation finished",
		"processed", result.Processed,
		"updated", result.Updated,
		"flagged", result.Flagged,
		"failed", result.Failed)
	return result, nil
}

// rederiveOne recomputes derived columns from the record's raw answers and its own
// questionnaire version. Review columns are left untouched, except that a
// Submitted record whose new metrics need review is flagged in the same
// transaction. It reports whether that happened.
func (s *qualityService) rederiveOne(ctx context.Context, assessment *models.SuggestibilityAssessment) (bool, error) {
	answers, err := assessment.AnswerSet()
	if err != nil {
		return false, fmt.Errorf("failed to decode answers: %w", err)
	}

	c, err := s.catalogs.GetVersion(ctx, assessment.QuestionnaireVersionID)
	if err != nil {
		return false, err
	}

	breakdown, err := scoring.Score(answers, c)
	if err != nil {
		return false, err
	}
	quality := scoring.Evaluate(answers.Vector(), assessment.ElapsedSeconds, c.QuestionCount())
	if err := applyDerived(assessment, breakdown, quality); err != nil {
		return false, err
	}

	now := s.now()
	var flagged *events.AssessmentEvent
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Assessment().UpdateDerived(ctx, tx, assessment); err != nil {
			return err
		}
		if !quality.NeedsReview || assessment.ReviewState != models.ReviewSubmitted {
			return nil
		}

		event, flagErr := autoFlag(ctx, s.repo, tx, assessment, quality.ReviewReasons, now)
		if errors.Is(flagErr, repositories.ErrStateConflict) {
			// no longer Submitted, nothing to flag
			return nil
		}
		flagged = event
		return flagErr
	})
	if err != nil || flagged == nil {
		return false, err
	}

	s.metrics.AssessmentFlagged(metrics.TriggerRederive)
	publishAll(ctx, s.publisher, s.logger, []*events.AssessmentEvent{flagged})
	s.logger.Info("Re-derived assessment now needs review",
		"assessment_id", assessment.ID,
		"subject_id", assessment.SubjectID,
		"reasons", quality.ReviewReasons)
	return true, nil
}
