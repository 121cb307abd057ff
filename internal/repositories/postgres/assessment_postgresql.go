package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"gorm.io/gorm"
)

type AssessmentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewAssessmentPostgreSQL(db *gorm.DB) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.SuggestibilityAssessment) error {
	return a.helpers.GetDB(ctx, tx).Omit("ReviewEvents").Create(assessment).Error
}

// GetByID retrieves an assessment by ID
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SuggestibilityAssessment, error) {
	var assessment models.SuggestibilityAssessment
	if err := a.helpers.GetDB(ctx, tx).Where("id = ?", id).First(&assessment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &assessment, nil
}

// GetLatestBySubject returns nil without error when the subject has no assessments
func (a *AssessmentPostgreSQL) GetLatestBySubject(ctx context.Context, tx *gorm.DB, subjectID string) (*models.SuggestibilityAssessment, error) {
	var assessment models.SuggestibilityAssessment
	err := a.helpers.GetDB(ctx, tx).
		Where("subject_id = ?", subjectID).
		Order("completed_at DESC").
		Order("id DESC").
		First(&assessment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) ListBySubject(ctx context.Context, tx *gorm.DB, subjectID string, limit, offset int) ([]*models.SuggestibilityAssessment, error) {
	var assessments []*models.SuggestibilityAssessment

	query := a.helpers.GetDB(ctx, tx).
		Model(&models.SuggestibilityAssessment{}).
		Where("subject_id = ?", subjectID)
	query = a.helpers.ApplyPaginationAndSort(query, "completed_at", "desc", limit, offset)

	if err := query.Find(&assessments).Error; err != nil {
		return nil, err
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.AssessmentFilters) ([]*models.SuggestibilityAssessment, int64, error) {
	var assessments []*models.SuggestibilityAssessment
	var total int64

	// apply filter first
	query := a.helpers.GetDB(ctx, tx).Model(&models.SuggestibilityAssessment{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = a.helpers.ApplyPaginationAndSort(query, "completed_at", filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&assessments).Error; err != nil {
		return nil, 0, err
	}
	return assessments, total, nil
}

func (a *AssessmentPostgreSQL) UpdateReviewState(ctx context.Context, tx *gorm.DB, id string, expected, next models.ReviewState, update repositories.ReviewStateUpdate) error {
	at := update.At
	if at.IsZero() {
		at = time.Now()
	}

	values := map[string]interface{}{
		"review_state": next,
		"updated_at":   at,
	}
	if next == models.ReviewFlagged && expected != models.ReviewFlagged {
		values["flagged_at"] = at
		values["flagged_by"] = update.ActorID
	}
	if next.IsTerminal() {
		values["reviewed_at"] = at
		values["reviewed_by"] = update.ActorID
		values["review_notes"] = update.Notes
	}

	db := a.helpers.GetDB(ctx, tx)
	result := db.Model(&models.SuggestibilityAssessment{}).
		Where("id = ? AND review_state = ?", id, expected).
		Updates(values)
	if result.Error != nil {
		return fmt.Errorf("failed to update review state: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.SuggestibilityAssessment{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return repositories.ErrNotFound
		}
		return repositories.ErrStateConflict
	}
	return nil
}

func (a *AssessmentPostgreSQL) ListByReviewState(ctx context.Context, tx *gorm.DB, state models.ReviewState, limit, offset int) ([]*models.SuggestibilityAssessment, int64, error) {
	return a.List(ctx, tx, repositories.AssessmentFilters{
		ReviewState: &state,
		Limit:       limit,
		Offset:      offset,
		SortOrder:   "desc",
	})
}

func (a *AssessmentPostgreSQL) UpdateDerived(ctx context.Context, tx *gorm.DB, assessment *models.SuggestibilityAssessment) error {
	result := a.helpers.GetDB(ctx, tx).
		Model(&models.SuggestibilityAssessment{}).
		Where("id = ?", assessment.ID).
		Updates(map[string]interface{}{
			"primary_score":         assessment.PrimaryScore,
			"secondary_score":       assessment.SecondaryScore,
			"combined_score":        assessment.CombinedScore,
			"physical_percentage":   assessment.PhysicalPercentage,
			"emotional_percentage":  assessment.EmotionalPercentage,
			"suggestibility_type":   assessment.SuggestibilityType,
			"pattern_signature":     assessment.PatternSignature,
			"confidence_score":      assessment.ConfidenceScore,
			"consistency_score":     assessment.ConsistencyScore,
			"completion_percentage": assessment.CompletionPercentage,
			"needs_review":          assessment.NeedsReview,
			"review_reasons":        assessment.ReviewReasons,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (a *AssessmentPostgreSQL) GetQualityStats(ctx context.Context, tx *gorm.DB, since time.Time) (*repositories.QualityStats, error) {
	db := a.helpers.GetDB(ctx, tx)
	stats := &repositories.QualityStats{
		PatternDistribution: make(map[models.PatternSignature]int64),
	}

	windowed := func() *gorm.DB {
		return db.Model(&models.SuggestibilityAssessment{}).Where("completed_at >= ?", since)
	}

	var totals struct {
		Total         int64
		AvgConfidence *float64
	}
	if err := windowed().
		Select("COUNT(*) AS total, AVG(confidence_score) AS avg_confidence").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate confidence: %w", err)
	}
	stats.TotalAssessments = totals.Total
	if totals.AvgConfidence != nil {
		stats.AvgConfidence = *totals.AvgConfidence
	}

	var patternRows []struct {
		PatternSignature models.PatternSignature
		Count            int64
	}
	if err := windowed().
		Select("pattern_signature, COUNT(*) AS count").
		Group("pattern_signature").
		Scan(&patternRows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate patterns: %w", err)
	}
	for _, row := range patternRows {
		stats.PatternDistribution[row.PatternSignature] = row.Count
	}

	if err := windowed().
		Where("review_state IN ?", []models.ReviewState{models.ReviewFlagged, models.ReviewApproved, models.ReviewRejected}).
		Count(&stats.FlaggedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count flagged assessments: %w", err)
	}

	if err := windowed().Where("needs_review = ?", true).Count(&stats.NeedsReviewCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count assessments needing review: %w", err)
	}

	return stats, nil
}

func (a *AssessmentPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AssessmentFilters) *gorm.DB {
	if filters.SubjectID != nil {
		query = query.Where("subject_id = ?", *filters.SubjectID)
	}
	if filters.ReviewState != nil {
		query = query.Where("review_state = ?", *filters.ReviewState)
	}
	if filters.VersionID != nil {
		query = query.Where("questionnaire_version_id = ?", *filters.VersionID)
	}
	if filters.DateFrom != nil {
		query = query.Where("completed_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("completed_at <= ?", *filters.DateTo)
	}
	return query
}
