package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"gorm.io/gorm"
)

// AssessmentRepository interface for suggestibility assessment records
type AssessmentRepository interface {
	// Basic operations
	Create(ctx context.Context, tx *gorm.DB, assessment *models.SuggestibilityAssessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.SuggestibilityAssessment, error)

	// Subject history, newest first
	GetLatestBySubject(ctx context.Context, tx *gorm.DB, subjectID string) (*models.SuggestibilityAssessment, error)
	ListBySubject(ctx context.Context, tx *gorm.DB, subjectID string, limit, offset int) ([]*models.SuggestibilityAssessment, error)
	List(ctx context.Context, tx *gorm.DB, filters AssessmentFilters) ([]*models.SuggestibilityAssessment, int64, error)

	// Review workflow. UpdateReviewState only applies when the stored state equals
	// expected; otherwise it returns ErrStateConflict (or ErrNotFound).
	UpdateReviewState(ctx context.Context, tx *gorm.DB, id string, expected, next models.ReviewState, update ReviewStateUpdate) error
	ListByReviewState(ctx context.Context, tx *gorm.DB, state models.ReviewState, limit, offset int) ([]*models.SuggestibilityAssessment, int64, error)

	// Derived columns only; review columns are left untouched
	UpdateDerived(ctx context.Context, tx *gorm.DB, assessment *models.SuggestibilityAssessment) error

	// Statistics
	GetQualityStats(ctx context.Context, tx *gorm.DB, since time.Time) (*QualityStats, error)
}

// ReviewEventRepository stores the append-only review audit trail
type ReviewEventRepository interface {
	Create(ctx context.Context, tx *gorm.DB, event *models.AssessmentReviewEvent) error
	ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID string) ([]*models.AssessmentReviewEvent, error)
}

// QuestionnaireRepository interface for questionnaire versions and their lookup tables
type QuestionnaireRepository interface {
	CreateVersion(ctx context.Context, tx *gorm.DB, version *models.QuestionnaireVersion, questions []models.QuestionnaireQuestion, entries []models.ScoringLookupEntry) error
	GetVersion(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionnaireVersion, error)
	GetActive(ctx context.Context, tx *gorm.DB) (*models.QuestionnaireVersion, error)
	GetLookupEntries(ctx context.Context, tx *gorm.DB, versionID string) ([]models.ScoringLookupEntry, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.QuestionnaireVersion, error)
	Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error)

	// Activate makes id the only active version
	Activate(ctx context.Context, tx *gorm.DB, id string) error
}
