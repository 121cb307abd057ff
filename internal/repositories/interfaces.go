package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrStateConflict is returned when an optimistic review-state update finds the
	// record in a different state than the caller read.
	ErrStateConflict = errors.New("review state changed concurrently")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// Repository groups the stores and owns transaction boundaries
type Repository interface {
	Assessment() AssessmentRepository
	ReviewEvent() ReviewEventRepository
	Questionnaire() QuestionnaireRepository

	// WithTransaction runs fn in one database transaction; fn must pass tx to every call
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ===== SHARED FILTER STRUCTS =====

type AssessmentFilters struct {
	SubjectID   *string             `json:"subject_id"`
	ReviewState *models.ReviewState `json:"review_state"`
	VersionID   *string             `json:"version_id"`
	DateFrom    *time.Time          `json:"date_from"`
	DateTo      *time.Time          `json:"date_to"`
	Limit       int                 `json:"limit"`
	Offset      int                 `json:"offset"`
	SortOrder   string              `json:"sort_order"` // "asc", "desc" on completed_at
}

// ReviewStateUpdate carries the reviewer annotations written with a transition
type ReviewStateUpdate struct {
	ActorID string
	At      time.Time
	Notes   *string
}

// ===== STATS STRUCTS =====

type QualityStats struct {
	TotalAssessments    int64                             `json:"total_assessments"`
	AvgConfidence       float64                           `json:"avg_confidence"`
	PatternDistribution map[models.PatternSignature]int64 `json:"pattern_distribution"`
	FlaggedCount        int64                             `json:"flagged_count"`
	NeedsReviewCount    int64                             `json:"needs_review_count"`
}
