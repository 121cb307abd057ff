package postgres

import (
	"context"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"gorm.io/gorm"
)

type ReviewEventPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewReviewEventPostgreSQL(db *gorm.DB) repositories.ReviewEventRepository {
	return &ReviewEventPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (r *ReviewEventPostgreSQL) Create(ctx context.Context, tx *gorm.DB, event *models.AssessmentReviewEvent) error {
	return r.helpers.GetDB(ctx, tx).Create(event).Error
}

// ListByAssessment returns the audit trail oldest first. The submission entry
// sorts before an automatic flag written with the same timestamp.
func (r *ReviewEventPostgreSQL) ListByAssessment(ctx context.Context, tx *gorm.DB, assessmentID string) ([]*models.AssessmentReviewEvent, error) {
	var events []*models.AssessmentReviewEvent
	if err := r.helpers.GetDB(ctx, tx).
		Where("assessment_id = ?", assessmentID).
		Order("created_at ASC").
		Order("CASE WHEN action = 'submitted' THEN 0 ELSE 1 END").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
