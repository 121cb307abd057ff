package postgres

import (
	"context"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	db            *gorm.DB
	assessment    repositories.AssessmentRepository
	reviewEvent   repositories.ReviewEventRepository
	questionnaire repositories.QuestionnaireRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &repository{
		db:            db,
		assessment:    NewAssessmentPostgreSQL(db),
		reviewEvent:   NewReviewEventPostgreSQL(db),
		questionnaire: NewQuestionnairePostgreSQL(db),
	}
}

func (r *repository) Assessment() repositories.AssessmentRepository {
	return r.assessment
}

func (r *repository) ReviewEvent() repositories.ReviewEventRepository {
	return r.reviewEvent
}

func (r *repository) Questionnaire() repositories.QuestionnaireRepository {
	return r.questionnaire
}

func (r *repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Models lists every table owned by the repositories, in migration order
func Models() []interface{} {
	return []interface{}{
		&models.QuestionnaireVersion{},
		&models.QuestionnaireQuestion{},
		&models.ScoringLookupEntry{},
		&models.SuggestibilityAssessment{},
		&models.AssessmentReviewEvent{},
	}
}

// AutoMigrate creates or updates the schema
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
