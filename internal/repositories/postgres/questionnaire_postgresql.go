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

const lookupInsertBatchSize = 200

type QuestionnairePostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewQuestionnairePostgreSQL(db *gorm.DB) repositories.QuestionnaireRepository {
	return &QuestionnairePostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// CreateVersion stores a version with its questions and lookup table. Versions are
// created inactive; use Activate to switch.
func (q *QuestionnairePostgreSQL) CreateVersion(ctx context.Context, tx *gorm.DB, version *models.QuestionnaireVersion, questions []models.QuestionnaireQuestion, entries []models.ScoringLookupEntry) error {
	write := func(db *gorm.DB) error {
		version.IsActive = false
		version.ActivatedAt = nil
		if err := db.Omit("Questions", "LookupEntries").Create(version).Error; err != nil {
			return fmt.Errorf("failed to create questionnaire version: %w", err)
		}

		for i := range questions {
			questions[i].VersionID = version.ID
		}
		if len(questions) > 0 {
			if err := db.Create(&questions).Error; err != nil {
				return fmt.Errorf("failed to create questions: %w", err)
			}
		}

		for i := range entries {
			entries[i].VersionID = version.ID
		}
		if len(entries) > 0 {
			if err := db.CreateInBatches(&entries, lookupInsertBatchSize).Error; err != nil {
				return fmt.Errorf("failed to create lookup entries: %w", err)
			}
		}
		return nil
	}

	if tx != nil {
		return write(tx.WithContext(ctx))
	}
	return q.db.WithContext(ctx).Transaction(write)
}

func (q *QuestionnairePostgreSQL) GetVersion(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionnaireVersion, error) {
	var version models.QuestionnaireVersion
	err := q.helpers.GetDB(ctx, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Where("id = ?", id).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

func (q *QuestionnairePostgreSQL) GetActive(ctx context.Context, tx *gorm.DB) (*models.QuestionnaireVersion, error) {
	var version models.QuestionnaireVersion
	err := q.helpers.GetDB(ctx, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("number ASC") }).
		Where("is_active = ?", true).
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return &version, nil
}

func (q *QuestionnairePostgreSQL) GetLookupEntries(ctx context.Context, tx *gorm.DB, versionID string) ([]models.ScoringLookupEntry, error) {
	var entries []models.ScoringLookupEntry
	if err := q.helpers.GetDB(ctx, tx).
		Where("version_id = ?", versionID).
		Order("primary_score ASC").
		Order("combined_score ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (q *QuestionnairePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.QuestionnaireVersion, error) {
	var versions []*models.QuestionnaireVersion
	if err := q.helpers.GetDB(ctx, tx).Order("created_at DESC").Find(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (q *QuestionnairePostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := q.helpers.GetDB(ctx, tx).
		Model(&models.QuestionnaireVersion{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (q *QuestionnairePostgreSQL) Activate(ctx context.Context, tx *gorm.DB, id string) error {
	activate := func(db *gorm.DB) error {
		if err := db.Model(&models.QuestionnaireVersion{}).
			Where("is_active = ? AND id <> ?", true, id).
			Updates(map[string]interface{}{"is_active": false}).Error; err != nil {
			return fmt.Errorf("failed to deactivate versions: %w", err)
		}

		result := db.Model(&models.QuestionnaireVersion{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_active":    true,
				"activated_at": time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to activate version: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return repositories.ErrNotFound
		}
		return nil
	}

	if tx != nil {
		return activate(tx.WithContext(ctx))
	}
	return q.db.WithContext(ctx).Transaction(activate)
}
