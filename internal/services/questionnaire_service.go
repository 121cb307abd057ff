package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"gorm.io/gorm"
)

// activeInvalidator is implemented by providers that cache the active version id
type activeInvalidator interface {
	InvalidateActive(ctx context.Context) error
}

type questionnaireService struct {
	repo     repositories.Repository
	catalogs catalog.Provider
	logger   *slog.Logger
}

func NewQuestionnaireService(repo repositories.Repository, catalogs catalog.Provider, logger *slog.Logger) QuestionnaireService {
	return &questionnaireService{
		repo:     repo,
		catalogs: catalogs,
		logger:   logger,
	}
}

func (s *questionnaireService) GetActive(ctx context.Context) (*QuestionnaireResponse, error) {
	c, err := s.catalogs.GetActiveVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active questionnaire: %w", err)
	}

	version := c.Version()
	resp := &QuestionnaireResponse{
		ID:         version.ID,
		Name:       version.Name,
		VersionTag: version.VersionTag,
		Questions:  make([]QuestionView, 0, c.QuestionCount()),
	}
	for _, q := range c.Questions() {
		resp.Questions = append(resp.Questions, QuestionView{
			Number:   q.Number,
			Text:     q.Text,
			Category: q.Category,
		})
	}
	return resp, nil
}

func (s *questionnaireService) SeedAndActivate(ctx context.Context, seed *catalog.Seed) (string, error) {
	// Coverage is checked before anything is written
	if _, err := seed.Catalog(); err != nil {
		s.logger.Error("Questionnaire seed failed validation",
			"version_id", seed.ID,
			"data_seeding_defect", true,
			"error", err)
		return "", err
	}

	version, questions, entries, err := seed.Models()
	if err != nil {
		return "", err
	}

	created := false
	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.Questionnaire().Exists(ctx, tx, version.ID)
		if err != nil {
			return fmt.Errorf("failed to check questionnaire version: %w", err)
		}
		if !exists {
			if err := s.repo.Questionnaire().CreateVersion(ctx, tx, &version, questions, entries); err != nil {
				return err
			}
			created = true
		}
		return s.repo.Questionnaire().Activate(ctx, tx, version.ID)
	})
	if err != nil {
		return "", err
	}

	if inv, ok := s.catalogs.(activeInvalidator); ok {
		if err := inv.InvalidateActive(ctx); err != nil {
			s.logger.Warn("Failed to invalidate active questionnaire cache", "error", err)
		}
	}

	s.logger.Info("Questionnaire version activated",
		"version_id", version.ID,
		"version_tag", version.VersionTag,
		"created", created,
		"questions", len(questions),
		"lookup_entries", len(entries))
	return version.ID, nil
}
