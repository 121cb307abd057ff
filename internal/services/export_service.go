package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	exportPageSize   = 200
	exportTimeLayout = "2006-01-02 15:04:05"
)

var exportHeaders = []string{
	"Assessment ID", "Subject ID", "Completed At", "Suggestibility Type",
	"Physical %", "Emotional %", "Primary Score", "Secondary Score",
	"Pattern", "Confidence", "Review State", "Review Reasons", "Elapsed (s)",
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportPendingReviews(ctx context.Context, actor models.Actor) ([]byte, error) {
	if err := requireClinician(actor, "", "reviews", "export"); err != nil {
		return nil, err
	}

	var assessments []*models.SuggestibilityAssessment
	for offset := 0; ; offset += exportPageSize {
		page, _, err := s.repo.Assessment().ListByReviewState(ctx, nil, models.ReviewFlagged, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list pending reviews: %w", err)
		}
		assessments = append(assessments, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	data, err := writeAssessmentSheet("Pending Reviews", assessments)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Pending reviews exported", "actor_id", actor.ID, "rows", len(assessments))
	return data, nil
}

func (s *exportService) ExportSubjectHistory(ctx context.Context, actor models.Actor, subjectID string) ([]byte, error) {
	if err := requireClinician(actor, subjectID, "subject", "export"); err != nil {
		return nil, err
	}

	var assessments []*models.SuggestibilityAssessment
	for offset := 0; ; offset += exportPageSize {
		page, err := s.repo.Assessment().ListBySubject(ctx, nil, subjectID, exportPageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to get assessment history: %w", err)
		}
		assessments = append(assessments, page...)
		if len(page) < exportPageSize {
			break
		}
	}

	data, err := writeAssessmentSheet("History", assessments)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Subject history exported", "actor_id", actor.ID, "subject_id", subjectID, "rows", len(assessments))
	return data, nil
}

func writeAssessmentSheet(sheetName string, assessments []*models.SuggestibilityAssessment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, a := range assessments {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row, err := assessmentRow(a)
		if err != nil {
			return nil, fmt.Errorf("failed to export assessment %s: %w", a.ID, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func assessmentRow(a *models.SuggestibilityAssessment) ([]interface{}, error) {
	reasons, err := a.ReasonList()
	if err != nil {
		return nil, err
	}
	elapsed := ""
	if a.ElapsedSeconds != nil {
		elapsed = fmt.Sprintf("%d", *a.ElapsedSeconds)
	}
	return []interface{}{
		a.ID,
		a.SubjectID,
		a.CompletedAt.UTC().Format(exportTimeLayout),
		string(a.SuggestibilityType),
		a.PhysicalPercentage,
		a.EmotionalPercentage,
		a.PrimaryScore,
		a.SecondaryScore,
		string(a.PatternSignature),
		a.ConfidenceScore,
		string(a.ReviewState),
		strings.Join(reasons, "; "),
		elapsed,
	}, nil
}

// ExportFilename names a download after its content and the current date
func ExportFilename(kind string, at time.Time) string {
	return fmt.Sprintf("suggestibility_%s_%s.xlsx", kind, at.UTC().Format("20060102"))
}
