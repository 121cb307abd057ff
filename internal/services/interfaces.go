package services

import (
	"context"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

// SuggestibilityService scores submissions and serves a subject's results
type SuggestibilityService interface {
	Submit(ctx context.Context, actor models.Actor, req *SubmitAssessmentRequest) (*AssessmentResponse, error)
	GetAssessment(ctx context.Context, actor models.Actor, id string) (*AssessmentResponse, error)

	// GetLatest returns nil without error when the subject has no assessments
	GetLatest(ctx context.Context, actor models.Actor, subjectID string) (*AssessmentResponse, error)
	GetHistory(ctx context.Context, actor models.Actor, subjectID string, limit int) (*HistoryResponse, error)
	GetCommunicationStyle(ctx context.Context, actor models.Actor, subjectID string) (*CommunicationStyle, error)
}

// ReviewService drives the clinical review workflow
type ReviewService interface {
	Flag(ctx context.Context, actor models.Actor, id string, req *FlagAssessmentRequest) (*AssessmentResponse, error)
	Review(ctx context.Context, actor models.Actor, id string, req *ReviewAssessmentRequest) (*AssessmentResponse, error)
	PendingReviews(ctx context.Context, actor models.Actor, limit, offset int) (*PendingReviewsResponse, error)
	ReviewHistory(ctx context.Context, actor models.Actor, id string) ([]*models.AssessmentReviewEvent, error)
}

type QualityService interface {
	Statistics(ctx context.Context, actor models.Actor, windowDays int) (*QualityStatistics, error)

	// Rederive recomputes derived columns of up to limit stored assessments (0 means all)
	Rederive(ctx context.Context, actor models.Actor, limit int) (*RederiveResult, error)
}

type ExportService interface {
	ExportPendingReviews(ctx context.Context, actor models.Actor) ([]byte, error)
	ExportSubjectHistory(ctx context.Context, actor models.Actor, subjectID string) ([]byte, error)
}

type QuestionnaireService interface {
	GetActive(ctx context.Context) (*QuestionnaireResponse, error)

	// SeedAndActivate stores the seed's version when it does not exist yet and makes it active
	SeedAndActivate(ctx context.Context, seed *catalog.Seed) (string, error)
}
