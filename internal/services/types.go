package services

import (
	"encoding/json"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/scoring"
)

// Request limits
const (
	DefaultPendingLimit = 50
	MaxPendingLimit     = 100
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 50
	DefaultWindowDays   = 30
	MinWindowDays       = 1
	MaxWindowDays       = 365

	// StableTrendThreshold is the percentage-point change below which a trend is stable
	StableTrendThreshold = 5
)

// ===== REQUEST DTOs =====

type SubmitAssessmentRequest struct {
	// SubjectID defaults to the caller; submitting for someone else needs clinician or above
	SubjectID      string          `json:"subject_id" validate:"omitempty,max=255"`
	Answers        json.RawMessage `json:"answers" validate:"required"`
	ElapsedSeconds *int            `json:"elapsed_seconds" validate:"omitempty,elapsed_seconds"`
}

type FlagAssessmentRequest struct {
	Reason string `json:"reason" validate:"required,flag_reason"`
}

type ReviewAssessmentRequest struct {
	Approved *bool   `json:"approved" validate:"required"`
	Notes    *string `json:"notes" validate:"omitempty,review_notes"`
}

// ===== RESPONSE DTOs =====

// AssessmentResponse is a stored assessment with its derived clinical reading
type AssessmentResponse struct {
	*models.SuggestibilityAssessment
	ReviewReasons   []string                 `json:"review_reasons"`
	Answers         models.AnswerSet         `json:"answers"`
	Interpretation  scoring.Interpretation   `json:"interpretation"`
	AnswerBreakdown *scoring.AnswerBreakdown `json:"answer_breakdown,omitempty"`
}

type AssessmentSummary struct {
	ID                  string                    `json:"id"`
	SuggestibilityType  models.SuggestibilityType `json:"suggestibility_type"`
	PhysicalPercentage  int                       `json:"physical_percentage"`
	EmotionalPercentage int                       `json:"emotional_percentage"`
	ConfidenceScore     float64                   `json:"confidence_score"`
	PatternSignature    models.PatternSignature   `json:"pattern_signature"`
	ReviewState         models.ReviewState        `json:"review_state"`
	CompletedAt         time.Time                 `json:"completed_at"`
}

type TrendDirection string

const (
	TrendMorePhysical  TrendDirection = "more_physical"
	TrendMoreEmotional TrendDirection = "more_emotional"
	TrendStable        TrendDirection = "stable"
)

// Trend compares the first and latest assessment in a history window
type Trend struct {
	Direction          TrendDirection `json:"direction"`
	PhysicalChange     int            `json:"physical_change"`
	EmotionalChange    int            `json:"emotional_change"`
	AveragePhysical    float64        `json:"average_physical"`
	AverageEmotional   float64        `json:"average_emotional"`
	FirstAssessmentAt  time.Time      `json:"first_assessment_at"`
	LatestAssessmentAt time.Time      `json:"latest_assessment_at"`
	AssessmentCount    int            `json:"assessment_count"`
}

type HistoryResponse struct {
	SubjectID   string               `json:"subject_id"`
	Assessments []*AssessmentSummary `json:"assessments"`
	// Trend is nil with fewer than two assessments
	Trend *Trend `json:"trend"`
}

type CommunicationStyleName string

const (
	StylePhysical       CommunicationStyleName = "physical_suggestible"
	StyleEmotional      CommunicationStyleName = "emotional_suggestible"
	StyleSomnambulistic CommunicationStyleName = "somnambulistic"
	StyleBalanced       CommunicationStyleName = "balanced"
)

const lowConfidenceWarning = "Low confidence assessment - use with caution"

// CommunicationStyle tells downstream consumers how to phrase suggestions.
// The first five fields are a stable contract; the rest are additive.
type CommunicationStyle struct {
	Style        CommunicationStyleName `json:"style"`
	Tone         string                 `json:"tone"`
	UseMetaphors bool                   `json:"use_metaphors"`
	UseLiteral   bool                   `json:"use_literal"`
	Confidence   float64                `json:"confidence"`

	LanguagePattern    string                    `json:"language_pattern,omitempty"`
	SuggestibilityType models.SuggestibilityType `json:"suggestibility_type,omitempty"`
	AssessmentID       string                    `json:"assessment_id,omitempty"`
	AssessmentDate     *time.Time                `json:"assessment_date,omitempty"`
	Warning            *string                   `json:"warning,omitempty"`
}

type PendingReviewsResponse struct {
	Assessments []*AssessmentSummary `json:"assessments"`
	Total       int64                `json:"total"`
	Limit       int                  `json:"limit"`
	Offset      int                  `json:"offset"`
}

type QualityStatistics struct {
	WindowDays        int                               `json:"window_days"`
	Since             time.Time                         `json:"since"`
	TotalAssessments  int64                             `json:"total_assessments"`
	AvgConfidence     float64                           `json:"avg_confidence"`
	PatternHistogram  map[models.PatternSignature]int64 `json:"pattern_histogram"`
	FlaggedCount      int64                             `json:"flagged_count"`
	NeedsReviewCount  int64                             `json:"needs_review_count"`
	FlaggedPercentage float64                           `json:"flagged_percentage"`
}

type RederiveResult struct {
	Processed int      `json:"processed"`
	Updated   int      `json:"updated"`
	Flagged   int      `json:"flagged"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

type QuestionView struct {
	Number   int                     `json:"number"`
	Text     string                  `json:"text"`
	Category models.QuestionCategory `json:"category"`
}

type QuestionnaireResponse struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	VersionTag string         `json:"version_tag"`
	Questions  []QuestionView `json:"questions"`
}

func toSummary(a *models.SuggestibilityAssessment) *AssessmentSummary {
	return &AssessmentSummary{
		ID:                  a.ID,
		SuggestibilityType:  a.SuggestibilityType,
		PhysicalPercentage:  a.PhysicalPercentage,
		EmotionalPercentage: a.EmotionalPercentage,
		ConfidenceScore:     a.ConfidenceScore,
		PatternSignature:    a.PatternSignature,
		ReviewState:         a.ReviewState,
		CompletedAt:         a.CompletedAt,
	}
}

func toSummaries(assessments []*models.SuggestibilityAssessment) []*AssessmentSummary {
	out := make([]*AssessmentSummary, 0, len(assessments))
	for _, a := range assessments {
		out = append(out, toSummary(a))
	}
	return out
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
