package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type ReviewState string

const (
	ReviewSubmitted ReviewState = "submitted"
	ReviewFlagged   ReviewState = "flagged"
	ReviewApproved  ReviewState = "approved"
	ReviewRejected  ReviewState = "rejected"
)

func (s ReviewState) IsTerminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

type PatternSignature string

const (
	PatternAllYes      PatternSignature = "all_yes"
	PatternAllNo       PatternSignature = "all_no"
	PatternMostlyYes   PatternSignature = "mostly_yes"
	PatternMostlyNo    PatternSignature = "mostly_no"
	PatternAlternating PatternSignature = "alternating"
	PatternSuspicious  PatternSignature = "suspicious"
	PatternBalanced    PatternSignature = "balanced"
)

// AllPatternSignatures lists every signature the detector can emit
var AllPatternSignatures = []PatternSignature{
	PatternAllYes,
	PatternAllNo,
	PatternMostlyYes,
	PatternMostlyNo,
	PatternAlternating,
	PatternSuspicious,
	PatternBalanced,
}

type SuggestibilityType string

const (
	TypePurePhysical       SuggestibilityType = "Pure Physical"
	TypePrimarilyPhysical  SuggestibilityType = "Primarily Physical"
	TypeBalanced           SuggestibilityType = "Somnambulistic (Balanced)"
	TypePrimarilyEmotional SuggestibilityType = "Primarily Emotional"
	TypePureEmotional      SuggestibilityType = "Pure Emotional"
)

func (t SuggestibilityType) IsPhysical() bool {
	return strings.Contains(string(t), "Physical")
}

func (t SuggestibilityType) IsEmotional() bool {
	return strings.Contains(string(t), "Emotional")
}

// SuggestibilityAssessment is one immutable submission. Derived score and quality
// columns can be recomputed from Answers; only the review columns change in place.
type SuggestibilityAssessment struct {
	ID                     string `json:"id" gorm:"primaryKey;size:36"`
	SubjectID              string `json:"subject_id" gorm:"not null;size:255;index:idx_subject_completed,priority:1"`
	QuestionnaireVersionID string `json:"questionnaire_version_id" gorm:"not null;size:64;index"`

	// Score breakdown
	PrimaryScore        int                `json:"primary_score" gorm:"not null"`
	SecondaryScore      int                `json:"secondary_score" gorm:"not null"`
	CombinedScore       int                `json:"combined_score" gorm:"not null"`
	PhysicalPercentage  int                `json:"physical_percentage" gorm:"not null"`
	EmotionalPercentage int                `json:"emotional_percentage" gorm:"not null"`
	SuggestibilityType  SuggestibilityType `json:"suggestibility_type" gorm:"not null;size:50;index"`

	// Quality metrics
	PatternSignature     PatternSignature `json:"pattern_signature" gorm:"not null;size:20;index"`
	ConfidenceScore      float64          `json:"confidence_score" gorm:"not null"`
	ConsistencyScore     float64          `json:"consistency_score" gorm:"not null;default:0"`
	CompletionPercentage float64          `json:"completion_percentage" gorm:"not null;default:0"`
	NeedsReview          bool             `json:"needs_review" gorm:"not null;default:false"`
	ReviewReasons        datatypes.JSON   `json:"review_reasons" gorm:"type:jsonb"`

	// Raw input kept for audit and re-derivation
	Answers        datatypes.JSON `json:"answers" gorm:"type:jsonb;not null"`
	ElapsedSeconds *int           `json:"elapsed_seconds"`
	CompletedAt    time.Time      `json:"completed_at" gorm:"not null;index:idx_subject_completed,priority:2"`

	// Review workflow
	ReviewState ReviewState `json:"review_state" gorm:"not null;size:20;default:submitted;index"`
	FlaggedAt   *time.Time  `json:"flagged_at"`
	FlaggedBy   *string     `json:"flagged_by" gorm:"size:255"`
	ReviewedBy  *string     `json:"reviewed_by" gorm:"size:255"`
	ReviewedAt  *time.Time  `json:"reviewed_at"`
	ReviewNotes *string     `json:"review_notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ReviewEvents []AssessmentReviewEvent `json:"review_events,omitempty" gorm:"foreignKey:AssessmentID"`
}

func (SuggestibilityAssessment) TableName() string {
	return "suggestibility_assessments"
}

func (a *SuggestibilityAssessment) AnswerSet() (AnswerSet, error) {
	return AnswerSetFromJSON(a.Answers)
}

// ReasonList decodes the stored review reasons. An empty column yields an empty list.
func (a *SuggestibilityAssessment) ReasonList() ([]string, error) {
	reasons := []string{}
	if len(a.ReviewReasons) == 0 {
		return reasons, nil
	}
	if err := json.Unmarshal(a.ReviewReasons, &reasons); err != nil {
		return nil, fmt.Errorf("invalid review reasons: %w", err)
	}
	return reasons, nil
}

func ReasonsToJSON(reasons []string) (datatypes.JSON, error) {
	if reasons == nil {
		reasons = []string{}
	}
	data, err := json.Marshal(reasons)
	if err != nil {
		return nil, fmt.Errorf("failed to encode review reasons: %w", err)
	}
	return datatypes.JSON(data), nil
}
