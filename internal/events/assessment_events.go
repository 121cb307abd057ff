package events

import (
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/google/uuid"
)

const (
	eventSource  = "suggestibility-service"
	eventVersion = "1.0"
)

// EventType represents the lifecycle events of a suggestibility assessment
type EventType string

const (
	EventAssessmentSubmitted EventType = "assessment.submitted"
	EventAssessmentFlagged   EventType = "assessment.flagged"
	EventAssessmentReviewed  EventType = "assessment.reviewed"
)

// AssessmentEvent is the envelope for every event this service publishes
type AssessmentEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AssessmentSubmittedEvent struct {
	AssessmentID       string                    `json:"assessment_id"`
	SubjectID          string                    `json:"subject_id"`
	VersionID          string                    `json:"questionnaire_version_id"`
	SuggestibilityType models.SuggestibilityType `json:"suggestibility_type"`
	PhysicalPercentage int                       `json:"physical_percentage"`
	PatternSignature   models.PatternSignature   `json:"pattern_signature"`
	ConfidenceScore    float64                   `json:"confidence_score"`
	NeedsReview        bool                      `json:"needs_review"`
	CompletedAt        time.Time                 `json:"completed_at"`
}

type AssessmentFlaggedEvent struct {
	AssessmentID string              `json:"assessment_id"`
	SubjectID    string              `json:"subject_id"`
	Action       models.ReviewAction `json:"action"`
	Automatic    bool                `json:"automatic"`
	Reasons      []string            `json:"reasons"`
	FlaggedBy    string              `json:"flagged_by"`
	FlaggedAt    time.Time           `json:"flagged_at"`
}

type AssessmentReviewedEvent struct {
	AssessmentID string             `json:"assessment_id"`
	SubjectID    string             `json:"subject_id"`
	Decision     models.ReviewState `json:"decision"`
	ReviewerID   string             `json:"reviewer_id"`
	ReviewedAt   time.Time          `json:"reviewed_at"`
	HasNotes     bool               `json:"has_notes"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *AssessmentEvent {
	return &AssessmentEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAssessmentSubmittedEvent(a *models.SuggestibilityAssessment) *AssessmentEvent {
	return newEvent(EventAssessmentSubmitted, AssessmentSubmittedEvent{
		AssessmentID:       a.ID,
		SubjectID:          a.SubjectID,
		VersionID:          a.QuestionnaireVersionID,
		SuggestibilityType: a.SuggestibilityType,
		PhysicalPercentage: a.PhysicalPercentage,
		PatternSignature:   a.PatternSignature,
		ConfidenceScore:    a.ConfidenceScore,
		NeedsReview:        a.NeedsReview,
		CompletedAt:        a.CompletedAt,
	})
}

func NewAssessmentFlaggedEvent(a *models.SuggestibilityAssessment, action models.ReviewAction, actorID string, reasons []string, at time.Time) *AssessmentEvent {
	return newEvent(EventAssessmentFlagged, AssessmentFlaggedEvent{
		AssessmentID: a.ID,
		SubjectID:    a.SubjectID,
		Action:       action,
		Automatic:    actorID == models.SystemActorID,
		Reasons:      reasons,
		FlaggedBy:    actorID,
		FlaggedAt:    at,
	})
}

func NewAssessmentReviewedEvent(a *models.SuggestibilityAssessment, decision models.ReviewState, reviewerID string, hasNotes bool, at time.Time) *AssessmentEvent {
	return newEvent(EventAssessmentReviewed, AssessmentReviewedEvent{
		AssessmentID: a.ID,
		SubjectID:    a.SubjectID,
		Decision:     decision,
		ReviewerID:   reviewerID,
		ReviewedAt:   at,
		HasNotes:     hasNotes,
	})
}

func GenerateEventID() string {
	return uuid.NewString()
}
