package models

import (
	"time"

	"gorm.io/datatypes"
)

type ReviewAction string

const (
	ReviewActionSubmitted ReviewAction = "submitted"
	ReviewActionFlagged   ReviewAction = "flagged"
	ReviewActionReflagged ReviewAction = "reflagged"
	ReviewActionApproved  ReviewAction = "approved"
	ReviewActionRejected  ReviewAction = "rejected"
)

// SystemActorID marks transitions made by the service itself (auto-flagging)
const SystemActorID = "system"

// AssessmentReviewEvent is an append-only audit entry; rows are never updated.
type AssessmentReviewEvent struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	AssessmentID string       `json:"assessment_id" gorm:"not null;size:36;index"`
	Action       ReviewAction `json:"action" gorm:"not null;size:20;index"`

	FromState *ReviewState `json:"from_state" gorm:"size:20"`
	ToState   ReviewState  `json:"to_state" gorm:"not null;size:20"`

	// Actor information
	ActorID   string   `json:"actor_id" gorm:"not null;size:255;index"`
	ActorRole UserRole `json:"actor_role" gorm:"not null;size:20"`

	Reason   *string        `json:"reason" gorm:"type:text"`
	Metadata datatypes.JSON `json:"metadata" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AssessmentReviewEvent) TableName() string {
	return "assessment_review_events"
}
