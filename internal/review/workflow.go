// Package review holds the clinical review state machine. It decides which
// transitions are legal; persisting them is the caller's job.
package review

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

var ErrInvalidTransition = errors.New("invalid review state transition")

const (
	MinFlagReasonLength  = 10
	MaxFlagReasonLength  = 500
	MaxReviewNotesLength = 2000
)

var transitions = map[models.ReviewState][]models.ReviewState{
	models.ReviewSubmitted: {models.ReviewFlagged},
	models.ReviewFlagged:   {models.ReviewFlagged, models.ReviewApproved, models.ReviewRejected},
	models.ReviewApproved:  {},
	models.ReviewRejected:  {},
}

// Transition is a legal move computed from the current state
type Transition struct {
	From   models.ReviewState
	To     models.ReviewState
	Action models.ReviewAction
}

func CanTransition(from, to models.ReviewState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Flag moves a submitted record into review. Flagging an already flagged record is
// a re-flag: the state stays Flagged and the new reason is appended to the trail.
func Flag(current models.ReviewState) (Transition, error) {
	switch current {
	case models.ReviewSubmitted:
		return Transition{From: current, To: models.ReviewFlagged, Action: models.ReviewActionFlagged}, nil
	case models.ReviewFlagged:
		return Transition{From: current, To: models.ReviewFlagged, Action: models.ReviewActionReflagged}, nil
	default:
		return Transition{}, fmt.Errorf("%w: cannot flag a %s assessment", ErrInvalidTransition, current)
	}
}

// Decide closes a review. Only flagged records can be approved or rejected.
func Decide(current models.ReviewState, approved bool) (Transition, error) {
	next, action := models.ReviewRejected, models.ReviewActionRejected
	if approved {
		next, action = models.ReviewApproved, models.ReviewActionApproved
	}
	if current != models.ReviewFlagged || !CanTransition(current, next) {
		return Transition{}, fmt.Errorf("%w: cannot move %s to %s", ErrInvalidTransition, current, next)
	}
	return Transition{From: current, To: next, Action: action}, nil
}

// CanReview reports whether the role may approve or reject
func CanReview(role models.UserRole) bool {
	return role.AtLeast(models.RoleClinician)
}

// CanFlag reports whether the actor may flag an assessment owned by subjectID
func CanFlag(actor models.Actor, subjectID string) bool {
	if actor.Role.AtLeast(models.RoleClinician) {
		return true
	}
	return actor.Role.IsValid() && actor.ID == subjectID
}
