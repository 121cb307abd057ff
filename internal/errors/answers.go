package errors

import (
	"fmt"
	"strings"
)

// IncompleteAnswerSetError is raised when an answer set does not cover exactly the
// questions of a questionnaire version.
type IncompleteAnswerSetError struct {
	VersionID string `json:"version_id"`
	Expected  int    `json:"expected"`
	Received  int    `json:"received"`
	Missing   []int  `json:"missing,omitempty"`
	Extra     []int  `json:"extra,omitempty"`
}

func (e *IncompleteAnswerSetError) Error() string {
	parts := []string{fmt.Sprintf("expected %d answers, received %d", e.Expected, e.Received)}
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing %v", e.Missing))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, fmt.Sprintf("extra %v", e.Extra))
	}
	return "incomplete answer set: " + strings.Join(parts, ", ")
}

// ValidationErrors converts the mismatch into field errors for API responses
func (e *IncompleteAnswerSetError) ValidationErrors() ValidationErrors {
	var errs ValidationErrors
	if len(e.Missing) > 0 {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: "missing answers for questions",
			Value:   e.Missing,
			Rule:    "missing_questions",
		})
	}
	if len(e.Extra) > 0 {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: "answers for unknown questions",
			Value:   e.Extra,
			Rule:    "extra_questions",
		})
	}
	if len(errs) == 0 {
		errs = append(errs, ValidationError{
			Field:   "answers",
			Message: fmt.Sprintf("must contain exactly %d answers", e.Expected),
			Value:   e.Received,
			Rule:    "answer_count",
		})
	}
	return errs
}
