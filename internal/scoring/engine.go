// Package scoring turns a questionnaire answer set into a suggestibility
// classification and judges how far the answers can be trusted. Everything in
// this package is a pure function of its inputs.
package scoring

import (
	"fmt"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

// ScoreDifferenceThreshold is the raw-score gap the score_difference scheme needs
// before it leans a result to one side.
const ScoreDifferenceThreshold = 10

// ErrLookupMiss is wrapped when the lookup table has no entry for a rounded pair
var ErrLookupMiss = catalog.ErrLookupMiss

type Breakdown struct {
	PrimaryScore        int                       `json:"primary_score"`
	SecondaryScore      int                       `json:"secondary_score"`
	CombinedScore       int                       `json:"combined_score"`
	PrimaryRounded      int                       `json:"primary_rounded"`
	CombinedRounded     int                       `json:"combined_rounded"`
	PhysicalPercentage  int                       `json:"physical_percentage"`
	EmotionalPercentage int                       `json:"emotional_percentage"`
	SuggestibilityType  models.SuggestibilityType `json:"suggestibility_type"`
}

// Score computes the weighted breakdown of a complete answer set
func Score(answers models.AnswerSet, c *catalog.Catalog) (*Breakdown, error) {
	if err := CheckAnswerSet(answers, c); err != nil {
		return nil, err
	}

	b := &Breakdown{}
	for _, q := range c.Questions() {
		if !q.Earns(answers[q.Number]) {
			continue
		}
		if q.Category == models.CategoryPhysical {
			b.PrimaryScore += q.Weight
		} else {
			b.SecondaryScore += q.Weight
		}
	}
	b.CombinedScore = b.PrimaryScore + b.SecondaryScore
	b.PrimaryRounded, b.CombinedRounded = c.LookupKey(b.PrimaryScore, b.CombinedScore)

	pct, ok := c.LookupPhysicalPercentage(b.PrimaryRounded, b.CombinedRounded)
	if !ok {
		return nil, apperrors.NewConfigurationError("lookup_table",
			fmt.Sprintf("version %s (%d, %d)", c.ID(), b.PrimaryRounded, b.CombinedRounded), ErrLookupMiss)
	}
	b.PhysicalPercentage = pct
	b.EmotionalPercentage = 100 - pct

	switch c.Scheme() {
	case models.SchemeScoreDifference:
		b.SuggestibilityType = ClassifyByDifference(b.PrimaryScore, b.SecondaryScore)
	default:
		b.SuggestibilityType = ClassifyByPercentage(pct)
	}

	return b, nil
}

// CheckAnswerSet verifies the answer set has exactly one entry per question
func CheckAnswerSet(answers models.AnswerSet, c *catalog.Catalog) error {
	var missing, extra []int
	for _, q := range c.Questions() {
		if _, ok := answers[q.Number]; !ok {
			missing = append(missing, q.Number)
		}
	}
	for _, n := range answers.Numbers() {
		if _, ok := c.Question(n); !ok {
			extra = append(extra, n)
		}
	}

	if len(missing) == 0 && len(extra) == 0 {
		return nil
	}
	return &apperrors.IncompleteAnswerSetError{
		VersionID: c.ID(),
		Expected:  c.QuestionCount(),
		Received:  len(answers),
		Missing:   missing,
		Extra:     extra,
	}
}

// ClassifyByPercentage bands the physical percentage into the five HMI types
func ClassifyByPercentage(physicalPercentage int) models.SuggestibilityType {
	switch {
	case physicalPercentage >= 90:
		return models.TypePurePhysical
	case physicalPercentage >= 60:
		return models.TypePrimarilyPhysical
	case physicalPercentage >= 40:
		return models.TypeBalanced
	case physicalPercentage >= 11:
		return models.TypePrimarilyEmotional
	default:
		return models.TypePureEmotional
	}
}

// ClassifyByDifference is the coarse three-way scheme on raw scores
func ClassifyByDifference(primary, secondary int) models.SuggestibilityType {
	diff := primary - secondary
	switch {
	case diff >= ScoreDifferenceThreshold:
		return models.TypePrimarilyPhysical
	case diff <= -ScoreDifferenceThreshold:
		return models.TypePrimarilyEmotional
	default:
		return models.TypeBalanced
	}
}
