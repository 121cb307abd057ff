package scoring

import (
	"fmt"
	"math"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

const (
	baseConfidence = 100.0

	// Confidence below this routes the assessment to clinical review
	ReviewConfidenceThreshold = 60.0

	// Elapsed-time windows, seconds
	tooFastForConfidence = 120
	tooSlowForConfidence = 1200
	idealWindowStart     = 180
	idealWindowEnd       = 600
	tooFastForReview     = 90
)

// QualityMetrics is the trust assessment of one answer set
type QualityMetrics struct {
	PatternSignature     models.PatternSignature `json:"pattern_signature"`
	ConfidenceScore      float64                 `json:"confidence_score"`
	ConsistencyScore     float64                 `json:"consistency_score"`
	CompletionPercentage float64                 `json:"completion_percentage"`
	NeedsReview          bool                    `json:"needs_review"`
	ReviewReasons        []string                `json:"review_reasons"`
}

// Evaluate runs the detector and the confidence calculator over an ordered
// answer vector. questionCount is the size of the questionnaire the answers
// belong to. elapsedSeconds is nil when the client did not report timing.
func Evaluate(answers []bool, elapsedSeconds *int, questionCount int) QualityMetrics {
	pattern := DetectPattern(answers)
	confidence := ConfidenceFor(pattern, YesRatio(answers), elapsedSeconds)
	needsReview := NeedsReview(pattern, confidence, elapsedSeconds)

	completion := 0.0
	if questionCount > 0 {
		completion = math.Min(100, float64(len(answers))/float64(questionCount)*100)
	}

	return QualityMetrics{
		PatternSignature:     pattern,
		ConfidenceScore:      confidence,
		ConsistencyScore:     ConsistencyScore(pattern),
		CompletionPercentage: completion,
		NeedsReview:          needsReview,
		ReviewReasons:        ReviewReasons(pattern, confidence, elapsedSeconds),
	}
}

// Confidence scores an answer vector on 0..100
func Confidence(answers []bool, elapsedSeconds *int) float64 {
	return ConfidenceFor(DetectPattern(answers), YesRatio(answers), elapsedSeconds)
}

// ConfidenceFor applies the ratio, pattern and timing adjustments to a base of 100
func ConfidenceFor(pattern models.PatternSignature, yesRatio float64, elapsedSeconds *int) float64 {
	confidence := baseConfidence

	switch {
	case yesRatio > 0.9 || yesRatio < 0.1:
		confidence -= 40
	case yesRatio > 0.8 || yesRatio < 0.2:
		confidence -= 20
	}

	switch pattern {
	case models.PatternAllYes, models.PatternAllNo, models.PatternAlternating:
		confidence -= 50
	case models.PatternSuspicious:
		confidence -= 30
	}

	if elapsedSeconds != nil {
		elapsed := *elapsedSeconds
		switch {
		case elapsed < tooFastForConfidence:
			confidence -= 30
		case elapsed > tooSlowForConfidence:
			confidence -= 10
		case elapsed >= idealWindowStart && elapsed <= idealWindowEnd:
			confidence += 10
		}
	}

	return math.Max(0, math.Min(100, confidence))
}

func isReviewPattern(pattern models.PatternSignature) bool {
	switch pattern {
	case models.PatternAllYes, models.PatternAllNo, models.PatternAlternating, models.PatternSuspicious:
		return true
	}
	return false
}

func NeedsReview(pattern models.PatternSignature, confidence float64, elapsedSeconds *int) bool {
	if confidence < ReviewConfidenceThreshold {
		return true
	}
	if isReviewPattern(pattern) {
		return true
	}
	return elapsedSeconds != nil && *elapsedSeconds < tooFastForReview
}

// ReviewReasons lists every condition that sent the assessment to review, in a
// fixed order. Empty when no review is needed.
func ReviewReasons(pattern models.PatternSignature, confidence float64, elapsedSeconds *int) []string {
	reasons := []string{}
	if !NeedsReview(pattern, confidence, elapsedSeconds) {
		return reasons
	}

	if confidence < ReviewConfidenceThreshold {
		reasons = append(reasons, fmt.Sprintf("Low confidence score (%.1f)", confidence))
	}

	switch pattern {
	case models.PatternAllYes, models.PatternAllNo:
		reasons = append(reasons, fmt.Sprintf("Extreme answer pattern: %s", pattern))
	case models.PatternAlternating, models.PatternSuspicious:
		reasons = append(reasons, fmt.Sprintf("Suspicious answer pattern: %s", pattern))
	}

	if elapsedSeconds != nil && *elapsedSeconds < tooFastForReview {
		reasons = append(reasons, fmt.Sprintf("Completed too quickly (%ds)", *elapsedSeconds))
	}

	return reasons
}

// ConsistencyScore rates how internally consistent a pattern looks
func ConsistencyScore(pattern models.PatternSignature) float64 {
	switch pattern {
	case models.PatternBalanced:
		return 85
	case models.PatternMostlyYes, models.PatternMostlyNo:
		return 70
	default:
		return 50
	}
}
