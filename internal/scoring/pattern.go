package scoring

import "github.com/SAP-F-2025/suggestibility-service/internal/models"

const (
	mostlyYesRatio       = 0.85
	mostlyNoRatio        = 0.15
	alternatingThreshold = 0.90
	suspiciousRunLength  = 10
)

// DetectPattern labels the shape of an ordered answer vector. Rules are checked
// in order and the first match wins, so the result is always exactly one signature.
func DetectPattern(answers []bool) models.PatternSignature {
	n := len(answers)
	if n == 0 {
		return models.PatternBalanced
	}

	yes := countYes(answers)
	switch yes {
	case n:
		return models.PatternAllYes
	case 0:
		return models.PatternAllNo
	}

	ratio := float64(yes) / float64(n)
	if ratio > mostlyYesRatio {
		return models.PatternMostlyYes
	}
	if ratio < mostlyNoRatio {
		return models.PatternMostlyNo
	}

	if AlternationRate(answers) >= alternatingThreshold {
		return models.PatternAlternating
	}

	if LongestRun(answers) >= suspiciousRunLength {
		return models.PatternSuspicious
	}

	return models.PatternBalanced
}

// YesRatio is the share of true answers; 0 for an empty vector
func YesRatio(answers []bool) float64 {
	if len(answers) == 0 {
		return 0
	}
	return float64(countYes(answers)) / float64(len(answers))
}

// AlternationRate is the fraction of adjacent pairs whose answers differ
func AlternationRate(answers []bool) float64 {
	if len(answers) < 2 {
		return 0
	}
	changes := 0
	for i := 1; i < len(answers); i++ {
		if answers[i] != answers[i-1] {
			changes++
		}
	}
	return float64(changes) / float64(len(answers)-1)
}

// LongestRun is the length of the longest streak of identical consecutive answers
func LongestRun(answers []bool) int {
	if len(answers) == 0 {
		return 0
	}
	longest, current := 1, 1
	for i := 1; i < len(answers); i++ {
		if answers[i] == answers[i-1] {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

func countYes(answers []bool) int {
	yes := 0
	for _, a := range answers {
		if a {
			yes++
		}
	}
	return yes
}
