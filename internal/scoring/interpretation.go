package scoring

import (
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

const traitThreshold = 60

type TherapeuticApproach struct {
	InductionStyle   string `json:"induction_style"`
	SuggestionFormat string `json:"suggestion_format"`
	LanguageStyle    string `json:"language_style"`
	Deepening        string `json:"deepening"`
	Imagery          string `json:"imagery"`
}

type Interpretation struct {
	SuggestibilityType  models.SuggestibilityType `json:"suggestibility_type"`
	PhysicalPercentage  int                       `json:"physical_percentage"`
	EmotionalPercentage int                       `json:"emotional_percentage"`
	PhysicalTraits      []string                  `json:"physical_traits"`
	EmotionalTraits     []string                  `json:"emotional_traits"`
	TherapeuticApproach TherapeuticApproach       `json:"therapeutic_approach"`
	ClinicalNotes       string                    `json:"clinical_notes"`
}

var (
	physicalTraits = []string{
		"Responds to direct, literal suggestions",
		"Prefers clear, straightforward communication",
		"Strong mind-body connection",
		"Learns best through demonstration",
		"Immediate physical response to suggestions",
	}
	emotionalTraits = []string{
		"Responds to inferential, metaphorical suggestions",
		"Analytical and introspective",
		"Sensitivity to tone and emotional context",
		"May experience mind-body disconnection",
		"Benefits from indirect therapeutic approaches",
	}

	physicalApproach = TherapeuticApproach{
		InductionStyle:   "Direct, authoritative",
		SuggestionFormat: "Literal, specific commands",
		LanguageStyle:    "Clear, concrete, step-by-step",
		Deepening:        "Progressive relaxation, counting",
		Imagery:          "Concrete, visual, kinesthetic",
	}
	emotionalApproach = TherapeuticApproach{
		InductionStyle:   "Permissive, conversational",
		SuggestionFormat: "Metaphorical, story-based",
		LanguageStyle:    "Abstract, inferential, open-ended",
		Deepening:        "Confusion, paradox, time distortion",
		Imagery:          "Abstract concepts, emotions, meanings",
	}
	balancedApproach = TherapeuticApproach{
		InductionStyle:   "Flexible, adaptive",
		SuggestionFormat: "Mix of direct and inferential",
		LanguageStyle:    "Varied - can use both styles",
		Deepening:        "Any method works well",
		Imagery:          "Both concrete and abstract",
	}

	clinicalNotes = map[models.SuggestibilityType]string{
		models.TypePurePhysical: "Client demonstrates strong direct suggestibility. " +
			"Use authoritative, direct inductions with literal suggestions. " +
			"Excellent response to progressive relaxation and direct imagery.",
		models.TypePrimarilyPhysical: "Client leans toward physical suggestibility. " +
			"Primarily use direct suggestions with some inferential elements. " +
			"Good response to structured, clear therapeutic approaches.",
		models.TypeBalanced: "Client shows balanced suggestibility - the 'ideal' hypnotic subject. " +
			"Can utilize both direct and inferential approaches effectively. " +
			"Highly flexible and responsive to various induction styles.",
		models.TypePrimarilyEmotional: "Client leans toward emotional suggestibility. " +
			"Primarily use inferential, metaphorical suggestions. " +
			"Benefits from permissive, conversational approaches.",
		models.TypePureEmotional: "Client demonstrates strong emotional suggestibility. " +
			"Use indirect, metaphorical, story-based approaches. " +
			"Avoid authoritative tone; use permissive suggestions.",
	}
)

// Interpret derives the clinician-facing reading of a classification
func Interpret(suggType models.SuggestibilityType, physicalPct, emotionalPct int) Interpretation {
	in := Interpretation{
		SuggestibilityType:  suggType,
		PhysicalPercentage:  physicalPct,
		EmotionalPercentage: emotionalPct,
		PhysicalTraits:      []string{},
		EmotionalTraits:     []string{},
		ClinicalNotes:       clinicalNotes[suggType],
	}

	if physicalPct >= traitThreshold {
		in.PhysicalTraits = append(in.PhysicalTraits, physicalTraits...)
	}
	if emotionalPct >= traitThreshold {
		in.EmotionalTraits = append(in.EmotionalTraits, emotionalTraits...)
	}

	switch {
	case physicalPct >= traitThreshold:
		in.TherapeuticApproach = physicalApproach
	case emotionalPct >= traitThreshold:
		in.TherapeuticApproach = emotionalApproach
	default:
		in.TherapeuticApproach = balancedApproach
	}

	return in
}

type AnsweredQuestion struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// AnswerBreakdown groups a subject's answers by category and by answer
type AnswerBreakdown struct {
	PhysicalYes  []AnsweredQuestion `json:"physical_yes"`
	PhysicalNo   []AnsweredQuestion `json:"physical_no"`
	EmotionalYes []AnsweredQuestion `json:"emotional_yes"`
	EmotionalNo  []AnsweredQuestion `json:"emotional_no"`
}

func BreakdownAnswers(answers models.AnswerSet, c *catalog.Catalog) AnswerBreakdown {
	out := AnswerBreakdown{
		PhysicalYes:  []AnsweredQuestion{},
		PhysicalNo:   []AnsweredQuestion{},
		EmotionalYes: []AnsweredQuestion{},
		EmotionalNo:  []AnsweredQuestion{},
	}
	for _, q := range c.Questions() {
		answer, ok := answers[q.Number]
		if !ok {
			continue
		}
		item := AnsweredQuestion{Number: q.Number, Text: q.Text}
		switch {
		case q.Category == models.CategoryPhysical && answer:
			out.PhysicalYes = append(out.PhysicalYes, item)
		case q.Category == models.CategoryPhysical:
			out.PhysicalNo = append(out.PhysicalNo, item)
		case answer:
			out.EmotionalYes = append(out.EmotionalYes, item)
		default:
			out.EmotionalNo = append(out.EmotionalNo, item)
		}
	}
	return out
}
