package models

import (
	"time"
)

type QuestionCategory string

const (
	CategoryPhysical  QuestionCategory = "physical"
	CategoryEmotional QuestionCategory = "emotional"
)

// ScoringPolarity names the answer that earns a question its weight
type ScoringPolarity string

const (
	PolarityYes ScoringPolarity = "yes"
	PolarityNo  ScoringPolarity = "no"
)

type ClassificationScheme string

const (
	// SchemeLookupBands bands the physical percentage resolved from the lookup table
	SchemeLookupBands ClassificationScheme = "lookup_bands"
	// SchemeScoreDifference compares raw primary and secondary scores
	SchemeScoreDifference ClassificationScheme = "score_difference"
)

// QuestionnaireVersion is immutable once seeded; only IsActive and ActivatedAt change.
type QuestionnaireVersion struct {
	ID                   string               `json:"id" gorm:"primaryKey;size:64"`
	Name                 string               `json:"name" gorm:"not null;size:200"`
	VersionTag           string               `json:"version_tag" gorm:"not null;size:50"`
	ClassificationScheme ClassificationScheme `json:"classification_scheme" gorm:"not null;size:30;default:lookup_bands"`

	// Lookup keys are clamped into these bounds before resolving a percentage
	PrimaryMin  int `json:"primary_min" gorm:"not null;default:0"`
	PrimaryMax  int `json:"primary_max" gorm:"not null;default:100"`
	CombinedMin int `json:"combined_min" gorm:"not null;default:0"`
	CombinedMax int `json:"combined_max" gorm:"not null;default:200"`

	IsActive    bool       `json:"is_active" gorm:"not null;default:false;index"`
	ActivatedAt *time.Time `json:"activated_at"`
	CreatedAt   time.Time  `json:"created_at"`

	Questions     []QuestionnaireQuestion `json:"questions,omitempty" gorm:"foreignKey:VersionID"`
	LookupEntries []ScoringLookupEntry    `json:"-" gorm:"foreignKey:VersionID"`
}

func (QuestionnaireVersion) TableName() string {
	return "questionnaire_versions"
}

type QuestionnaireQuestion struct {
	ID        uint             `json:"-" gorm:"primaryKey"`
	VersionID string           `json:"-" gorm:"not null;size:64;uniqueIndex:idx_version_number"`
	Number    int              `json:"number" gorm:"not null;uniqueIndex:idx_version_number"`
	Category  QuestionCategory `json:"category" gorm:"not null;size:20"`
	Weight    int              `json:"weight" gorm:"not null"`
	Polarity  ScoringPolarity  `json:"polarity" gorm:"not null;size:5;default:yes"`
	Text      string           `json:"text" gorm:"not null;type:text"`
}

func (QuestionnaireQuestion) TableName() string {
	return "questionnaire_questions"
}

// Earns reports whether the given answer credits the question's weight
func (q QuestionnaireQuestion) Earns(answer bool) bool {
	if q.Polarity == PolarityNo {
		return !answer
	}
	return answer
}

type ScoringLookupEntry struct {
	VersionID          string `json:"version_id" gorm:"primaryKey;size:64"`
	PrimaryScore       int    `json:"primary_score" gorm:"primaryKey;autoIncrement:false"`
	CombinedScore      int    `json:"combined_score" gorm:"primaryKey;autoIncrement:false"`
	PhysicalPercentage int    `json:"physical_percentage" gorm:"not null"`
}

func (ScoringLookupEntry) TableName() string {
	return "scoring_lookup_entries"
}
