package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"os"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// DefaultSeedFile is the questionnaire shipped with the service
const DefaultSeedFile = "seed/hmi_v1.yaml"

// Seed is the on-disk description of one questionnaire version
type Seed struct {
	ID                   string                      `yaml:"id"`
	Name                 string                      `yaml:"name"`
	VersionTag           string                      `yaml:"version_tag"`
	ClassificationScheme models.ClassificationScheme `yaml:"classification_scheme"`
	Bounds               SeedBounds                  `yaml:"bounds"`
	Questions            []SeedQuestion              `yaml:"questions"`
	Lookup               SeedLookup                  `yaml:"lookup"`
}

type SeedBounds struct {
	PrimaryMin  int `yaml:"primary_min"`
	PrimaryMax  int `yaml:"primary_max"`
	CombinedMin int `yaml:"combined_min"`
	CombinedMax int `yaml:"combined_max"`
}

type SeedQuestion struct {
	Number   int                     `yaml:"number"`
	Category models.QuestionCategory `yaml:"category"`
	Weight   int                     `yaml:"weight"`
	Polarity models.ScoringPolarity  `yaml:"polarity"`
	Text     string                  `yaml:"text"`
}

// SeedLookup stores the chart row by row: Combined holds the column keys and each
// row holds one percentage per column.
type SeedLookup struct {
	Combined []int          `yaml:"combined"`
	Rows     []SeedLookupRow `yaml:"rows"`
}

type SeedLookupRow struct {
	Primary  int   `yaml:"primary"`
	Physical []int `yaml:"physical"`
}

// DefaultSeed parses the embedded questionnaire
func DefaultSeed() (*Seed, error) {
	data, err := seedFS.ReadFile(DefaultSeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded seed: %w", err)
	}
	return ParseSeed(bytes.NewReader(data))
}

// LoadSeedFile parses a seed from disk; an empty path falls back to the embedded seed
func LoadSeedFile(path string) (*Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return ParseSeed(f)
}

func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	return &seed, nil
}

// Models converts the seed into the persisted questionnaire rows
func (s *Seed) Models() (models.QuestionnaireVersion, []models.QuestionnaireQuestion, []models.ScoringLookupEntry, error) {
	version := models.QuestionnaireVersion{
		ID:                   s.ID,
		Name:                 s.Name,
		VersionTag:           s.VersionTag,
		ClassificationScheme: s.ClassificationScheme,
		PrimaryMin:           s.Bounds.PrimaryMin,
		PrimaryMax:           s.Bounds.PrimaryMax,
		CombinedMin:          s.Bounds.CombinedMin,
		CombinedMax:          s.Bounds.CombinedMax,
	}

	questions := make([]models.QuestionnaireQuestion, 0, len(s.Questions))
	for _, q := range s.Questions {
		polarity := q.Polarity
		if polarity == "" {
			polarity = models.PolarityYes
		}
		questions = append(questions, models.QuestionnaireQuestion{
			VersionID: s.ID,
			Number:    q.Number,
			Category:  q.Category,
			Weight:    q.Weight,
			Polarity:  polarity,
			Text:      q.Text,
		})
	}

	entries := make([]models.ScoringLookupEntry, 0, len(s.Lookup.Rows)*len(s.Lookup.Combined))
	for _, row := range s.Lookup.Rows {
		if len(row.Physical) != len(s.Lookup.Combined) {
			return version, nil, nil, fmt.Errorf("lookup row %d has %d values, expected %d",
				row.Primary, len(row.Physical), len(s.Lookup.Combined))
		}
		for i, combined := range s.Lookup.Combined {
			entries = append(entries, models.ScoringLookupEntry{
				VersionID:          s.ID,
				PrimaryScore:       row.Primary,
				CombinedScore:      combined,
				PhysicalPercentage: row.Physical[i],
			})
		}
	}

	return version, questions, entries, nil
}

// Catalog builds and validates the in-memory catalog for this seed
func (s *Seed) Catalog() (*Catalog, error) {
	version, questions, entries, err := s.Models()
	if err != nil {
		return nil, err
	}
	return New(version, questions, entries)
}
