package catalog

import (
	"fmt"
	"math"
	"sort"

	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
)

// LookupGranularity is the step of the scoring chart axes
const LookupGranularity = 5

type lookupKey struct {
	primary  int
	combined int
}

// Catalog is a loaded, validated questionnaire version together with its lookup
// table. It is read-only after construction and safe for concurrent use.
type Catalog struct {
	version   models.QuestionnaireVersion
	questions []models.QuestionnaireQuestion
	byNumber  map[int]models.QuestionnaireQuestion
	lookup    map[lookupKey]int
}

// New builds a catalog and checks that the lookup table covers every reachable
// rounded score pair. Any defect is reported as a ConfigurationError.
func New(version models.QuestionnaireVersion, questions []models.QuestionnaireQuestion, entries []models.ScoringLookupEntry) (*Catalog, error) {
	c := &Catalog{
		version:  version,
		byNumber: make(map[int]models.QuestionnaireQuestion, len(questions)),
		lookup:   make(map[lookupKey]int, len(entries)),
	}
	c.version.Questions = nil
	c.version.LookupEntries = nil

	if version.ClassificationScheme == "" {
		c.version.ClassificationScheme = models.SchemeLookupBands
	}

	c.questions = append(c.questions, questions...)
	sort.Slice(c.questions, func(i, j int) bool { return c.questions[i].Number < c.questions[j].Number })

	if err := c.validateQuestions(); err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.PhysicalPercentage < 0 || e.PhysicalPercentage > 100 {
			return nil, apperrors.NewConfigurationError("lookup_table",
				fmt.Sprintf("percentage %d out of range for (%d, %d)", e.PhysicalPercentage, e.PrimaryScore, e.CombinedScore), nil)
		}
		c.lookup[lookupKey{e.PrimaryScore, e.CombinedScore}] = e.PhysicalPercentage
	}

	if missing := c.MissingLookupPairs(); len(missing) > 0 {
		return nil, apperrors.NewConfigurationError("lookup_table",
			fmt.Sprintf("version %s has no entry for %d reachable score pairs, first (%d, %d)",
				version.ID, len(missing), missing[0][0], missing[0][1]), nil)
	}

	return c, nil
}

func (c *Catalog) validateQuestions() error {
	if c.version.ID == "" {
		return apperrors.NewConfigurationError("catalog", "questionnaire version id is empty", nil)
	}
	if len(c.questions) == 0 {
		return apperrors.NewConfigurationError("catalog", fmt.Sprintf("version %s has no questions", c.version.ID), nil)
	}
	switch c.version.ClassificationScheme {
	case models.SchemeLookupBands, models.SchemeScoreDifference:
	default:
		return apperrors.NewConfigurationError("catalog",
			fmt.Sprintf("unknown classification scheme %q", c.version.ClassificationScheme), nil)
	}
	if c.version.PrimaryMin > c.version.PrimaryMax || c.version.CombinedMin > c.version.CombinedMax {
		return apperrors.NewConfigurationError("catalog", "lookup bounds are inverted", nil)
	}

	for i, q := range c.questions {
		if q.Number != i+1 {
			return apperrors.NewConfigurationError("catalog",
				fmt.Sprintf("question numbers must be contiguous from 1, found %d at position %d", q.Number, i+1), nil)
		}
		if q.Weight <= 0 {
			return apperrors.NewConfigurationError("catalog", fmt.Sprintf("question %d has non-positive weight", q.Number), nil)
		}
		if q.Category != models.CategoryPhysical && q.Category != models.CategoryEmotional {
			return apperrors.NewConfigurationError("catalog", fmt.Sprintf("question %d has unknown category %q", q.Number, q.Category), nil)
		}
		if q.Polarity != models.PolarityYes && q.Polarity != models.PolarityNo {
			return apperrors.NewConfigurationError("catalog", fmt.Sprintf("question %d has unknown polarity %q", q.Number, q.Polarity), nil)
		}
		c.byNumber[q.Number] = q
	}
	return nil
}

func (c *Catalog) ID() string {
	return c.version.ID
}

func (c *Catalog) Version() models.QuestionnaireVersion {
	return c.version
}

func (c *Catalog) Scheme() models.ClassificationScheme {
	return c.version.ClassificationScheme
}

// Questions returns a copy of the questions ordered by number
func (c *Catalog) Questions() []models.QuestionnaireQuestion {
	out := make([]models.QuestionnaireQuestion, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Catalog) QuestionCount() int {
	return len(c.questions)
}

func (c *Catalog) Question(number int) (models.QuestionnaireQuestion, bool) {
	q, ok := c.byNumber[number]
	return q, ok
}

// MaxScores returns the highest attainable primary (physical) and secondary (emotional) scores
func (c *Catalog) MaxScores() (primary, secondary int) {
	for _, q := range c.questions {
		if q.Category == models.CategoryPhysical {
			primary += q.Weight
		} else {
			secondary += q.Weight
		}
	}
	return primary, secondary
}

// RoundScore rounds to the nearest chart step, halves away from zero
func RoundScore(score int) int {
	return int(math.Round(float64(score)/LookupGranularity)) * LookupGranularity
}

// LookupKey rounds raw primary and combined scores and clamps them into the
// version's chart bounds.
func (c *Catalog) LookupKey(primary, combined int) (int, int) {
	p := clamp(RoundScore(primary), c.version.PrimaryMin, c.version.PrimaryMax)
	cb := clamp(RoundScore(combined), c.version.CombinedMin, c.version.CombinedMax)
	return p, cb
}

// LookupPhysicalPercentage resolves an already rounded pair
func (c *Catalog) LookupPhysicalPercentage(primaryRounded, combinedRounded int) (int, bool) {
	p := clamp(primaryRounded, c.version.PrimaryMin, c.version.PrimaryMax)
	cb := clamp(combinedRounded, c.version.CombinedMin, c.version.CombinedMax)
	pct, ok := c.lookup[lookupKey{p, cb}]
	return pct, ok
}

// MissingLookupPairs lists reachable (primary, combined) keys without a table entry
func (c *Catalog) MissingLookupPairs() [][2]int {
	var missing [][2]int
	for _, pair := range c.ReachableLookupPairs() {
		if _, ok := c.lookup[lookupKey{pair[0], pair[1]}]; !ok {
			missing = append(missing, pair)
		}
	}
	return missing
}

// ReachableLookupPairs enumerates every distinct lookup key some answer set can produce
func (c *Catalog) ReachableLookupPairs() [][2]int {
	var physical, emotional []int
	for _, q := range c.questions {
		if q.Category == models.CategoryPhysical {
			physical = append(physical, q.Weight)
		} else {
			emotional = append(emotional, q.Weight)
		}
	}

	primarySums := subsetSums(physical)
	secondarySums := subsetSums(emotional)

	seen := make(map[lookupKey]struct{})
	var pairs [][2]int
	for _, p := range primarySums {
		for _, s := range secondarySums {
			pr, cb := c.LookupKey(p, p+s)
			k := lookupKey{pr, cb}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			pairs = append(pairs, [2]int{pr, cb})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

func subsetSums(weights []int) []int {
	sums := map[int]struct{}{0: {}}
	for _, w := range weights {
		next := make(map[int]struct{}, len(sums)*2)
		for s := range sums {
			next[s] = struct{}{}
			next[s+w] = struct{}{}
		}
		sums = next
	}
	out := make([]int, 0, len(sums))
	for s := range sums {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
