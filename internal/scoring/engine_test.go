package scoring

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	apperrors "github.com/SAP-F-2025/suggestibility-service/internal/errors"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hmiCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	c, err := seed.Catalog()
	require.NoError(t, err)
	return c
}

// answersFrom builds an answer set numbered from 1
func answersFrom(values []bool) models.AnswerSet {
	answers := make(models.AnswerSet, len(values))
	for i, v := range values {
		answers[i+1] = v
	}
	return answers
}

func uniform(n int, v bool) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// smallCatalog has two physical and two emotional questions of weight 5; the
// second physical question is scored on a "no" answer.
func smallCatalog(t *testing.T, scheme models.ClassificationScheme) *catalog.Catalog {
	t.Helper()
	version := models.QuestionnaireVersion{
		ID:                   "mini",
		Name:                 "Mini",
		VersionTag:           "test",
		ClassificationScheme: scheme,
		PrimaryMin:           0,
		PrimaryMax:           10,
		CombinedMin:          0,
		CombinedMax:          20,
	}
	questions := []models.QuestionnaireQuestion{
		{Number: 1, Category: models.CategoryPhysical, Weight: 5, Polarity: models.PolarityYes, Text: "p1"},
		{Number: 2, Category: models.CategoryPhysical, Weight: 5, Polarity: models.PolarityNo, Text: "p2"},
		{Number: 3, Category: models.CategoryEmotional, Weight: 5, Polarity: models.PolarityYes, Text: "e1"},
		{Number: 4, Category: models.CategoryEmotional, Weight: 5, Polarity: models.PolarityYes, Text: "e2"},
	}
	var entries []models.ScoringLookupEntry
	for p := 0; p <= 10; p += 5 {
		for cb := 0; cb <= 20; cb += 5 {
			pct := 50
			if cb > 0 {
				pct = p * 100 / cb
				if pct > 100 {
					pct = 100
				}
			}
			entries = append(entries, models.ScoringLookupEntry{
				VersionID: "mini", PrimaryScore: p, CombinedScore: cb, PhysicalPercentage: pct,
			})
		}
	}
	c, err := catalog.New(version, questions, entries)
	require.NoError(t, err)
	return c
}

// evenSplit scores 50 on each side: questions 1, 3-10 and 19, 21-28 answered yes
func evenSplit() []bool {
	values := make([]bool, 36)
	for _, n := range []int{1, 3, 4, 5, 6, 7, 8, 9, 10, 19, 21, 22, 23, 24, 25, 26, 27, 28} {
		values[n-1] = true
	}
	return values
}

func TestScore_Scenarios(t *testing.T) {
	c := hmiCatalog(t)

	tests := []struct {
		name         string
		answers      []bool
		wantPrimary  int
		wantCombined int
		wantPhysical int
		wantType     models.SuggestibilityType
	}{
		{
			name:         "all yes",
			answers:      uniform(36, true),
			wantPrimary:  100,
			wantCombined: 200,
			wantPhysical: 50,
			wantType:     models.TypeBalanced,
		},
		{
			name:         "all no",
			answers:      uniform(36, false),
			wantPrimary:  0,
			wantCombined: 0,
			wantPhysical: 50,
			wantType:     models.TypeBalanced,
		},
		{
			name:         "physical only",
			answers:      append(uniform(18, true), uniform(18, false)...),
			wantPrimary:  100,
			wantCombined: 100,
			wantPhysical: 100,
			wantType:     models.TypePurePhysical,
		},
		{
			name:         "emotional only",
			answers:      append(uniform(18, false), uniform(18, true)...),
			wantPrimary:  0,
			wantCombined: 100,
			wantPhysical: 0,
			wantType:     models.TypePureEmotional,
		},
		{
			name:         "even split",
			answers:      evenSplit(),
			wantPrimary:  50,
			wantCombined: 100,
			wantPhysical: 50,
			wantType:     models.TypeBalanced,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Score(answersFrom(tt.answers), c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrimary, b.PrimaryScore)
			assert.Equal(t, tt.wantCombined, b.CombinedScore)
			assert.Equal(t, b.PrimaryScore+b.SecondaryScore, b.CombinedScore)
			assert.Equal(t, tt.wantPhysical, b.PhysicalPercentage)
			assert.Equal(t, 100-tt.wantPhysical, b.EmotionalPercentage)
			assert.Equal(t, tt.wantType, b.SuggestibilityType)
		})
	}
}

func TestScore_PercentagesAlwaysSumTo100(t *testing.T) {
	c := hmiCatalog(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		values := make([]bool, 36)
		for j := range values {
			values[j] = rng.Intn(2) == 1
		}
		b, err := Score(answersFrom(values), c)
		require.NoError(t, err)
		assert.Equal(t, 100, b.PhysicalPercentage+b.EmotionalPercentage)
		assert.GreaterOrEqual(t, b.PhysicalPercentage, 0)
		assert.LessOrEqual(t, b.PhysicalPercentage, 100)
		assert.Equal(t, b.PrimaryScore+b.SecondaryScore, b.CombinedScore)
	}
}

func TestScore_Deterministic(t *testing.T) {
	c := hmiCatalog(t)
	values := []bool{
		true, false, true, true, false, false, true, false, true,
		false, true, true, false, true, false, false, true, true,
		false, false, true, false, true, true, false, true, false,
		true, false, false, true, true, false, true, false, true,
	}

	first, err := Score(answersFrom(values), c)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Score(answersFrom(values), c)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScore_IncompleteAnswerSet(t *testing.T) {
	c := hmiCatalog(t)
	answers := answersFrom(uniform(35, true))
	answers[40] = true

	_, err := Score(answers, c)

	var incomplete *apperrors.IncompleteAnswerSetError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, 36, incomplete.Expected)
	assert.Equal(t, 36, incomplete.Received)
	assert.Equal(t, []int{36}, incomplete.Missing)
	assert.Equal(t, []int{40}, incomplete.Extra)
}

func TestScore_ReversePolarity(t *testing.T) {
	c := smallCatalog(t, models.SchemeLookupBands)

	// "no" on question 2 earns its weight
	b, err := Score(models.AnswerSet{1: true, 2: false, 3: false, 4: false}, c)
	require.NoError(t, err)
	assert.Equal(t, 10, b.PrimaryScore)
	assert.Equal(t, 0, b.SecondaryScore)

	b, err = Score(models.AnswerSet{1: true, 2: true, 3: false, 4: false}, c)
	require.NoError(t, err)
	assert.Equal(t, 5, b.PrimaryScore)
}

func TestScore_ScoreDifferenceScheme(t *testing.T) {
	c := smallCatalog(t, models.SchemeScoreDifference)

	tests := []struct {
		name    string
		answers models.AnswerSet
		want    models.SuggestibilityType
	}{
		{"physical lead", models.AnswerSet{1: true, 2: false, 3: false, 4: false}, models.TypePrimarilyPhysical},
		{"emotional lead", models.AnswerSet{1: false, 2: true, 3: true, 4: true}, models.TypePrimarilyEmotional},
		{"even", models.AnswerSet{1: true, 2: true, 3: true, 4: false}, models.TypeBalanced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Score(tt.answers, c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.SuggestibilityType)
		})
	}
}

func TestClassifyByPercentage_Boundaries(t *testing.T) {
	tests := []struct {
		pct  int
		want models.SuggestibilityType
	}{
		{100, models.TypePurePhysical},
		{90, models.TypePurePhysical},
		{89, models.TypePrimarilyPhysical},
		{60, models.TypePrimarilyPhysical},
		{59, models.TypeBalanced},
		{40, models.TypeBalanced},
		{39, models.TypePrimarilyEmotional},
		{11, models.TypePrimarilyEmotional},
		{10, models.TypePureEmotional},
		{0, models.TypePureEmotional},
	}
	for _, tt := range tests {
		if got := ClassifyByPercentage(tt.pct); got != tt.want {
			t.Errorf("ClassifyByPercentage(%d) = %s, want %s", tt.pct, got, tt.want)
		}
	}
}

func TestInterpret(t *testing.T) {
	in := Interpret(models.TypePrimarilyPhysical, 69, 31)
	assert.Len(t, in.PhysicalTraits, 5)
	assert.Empty(t, in.EmotionalTraits)
	assert.Equal(t, "Direct, authoritative", in.TherapeuticApproach.InductionStyle)
	assert.NotEmpty(t, in.ClinicalNotes)

	balanced := Interpret(models.TypeBalanced, 50, 50)
	assert.Empty(t, balanced.PhysicalTraits)
	assert.Equal(t, "Flexible, adaptive", balanced.TherapeuticApproach.InductionStyle)
}

func TestBreakdownAnswers(t *testing.T) {
	c := hmiCatalog(t)
	out := BreakdownAnswers(answersFrom(append(uniform(18, true), uniform(18, false)...)), c)

	assert.Len(t, out.PhysicalYes, 18)
	assert.Empty(t, out.PhysicalNo)
	assert.Empty(t, out.EmotionalYes)
	assert.Len(t, out.EmotionalNo, 18)
	assert.Equal(t, 1, out.PhysicalYes[0].Number)
}
