package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStatistics(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.submit(t, subjectActor, balancedAnswers(), 240)
	env.submit(t, subjectActor, balancedAnswers(), 240)
	env.submit(t, subjectActor, balancedAnswers(), 240)
	env.submit(t, otherSubject, uniformAnswers(true), 300)

	_, err := env.manager.Quality().Statistics(ctx, clinicianActor, 30)
	assert.True(t, IsUnauthorized(err))

	for _, days := range []int{-1, 366} {
		_, err = env.manager.Quality().Statistics(ctx, adminActor, days)
		assert.True(t, IsValidation(err), "window %d", days)
	}

	stats, err := env.manager.Quality().Statistics(ctx, adminActor, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWindowDays, stats.WindowDays)
	assert.Equal(t, int64(4), stats.TotalAssessments)
	assert.Equal(t, 80.0, stats.AvgConfidence)
	assert.Equal(t, int64(3), stats.PatternHistogram[models.PatternBalanced])
	assert.Equal(t, int64(1), stats.PatternHistogram[models.PatternAllYes])
	assert.Len(t, stats.PatternHistogram, len(models.AllPatternSignatures))
	assert.Equal(t, int64(1), stats.FlaggedCount)
	assert.Equal(t, int64(1), stats.NeedsReviewCount)
	assert.Equal(t, 25.0, stats.FlaggedPercentage)
}

func TestStatistics_Empty(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.manager.Quality().Statistics(context.Background(), adminActor, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalAssessments)
	assert.Equal(t, 0.0, stats.FlaggedPercentage)
}

func TestRederive_RestoresDerivedColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	clean := env.submit(t, subjectActor, balancedAnswers(), 240)
	flagged := env.submit(t, otherSubject, uniformAnswers(true), 300)
	_, err := env.manager.Review().Review(ctx, clinicianActor, flagged.ID, &ReviewAssessmentRequest{Approved: approve(true)})
	require.NoError(t, err)

	// Corrupt the derived columns of both records
	for _, id := range []string{clean.ID, flagged.ID} {
		a, err := env.repo.Assessment().GetByID(ctx, nil, id)
		require.NoError(t, err)
		a.PhysicalPercentage = 99
		a.EmotionalPercentage = 1
		a.ConfidenceScore = 0
		require.NoError(t, env.repo.Assessment().UpdateDerived(ctx, nil, a))
	}
	require.NoError(t, env.cache.Set(ctx, "style:subject-1", DeriveCommunicationStyle(nil), 0))

	_, err = env.manager.Quality().Rederive(ctx, clinicianActor, 0)
	assert.True(t, IsUnauthorized(err))

	result, err := env.manager.Quality().Rederive(ctx, adminActor, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Updated)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Flagged)
	assert.False(t, env.cache.has("style:subject-1"))

	restored, err := env.repo.Assessment().GetByID(ctx, nil, clean.ID)
	require.NoError(t, err)
	assert.Equal(t, clean.PhysicalPercentage, restored.PhysicalPercentage)
	assert.Equal(t, clean.ConfidenceScore, restored.ConfidenceScore)

	stillApproved, err := env.repo.Assessment().GetByID(ctx, nil, flagged.ID)
	require.NoError(t, err)
	assert.Equal(t, flagged.PhysicalPercentage, stillApproved.PhysicalPercentage)
	assert.Equal(t, models.ReviewApproved, stillApproved.ReviewState)
}

func TestRederive_FlagsRecordThatNowNeedsReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// All-yes answers stored with derived columns from a clean submission
	stale := env.store(t, uniformAnswerSet(true), []byte(`[]`))

	result, err := env.manager.Quality().Rederive(ctx, adminActor, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Flagged)

	stored, err := env.repo.Assessment().GetByID(ctx, nil, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewFlagged, stored.ReviewState)
	assert.True(t, stored.NeedsReview)
	assert.Equal(t, models.PatternAllYes, stored.PatternSignature)
	require.NotNil(t, stored.FlaggedBy)
	assert.Equal(t, models.SystemActorID, *stored.FlaggedBy)
	assert.NotNil(t, stored.FlaggedAt)

	page, err := env.manager.Review().PendingReviews(ctx, clinicianActor, 10, 0)
	require.NoError(t, err)
	require.Len(t, page.Assessments, 1)
	assert.Equal(t, stale.ID, page.Assessments[0].ID)

	trail, err := env.manager.Review().ReviewHistory(ctx, clinicianActor, stale.ID)
	require.NoError(t, err)
	require.NotEmpty(t, trail)
	last := trail[len(trail)-1]
	assert.Equal(t, models.ReviewActionFlagged, last.Action)
	assert.Equal(t, models.SystemActorID, last.ActorID)

	assert.Equal(t, []events.EventType{events.EventAssessmentFlagged}, env.publisher.EventTypes())
	assert.Equal(t, 1, env.count(t, "suggestibility_assessments_flagged_total"))

	// Already flagged, so a second pass has nothing to move
	result, err = env.manager.Quality().Rederive(ctx, adminActor, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Flagged)
	assert.Len(t, env.publisher.EventTypes(), 1)
}

func TestRederive_Limit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.submit(t, subjectActor, balancedAnswers(), 240)
	}

	result, err := env.manager.Quality().Rederive(context.Background(), adminActor, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
}

func TestExport_PendingReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.submit(t, subjectActor, balancedAnswers(), 240)
	flagged := env.submit(t, otherSubject, uniformAnswers(false), 300)

	_, err := env.manager.Export().ExportPendingReviews(ctx, subjectActor)
	assert.True(t, IsUnauthorized(err))

	data, err := env.manager.Export().ExportPendingReviews(ctx, clinicianActor)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Pending Reviews")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeaders[0], rows[0][0])
	assert.Equal(t, flagged.ID, rows[1][0])
	assert.Equal(t, string(models.ReviewFlagged), rows[1][10])
}

func TestExport_SubjectHistory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.submit(t, subjectActor, balancedAnswers(), 240)
	env.submit(t, subjectActor, uniformAnswers(true), 300)

	data, err := env.manager.Export().ExportSubjectHistory(ctx, clinicianActor, subjectActor.ID)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("History")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"History"}, f.GetSheetList())
}

func TestReasonsColumn_Unreadable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	broken := env.store(t, uniformAnswerSet(false), []byte(`{"not":"a list"}`))

	got, err := env.manager.Suggestibility().GetAssessment(ctx, clinicianActor, broken.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, got.ReviewReasons)

	_, err = env.manager.Export().ExportSubjectHistory(ctx, clinicianActor, subjectActor.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), broken.ID)
}

func uniformAnswerSet(v bool) models.AnswerSet {
	answers := make(models.AnswerSet, 36)
	for n := 1; n <= 36; n++ {
		answers[n] = v
	}
	return answers
}

// store writes a submitted record directly, with the derived columns of a
// clean Primarily Physical result regardless of the answers given
func (e *testEnv) store(t *testing.T, answers models.AnswerSet, reasons []byte) *models.SuggestibilityAssessment {
	t.Helper()
	raw, err := answers.ToJSON()
	require.NoError(t, err)

	a := &models.SuggestibilityAssessment{
		ID:                     uuid.NewString(),
		SubjectID:              subjectActor.ID,
		QuestionnaireVersionID: "hmi-v1",
		PrimaryScore:           60,
		SecondaryScore:         40,
		CombinedScore:          100,
		PhysicalPercentage:     60,
		EmotionalPercentage:    40,
		SuggestibilityType:     models.TypePrimarilyPhysical,
		PatternSignature:       models.PatternBalanced,
		ConfidenceScore:        100,
		CompletionPercentage:   100,
		ReviewReasons:          reasons,
		Answers:                raw,
		ElapsedSeconds:         elapsed(300),
		CompletedAt:            time.Now().UTC(),
		ReviewState:            models.ReviewSubmitted,
	}
	require.NoError(t, e.repo.Assessment().Create(context.Background(), nil, a))
	return a
}
