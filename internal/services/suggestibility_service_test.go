package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/cache"
	"github.com/SAP-F-2025/suggestibility-service/internal/catalog"
	"github.com/SAP-F-2025/suggestibility-service/internal/events"
	"github.com/SAP-F-2025/suggestibility-service/internal/metrics"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories"
	"github.com/SAP-F-2025/suggestibility-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/suggestibility-service/internal/validator"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	subjectActor   = models.Actor{ID: "subject-1", Role: models.RoleSubject}
	otherSubject   = models.Actor{ID: "subject-2", Role: models.RoleSubject}
	clinicianActor = models.Actor{ID: "clinician-1", Role: models.RoleClinician}
	adminActor     = models.Actor{ID: "admin-1", Role: models.RoleAdmin}
)

// memoryCache is an in-process CacheService for service tests
type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = data
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	data, ok := m.items[key]
	m.mu.Unlock()
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.items, key)
		}
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	repo      repositories.Repository
	catalogs  catalog.Provider
	cache     *memoryCache
	publisher *events.MockEventPublisher
	registry  *prometheus.Registry
	manager   ServiceManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.AutoMigrate(db))

	log := slogDiscard()
	repo := postgres.NewRepository(db)

	env := &testEnv{
		repo:      repo,
		catalogs:  catalog.NewStore(repo.Questionnaire(), nil, log, time.Minute),
		cache:     newMemoryCache(),
		publisher: events.NewMockEventPublisher(log),
		registry:  prometheus.NewRegistry(),
	}

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	_, err = NewQuestionnaireService(repo, env.catalogs, log).SeedAndActivate(context.Background(), seed)
	require.NoError(t, err)

	env.manager = NewServiceManager(Dependencies{
		Repo:      repo,
		Catalogs:  env.catalogs,
		Cache:     env.cache,
		Publisher: env.publisher,
		Metrics:   metrics.New(env.registry),
		Validator: validator.New(),
		Logger:    log,
		StyleTTL:  time.Hour,
	})
	return env
}

func (e *testEnv) count(t *testing.T, name string) int {
	t.Helper()
	n, err := testutil.GatherAndCount(e.registry, name)
	require.NoError(t, err)
	return n
}

func rawAnswers(values []bool) json.RawMessage {
	m := make(map[string]bool, len(values))
	for i, v := range values {
		m[strconv.Itoa(i+1)] = v
	}
	data, _ := json.Marshal(m)
	return data
}

// balancedAnswers answers yes,yes,no,no,... which carries no review pattern
func balancedAnswers() []bool {
	values := make([]bool, 36)
	for i := range values {
		values[i] = i%4 < 2
	}
	return values
}

func uniformAnswers(v bool) []bool {
	values := make([]bool, 36)
	for i := range values {
		values[i] = v
	}
	return values
}

func elapsed(v int) *int {
	return &v
}

func (e *testEnv) submit(t *testing.T, actor models.Actor, values []bool, seconds int) *AssessmentResponse {
	t.Helper()
	resp, err := e.manager.Suggestibility().Submit(context.Background(), actor, &SubmitAssessmentRequest{
		Answers:        rawAnswers(values),
		ElapsedSeconds: elapsed(seconds),
	})
	require.NoError(t, err)
	return resp
}

func TestSubmit_CleanAssessmentStaysSubmitted(t *testing.T) {
	env := newTestEnv(t)

	resp := env.submit(t, subjectActor, balancedAnswers(), 240)

	assert.Equal(t, "subject-1", resp.SubjectID)
	assert.Equal(t, "hmi-v1", resp.QuestionnaireVersionID)
	assert.Equal(t, models.ReviewSubmitted, resp.ReviewState)
	assert.Equal(t, models.PatternBalanced, resp.PatternSignature)
	assert.Equal(t, 100.0, resp.ConfidenceScore)
	assert.False(t, resp.NeedsReview)
	assert.Empty(t, resp.ReviewReasons)
	assert.Equal(t, 100, resp.PhysicalPercentage+resp.EmotionalPercentage)
	assert.Len(t, resp.Answers, 36)
	require.NotNil(t, resp.AnswerBreakdown)

	assert.Equal(t, []events.EventType{events.EventAssessmentSubmitted}, env.publisher.EventTypes())

	trail, err := env.manager.Review().ReviewHistory(context.Background(), clinicianActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, models.ReviewActionSubmitted, trail[0].Action)
	assert.Nil(t, trail[0].FromState)

	assert.Equal(t, 1, env.count(t, "suggestibility_assessments_submitted_total"))
	assert.Equal(t, 0, env.count(t, "suggestibility_assessments_flagged_total"))
}

func TestSubmit_AllYesIsAutoFlagged(t *testing.T) {
	env := newTestEnv(t)

	resp := env.submit(t, subjectActor, uniformAnswers(true), 300)

	assert.Equal(t, models.TypeBalanced, resp.SuggestibilityType)
	assert.Equal(t, models.PatternAllYes, resp.PatternSignature)
	assert.Equal(t, models.ReviewFlagged, resp.ReviewState)
	assert.True(t, resp.NeedsReview)
	assert.Equal(t, []string{"Low confidence score (20.0)", "Extreme answer pattern: all_yes"}, resp.ReviewReasons)
	require.NotNil(t, resp.FlaggedBy)
	assert.Equal(t, models.SystemActorID, *resp.FlaggedBy)

	stored, err := env.repo.Assessment().GetByID(context.Background(), nil, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewFlagged, stored.ReviewState)

	trail, err := env.manager.Review().ReviewHistory(context.Background(), clinicianActor, resp.ID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.ReviewActionSubmitted, trail[0].Action)
	assert.Equal(t, models.ReviewActionFlagged, trail[1].Action)
	assert.Equal(t, models.SystemActorID, trail[1].ActorID)

	assert.Equal(t, []events.EventType{events.EventAssessmentSubmitted, events.EventAssessmentFlagged}, env.publisher.EventTypes())
	assert.Equal(t, 1, env.count(t, "suggestibility_assessments_flagged_total"))
}

func TestSubmit_IncompleteAnswersRejectedBeforeScoring(t *testing.T) {
	env := newTestEnv(t)
	values := balancedAnswers()[:35]

	_, err := env.manager.Suggestibility().Submit(context.Background(), subjectActor, &SubmitAssessmentRequest{
		Answers: rawAnswers(values),
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	latest, err := env.manager.Suggestibility().GetLatest(context.Background(), subjectActor, subjectActor.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestSubmit_MalformedAnswers(t *testing.T) {
	env := newTestEnv(t)

	for name, raw := range map[string]string{
		"not an object": `[true, false]`,
		"non boolean":   `{"1": "yes"}`,
		"bad key":       `{"abc": true}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := env.manager.Suggestibility().Submit(context.Background(), subjectActor, &SubmitAssessmentRequest{
				Answers: json.RawMessage(raw),
			})
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}
}

func TestSubmit_ElapsedOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.manager.Suggestibility().Submit(context.Background(), subjectActor, &SubmitAssessmentRequest{
		Answers:        rawAnswers(balancedAnswers()),
		ElapsedSeconds: elapsed(7201),
	})
	assert.True(t, IsValidation(err))
}

func TestSubmit_ForAnotherSubject(t *testing.T) {
	env := newTestEnv(t)
	req := &SubmitAssessmentRequest{SubjectID: "subject-2", Answers: rawAnswers(balancedAnswers())}

	_, err := env.manager.Suggestibility().Submit(context.Background(), subjectActor, req)
	assert.True(t, IsUnauthorized(err))

	resp, err := env.manager.Suggestibility().Submit(context.Background(), clinicianActor, req)
	require.NoError(t, err)
	assert.Equal(t, "subject-2", resp.SubjectID)
}

func TestGetAssessment_Access(t *testing.T) {
	env := newTestEnv(t)
	resp := env.submit(t, subjectActor, balancedAnswers(), 240)
	ctx := context.Background()

	got, err := env.manager.Suggestibility().GetAssessment(ctx, subjectActor, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.ID, got.ID)
	assert.Equal(t, resp.Interpretation, got.Interpretation)

	_, err = env.manager.Suggestibility().GetAssessment(ctx, otherSubject, resp.ID)
	assert.True(t, IsUnauthorized(err))

	_, err = env.manager.Suggestibility().GetAssessment(ctx, clinicianActor, resp.ID)
	assert.NoError(t, err)

	_, err = env.manager.Suggestibility().GetAssessment(ctx, clinicianActor, "missing")
	assert.True(t, IsNotFound(err))
}

func TestGetHistory_NewestFirstWithTrend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.submit(t, subjectActor, uniformAnswers(false), 300)
	latest := env.submit(t, subjectActor, balancedAnswers(), 240)

	history, err := env.manager.Suggestibility().GetHistory(ctx, subjectActor, subjectActor.ID, 0)
	require.NoError(t, err)
	require.Len(t, history.Assessments, 2)
	assert.Equal(t, latest.ID, history.Assessments[0].ID)
	assert.Equal(t, first.ID, history.Assessments[1].ID)
	require.NotNil(t, history.Trend)
	assert.Equal(t, 2, history.Trend.AssessmentCount)
	assert.Equal(t, latest.PhysicalPercentage-first.PhysicalPercentage, history.Trend.PhysicalChange)

	single, err := env.manager.Suggestibility().GetHistory(ctx, otherSubject, otherSubject.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, single.Assessments)
	assert.Nil(t, single.Trend)

	_, err = env.manager.Suggestibility().GetHistory(ctx, otherSubject, subjectActor.ID, 5)
	assert.True(t, IsUnauthorized(err))
}

func TestComputeTrend(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(physical int, offset time.Duration) *models.SuggestibilityAssessment {
		return &models.SuggestibilityAssessment{
			PhysicalPercentage:  physical,
			EmotionalPercentage: 100 - physical,
			CompletedAt:         at.Add(offset),
		}
	}

	tests := []struct {
		name      string
		history   []*models.SuggestibilityAssessment
		direction TrendDirection
	}{
		{"more physical", []*models.SuggestibilityAssessment{mk(70, 2*time.Hour), mk(50, 0)}, TrendMorePhysical},
		{"more emotional", []*models.SuggestibilityAssessment{mk(40, 2*time.Hour), mk(50, 0)}, TrendMoreEmotional},
		{"stable below five", []*models.SuggestibilityAssessment{mk(54, 2*time.Hour), mk(50, 0)}, TrendStable},
		{"five is a change", []*models.SuggestibilityAssessment{mk(55, 2*time.Hour), mk(50, 0)}, TrendMorePhysical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend := ComputeTrend(tt.history)
			require.NotNil(t, trend)
			assert.Equal(t, tt.direction, trend.Direction)
			assert.Equal(t, -trend.PhysicalChange, trend.EmotionalChange)
			assert.Equal(t, at, trend.FirstAssessmentAt)
		})
	}

	trend := ComputeTrend([]*models.SuggestibilityAssessment{mk(60, time.Hour), mk(45, 0)})
	assert.Equal(t, 52.5, trend.AveragePhysical)
	assert.Equal(t, 47.5, trend.AverageEmotional)

	assert.Nil(t, ComputeTrend([]*models.SuggestibilityAssessment{mk(50, 0)}))
	assert.Nil(t, ComputeTrend(nil))
}

func TestCommunicationStyle_DefaultAndCached(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	style, err := env.manager.Suggestibility().GetCommunicationStyle(ctx, subjectActor, subjectActor.ID)
	require.NoError(t, err)
	assert.Equal(t, StyleBalanced, style.Style)
	assert.Equal(t, 0.0, style.Confidence)
	assert.True(t, env.cache.has("style:subject-1"))

	resp := env.submit(t, subjectActor, uniformAnswers(true), 300)
	assert.False(t, env.cache.has("style:subject-1"))

	style, err = env.manager.Suggestibility().GetCommunicationStyle(ctx, clinicianActor, subjectActor.ID)
	require.NoError(t, err)
	assert.Equal(t, StyleSomnambulistic, style.Style)
	assert.True(t, style.UseMetaphors)
	assert.True(t, style.UseLiteral)
	assert.Equal(t, resp.ID, style.AssessmentID)
	require.NotNil(t, style.Warning)
	assert.Equal(t, lowConfidenceWarning, *style.Warning)

	cached, err := env.manager.Suggestibility().GetCommunicationStyle(ctx, subjectActor, subjectActor.ID)
	require.NoError(t, err)
	assert.Equal(t, style.AssessmentID, cached.AssessmentID)

	_, err = env.manager.Suggestibility().GetCommunicationStyle(ctx, otherSubject, subjectActor.ID)
	assert.True(t, IsUnauthorized(err))
}

func TestDeriveCommunicationStyle(t *testing.T) {
	tests := []struct {
		suggType  models.SuggestibilityType
		style     CommunicationStyleName
		metaphors bool
		literal   bool
	}{
		{models.TypePurePhysical, StylePhysical, false, true},
		{models.TypePrimarilyPhysical, StylePhysical, false, true},
		{models.TypeBalanced, StyleSomnambulistic, true, true},
		{models.TypePrimarilyEmotional, StyleEmotional, true, false},
		{models.TypePureEmotional, StyleEmotional, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.suggType), func(t *testing.T) {
			style := DeriveCommunicationStyle(&models.SuggestibilityAssessment{
				ID:                 "a-1",
				SuggestibilityType: tt.suggType,
				ConfidenceScore:    85,
			})
			assert.Equal(t, tt.style, style.Style)
			assert.Equal(t, tt.metaphors, style.UseMetaphors)
			assert.Equal(t, tt.literal, style.UseLiteral)
			assert.Equal(t, 85.0, style.Confidence)
			assert.Nil(t, style.Warning)
		})
	}
}
