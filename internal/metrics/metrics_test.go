package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AssessmentSubmitted(models.TypeBalanced, models.PatternAllYes, 20)
	m.AssessmentSubmitted(models.TypeBalanced, models.PatternBalanced, 100)
	m.AssessmentFlagged(TriggerAutomatic)
	m.ReviewDecided(models.ReviewApproved)
	m.ReviewConflict()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submitted.WithLabelValues(string(models.TypeBalanced))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.patterns.WithLabelValues(string(models.PatternAllYes))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.flagged.WithLabelValues(TriggerAutomatic)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues(string(models.ReviewApproved))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1, testutil.CollectAndCount(m.confidence))
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ReviewConflict()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "suggestibility_review_conflicts_total 1"))
}

func TestNoop(t *testing.T) {
	r := NewNoop()
	r.AssessmentSubmitted(models.TypePureEmotional, models.PatternAllNo, 0)
	r.AssessmentFlagged(TriggerManual)
	r.ReviewDecided(models.ReviewRejected)
	r.ReviewConflict()
}
