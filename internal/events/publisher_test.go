package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func sampleAssessment() *models.SuggestibilityAssessment {
	return &models.SuggestibilityAssessment{
		ID:                     "a-1",
		SubjectID:              "subject-1",
		QuestionnaireVersionID: "hmi-v1",
		SuggestibilityType:     models.TypeBalanced,
		PhysicalPercentage:     41,
		PatternSignature:       models.PatternAllYes,
		ConfidenceScore:        20,
		NeedsReview:            true,
		CompletedAt:            time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestKafkaEventPublisher_PublishesEnvelope(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "suggestibility")
	require.NoError(t, err)

	publisher := NewEventPublisher(pubSub, "suggestibility", testLogger())
	event := NewAssessmentSubmittedEvent(sampleAssessment())
	require.NoError(t, publisher.PublishAssessmentEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(EventAssessmentSubmitted), msg.Metadata.Get("event_type"))
		assert.Equal(t, "subject-1", msg.Metadata.Get("subject_id"))

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		data := decoded["data"].(map[string]interface{})
		assert.Equal(t, "a-1", data["assessment_id"])
		assert.Equal(t, true, data["needs_review"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestPartitionKey_UsesSubject(t *testing.T) {
	msg := message.NewMessage("m-1", nil)
	msg.Metadata.Set(MetadataSubjectID, "subject-9")

	key, err := partitionKey("suggestibility", msg)
	require.NoError(t, err)
	assert.Equal(t, "subject-9", key)
}

func TestNewAssessmentFlaggedEvent_Automatic(t *testing.T) {
	at := time.Now()
	event := NewAssessmentFlaggedEvent(sampleAssessment(), models.ReviewActionFlagged, models.SystemActorID, []string{"Extreme answer pattern: all_yes"}, at)

	assert.Equal(t, EventAssessmentFlagged, event.Type)
	assert.NotEmpty(t, event.ID)
	payload := event.Data.(AssessmentFlaggedEvent)
	assert.True(t, payload.Automatic)
	assert.Equal(t, "subject-1", payload.SubjectID)
}

func TestMockEventPublisher(t *testing.T) {
	m := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	require.NoError(t, m.PublishAssessmentEvent(ctx, NewAssessmentSubmittedEvent(sampleAssessment())))
	require.NoError(t, m.PublishAssessmentEvent(ctx, NewAssessmentReviewedEvent(sampleAssessment(), models.ReviewApproved, "clinician-1", false, time.Now())))

	assert.Equal(t, []EventType{EventAssessmentSubmitted, EventAssessmentReviewed}, m.EventTypes())

	m.ClearEvents()
	assert.Empty(t, m.GetPublishedEvents())
}
