package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organizainador/organizer-service/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChannelEventPublisher_DeliversToSubscribers(t *testing.T) {
	publisher, pubSub := NewChannelEventPublisher("organizer", testLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "organizer.schedule.slot.created")
	require.NoError(t, err)

	event, err := NewEvent(SlotCreated, "user-1", SlotPayload{SlotID: 3, OwnerType: "class", StartTime: "09:00", EndTime: "10:30"})
	require.NoError(t, err)
	require.NoError(t, publisher.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "user-1", msg.Metadata.Get("user_id"))

		var got Event
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, SlotCreated, got.Type)

		var payload SlotPayload
		require.NoError(t, json.Unmarshal(got.Payload, &payload))
		assert.Equal(t, uint(3), payload.SlotID)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventPublisher_Topic(t *testing.T) {
	publisher, _ := NewChannelEventPublisher("", testLogger())
	assert.Equal(t, "class.deleted", publisher.Topic(ClassDeleted))

	publisher, _ = NewChannelEventPublisher("organizer", testLogger())
	assert.Equal(t, "organizer.activity.deleted", publisher.Topic(ActivityDeleted))
}

func TestNewEventPublisher_FallsBackToChannel(t *testing.T) {
	publisher, err := NewEventPublisher(config.EventsConfig{TopicPrefix: "organizer"}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	assert.IsType(t, &WatermillEventPublisher{}, publisher)

	event, err := NewEvent(SlotDeleted, "user-1", nil)
	require.NoError(t, err)
	assert.NoError(t, publisher.Publish(context.Background(), event))
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(testLogger())

	event, err := NewEvent(ClassDeleted, "user-1", OwnerDeletedPayload{OwnerID: 1, RemovedSlots: 2})
	require.NoError(t, err)
	require.NoError(t, mock.Publish(context.Background(), event))
	require.Len(t, mock.GetPublishedEvents(), 1)

	mock.FailWith(errors.New("broker down"))
	assert.Error(t, mock.Publish(context.Background(), event))
	assert.Len(t, mock.GetPublishedEvents(), 1)

	mock.Reset()
	assert.Empty(t, mock.GetPublishedEvents())
}
