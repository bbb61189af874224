package events

import (
	"testing"
	"time"

	"cronify/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_LocalDelivery(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(USER_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))

	userID := uuid.New()
	require.NoError(t, bus.PublishToUser(userID, LOG_UPDATED, map[string]any{"date": "2024-03-15"}))

	select {
	case event := <-received:
		assert.Equal(t, LOG_UPDATED, event.Type)
		assert.Equal(t, USER_CHANNEL, event.Channel)
		require.NotNil(t, event.UserID)
		assert.Equal(t, userID, *event.UserID)
		assert.NotEmpty(t, event.ID)
		assert.False(t, event.Timestamp.IsZero())
		assert.Equal(t, "2024-03-15", event.Data["date"])
	case <-time.After(time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestEventBus_OtherChannelNotNotified(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(BROADCAST_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))

	require.NoError(t, bus.Publish(USER_CHANNEL, Event{Type: MESSAGE}))

	select {
	case <-received:
		t.Fatal("handler on another channel was notified")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventBus_KeepsProvidedFields(t *testing.T) {
	bus := New(nil, config.Config{})
	defer bus.Close()

	received := make(chan Event, 1)
	require.NoError(t, bus.Subscribe(BROADCAST_CHANNEL, func(event Event) error {
		received <- event
		return nil
	}))

	at := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(BROADCAST_CHANNEL, Event{ID: "fixed", Type: PING, Timestamp: at}))

	event := <-received
	assert.Equal(t, "fixed", event.ID)
	assert.Equal(t, at, event.Timestamp)
}
