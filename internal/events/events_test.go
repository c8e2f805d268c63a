package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []Event
	bus.Subscribe(TopicBookingRelocated, func(e Event) error {
		got = append(got, e)
		return nil
	})

	bus.Publish(New(TopicBookingRelocated, RelocationEvent{BookingID: "bk1", TargetRoomID: "r102"}))
	bus.Publish(New(TopicIntegrityWarning, IntegrityEvent{RoomID: "r1"}))

	assert.Len(t, got, 1, "only the subscribed topic is delivered")

	var payload RelocationEvent
	assert.NoError(t, json.Unmarshal(got[0].Payload, &payload))
	assert.Equal(t, "bk1", payload.BookingID)
	assert.Equal(t, "r102", payload.TargetRoomID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestMultipleSubscribersAllRun(t *testing.T) {
	bus := NewEventBus()

	var calls int
	bus.Subscribe(TopicPriceOverrideSet, func(Event) error { calls++; return nil })
	bus.Subscribe(TopicPriceOverrideSet, func(Event) error { calls++; return errors.New("handler failure is swallowed") })
	bus.Subscribe(TopicPriceOverrideSet, func(Event) error { calls++; return nil })

	bus.Publish(New(TopicPriceOverrideSet, map[string]string{"room_id": "r1"}))
	assert.Equal(t, 3, calls)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewEventBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: "nobody_listens"})
	})
}

func TestPublishStampsCreatedAt(t *testing.T) {
	bus := NewEventBus()

	var got Event
	bus.Subscribe("t", func(e Event) error { got = e; return nil })
	bus.Publish(Event{Type: "t"})

	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Second)
}
