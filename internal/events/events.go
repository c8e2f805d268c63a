package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Event topics published by the engine.
const (
	TopicBookingRelocated   = "booking_relocated"
	TopicRelocationConflict = "relocation_conflict"
	TopicIntegrityWarning   = "integrity_warning"
	TopicPriceOverrideSet   = "price_override_set"
)

// Event is a lightweight domain event with a JSON payload.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// New marshals payload into an event. Marshal failures produce an event
// with an empty payload; topics carry simple value types so this is a
// non-issue in practice.
func New(topic string, payload any) Event {
	data, _ := json.Marshal(payload)
	return Event{Type: topic, Payload: data, CreatedAt: time.Now()}
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type.
func (b *EventBus) Publish(event Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		_ = handler(event)
	}
}

// RelocationEvent is the payload for booking_relocated and
// relocation_conflict topics.
type RelocationEvent struct {
	BookingID    string    `json:"booking_id"`
	SourceRoomID string    `json:"source_room_id"`
	TargetRoomID string    `json:"target_room_id"`
	TargetDate   time.Time `json:"target_date"`
	Reason       string    `json:"reason,omitempty"`
}

// IntegrityEvent is the payload for the integrity_warning topic.
type IntegrityEvent struct {
	RoomID        string    `json:"room_id"`
	Date          time.Time `json:"date"`
	KeptBookingID string    `json:"kept_booking_id"`
	LostBookingID string    `json:"lost_booking_id"`
}
