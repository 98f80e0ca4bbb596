package events

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"odosync/pkg/logging"
)

// DefaultSubscriberBuffer is the channel size used when Subscribe is given a
// non-positive buffer.
const DefaultSubscriberBuffer = 64

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	closed      bool

	templates *MessageTemplateEngine
}

// NewBus creates an event bus with the default message templates.
func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[uint64]chan Event),
		templates:   NewMessageTemplateEngine(),
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subscribers[id]; ok {
				delete(b.subscribers, id)
				close(sub)
			}
		})
	}
}

// Publish delivers event to every subscriber. ID and Timestamp are filled in
// when empty.
func (b *Bus) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Type == "" {
		event.Type = getEventType(event.Reason)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			logging.Warn("Events", "Subscriber channel full, dropping %s event", event.Reason)
		}
	}
}

// Emit renders the message for reason from data and publishes it.
func (b *Bus) Emit(reason EventReason, data EventData) {
	b.Publish(Event{
		Reason:  reason,
		Type:    getEventType(reason),
		Message: b.templates.Render(reason, data),
	})
}

// ModelChanged implements Notifier.
func (b *Bus) ModelChanged() {
	b.Emit(ReasonModelChanged, EventData{})
}

// MigrationCompleted implements Notifier.
func (b *Bus) MigrationCompleted(name string) {
	b.Emit(ReasonMigrationCompleted, EventData{Name: name})
}

// MigrationFailed implements Notifier.
func (b *Bus) MigrationFailed(name, path string, err error) {
	data := EventData{Name: name, Path: path}
	if err != nil {
		data.Error = err.Error()
	}
	b.Emit(ReasonMigrationFailed, data)
}

// Error implements Notifier.
func (b *Bus) Error(message string, severity EventType) {
	if severity == "" {
		severity = EventTypeWarning
	}
	b.Publish(Event{
		Reason:  ReasonError,
		Type:    severity,
		Message: b.templates.Render(ReasonError, EventData{Error: message}),
	})
}

// Close closes all subscriber channels. Publishing after Close is a no-op.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
