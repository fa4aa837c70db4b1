package events

import (
	"context"
	"sync"
	"time"
)

// Envelope is the delivery unit for in-process subscribers.
type Envelope struct {
	Type      string
	Timestamp time.Time
	Data      interface{}
}

type HandlerFunc func(Envelope)

// Bus is the in-process Publisher: mutate, then notify subscribers in the
// same process after votes, comments and reactions.
type Bus struct {
	mu          sync.RWMutex
	lastID      int
	subscribers map[string]map[int]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		subscribers: make(map[string]map[int]HandlerFunc),
	}
}

// Subscribe registers a handler for one event type and returns an
// unsubscribe function. Handlers run synchronously on the publishing
// goroutine, matching the single-threaded event-driven model.
func (b *Bus) Subscribe(eventType string, handler HandlerFunc) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	id := b.lastID
	if b.subscribers[eventType] == nil {
		b.subscribers[eventType] = make(map[int]HandlerFunc)
	}
	b.subscribers[eventType][id] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers[eventType], id)
	}
}

func (b *Bus) publish(eventType string, data interface{}) {
	b.mu.RLock()
	handlers := make([]HandlerFunc, 0, len(b.subscribers[eventType]))
	for _, h := range b.subscribers[eventType] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	env := Envelope{Type: eventType, Timestamp: time.Now(), Data: data}
	for _, h := range handlers {
		h(env)
	}
}

func (b *Bus) PublishVoteCast(_ context.Context, event VoteCastEvent) error {
	b.publish(TypeVoteCast, event)
	return nil
}

func (b *Bus) PublishCommentPosted(_ context.Context, event CommentPostedEvent) error {
	b.publish(TypeCommentPosted, event)
	return nil
}

func (b *Bus) PublishCommentReacted(_ context.Context, event CommentReactedEvent) error {
	b.publish(TypeCommentReacted, event)
	return nil
}

func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[string]map[int]HandlerFunc)
	return nil
}
