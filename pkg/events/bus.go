// Package events provides a small in-process event bus used to decouple
// best-effort side effects (notifications) from state transitions.
package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"leadrouter.backend/pkg/logger"
)

// Event is the base interface all domain events must implement.
type Event interface {
	// EventName returns a unique identifier for the event type.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent creates a new base event with the current timestamp.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc is an adapter to allow ordinary functions to be used as handlers.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is the interface for publishing and subscribing to domain events.
type Bus interface {
	// Publish dispatches the event to every handler asynchronously. Handler
	// failures are logged and never reach the publisher.
	Publish(ctx context.Context, event Event)
	// PublishSync runs all handlers and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
	// Subscribe registers a handler for the given event name.
	Subscribe(eventName string, handler Handler)
}

// InMemoryBus is a Bus backed by goroutines.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	wg       sync.WaitGroup
	timeout  time.Duration
}

// NewInMemoryBus creates a bus whose async handlers get at most timeout to run.
func NewInMemoryBus(timeout time.Duration) *InMemoryBus {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		timeout:  timeout,
	}
}

func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	hs := make([]Handler, len(b.handlers[eventName]))
	copy(hs, b.handlers[eventName])
	return hs
}

func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	// handlers outlive the request, so they get a fresh context that keeps the request values
	base := context.WithoutCancel(ctx)
	for _, h := range b.handlersFor(event.EventName()) {
		b.wg.Add(1)
		go func(h Handler) {
			defer b.wg.Done()
			hctx, cancel := context.WithTimeout(base, b.timeout)
			defer cancel()
			if err := b.invoke(hctx, h, event); err != nil {
				logger.Error(hctx, "event handler failed",
					zap.String("event", event.EventName()),
					zap.Error(err),
				)
			}
		}(h)
	}
}

func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, h := range b.handlersFor(event.EventName()) {
		if err := b.invoke(ctx, h, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait blocks until all in-flight async handlers have returned.
func (b *InMemoryBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryBus) invoke(ctx context.Context, h Handler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.Handle(ctx, event)
}
