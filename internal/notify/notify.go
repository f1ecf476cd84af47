// Package notify publishes storefront events for downstream mailers and
// back-office tools.
package notify

import (
	"context"
	"sync"
	"time"
)

// Event types.
const (
	TypeOrderPlaced     = "order.placed"
	TypePasswordReset   = "password.reset"
	TypeContactReceived = "contact.received"
	TypeQuestionAsked   = "question.asked"
)

type Event struct {
	ID        string    `json:"eventId"`
	Type      string    `json:"eventType"`
	Key       string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
