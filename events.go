package authkit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Channel and event type names shared with the email worker.
const (
	ChannelEmail = "EMAIL"

	EventConfirmEmail  = "CONFIRM_EMAIL"
	EventResetPassword = "RESET_PASSWORD"
)

// Event is the message published toward out-of-process collaborators. The
// engine only ever enqueues; nothing in this module consumes events or
// talks to an email transport directly.
type Event struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

// EventBus decouples the engine from email delivery. Publish is
// fire-and-forget from the engine's point of view: a failed publish is
// logged, never turned into a request failure.
type EventBus interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// NoOpBus discards every event.
type NoOpBus struct{}

// Publish implements EventBus.
func (NoOpBus) Publish(context.Context, string, Event) error { return nil }

// PublishedEvent pairs an event with the channel it was published on.
type PublishedEvent struct {
	Channel string
	Event   Event
}

// ChannelBus delivers events to an in-process Go channel. Intended for
// tests and for embedding a worker in the same process.
type ChannelBus struct {
	events chan PublishedEvent
}

// NewChannelBus builds a ChannelBus with the given buffer.
func NewChannelBus(buffer int) *ChannelBus {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelBus{events: make(chan PublishedEvent, buffer)}
}

// Publish implements EventBus. It blocks when the buffer is full until the
// consumer catches up or ctx is done.
func (b *ChannelBus) Publish(ctx context.Context, channel string, event Event) error {
	select {
	case b.events <- PublishedEvent{Channel: channel, Event: event}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the consumer side.
func (b *ChannelBus) Events() <-chan PublishedEvent {
	return b.events
}

// RedisBus publishes events as JSON on Redis pub/sub channels, matching the
// wire shape the email worker subscribes to.
type RedisBus struct {
	redis redis.UniversalClient
}

// NewRedisBus builds a RedisBus over the given client.
func NewRedisBus(client redis.UniversalClient) *RedisBus {
	return &RedisBus{redis: client}
}

// Publish implements EventBus.
func (b *RedisBus) Publish(ctx context.Context, channel string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := b.redis.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}
