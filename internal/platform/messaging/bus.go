package messaging

import (
	"context"
	"log/slog"
	"sync"

	"kvorum/internal/shared/events"
)

// Bus is the event transport between the voting engine's outbox relay and
// the signing service's consumers. Delivery is synchronous and in-process:
// Publish runs every subscribed handler inline and returns the first handler
// error, so the relay leaves the outbox row pending and redelivers the event
// on its next cycle. Consumers must tolerate redelivery.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]func(context.Context, events.Envelope) error
	logger   *slog.Logger
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]func(context.Context, events.Envelope) error),
		logger:   logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	handlers := append([]func(context.Context, events.Envelope) error(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	for _, handle := range handlers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := handle(ctx, event); err != nil {
			if b.logger != nil {
				b.logger.Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
			return err
		}
	}

	if b.logger != nil {
		b.logger.Info("event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

// Subscribe registers a handler for a topic. The subscription lives for the
// lifetime of the bus.
func (b *Bus) Subscribe(_ context.Context, topic string, handler func(context.Context, events.Envelope) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	return nil
}
