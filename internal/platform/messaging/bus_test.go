package messaging

import (
	"context"
	"errors"
	"testing"

	"kvorum/internal/shared/events"
)

func TestPublishDeliversToEverySubscriber(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()

	var first, second []string
	if err := bus.Subscribe(ctx, "topic-a", func(_ context.Context, e events.Envelope) error {
		first = append(first, e.EventID)
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := bus.Subscribe(ctx, "topic-a", func(_ context.Context, e events.Envelope) error {
		second = append(second, e.EventID)
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := bus.Publish(ctx, "topic-a", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected both subscribers to see the event, got %d and %d", len(first), len(second))
	}

	// A topic nobody listens on is a no-op.
	if err := bus.Publish(ctx, "topic-b", events.Envelope{EventID: "evt-2"}); err != nil {
		t.Fatalf("publish to empty topic failed: %v", err)
	}
}

func TestPublishSurfacesHandlerErrorForRedelivery(t *testing.T) {
	bus := NewBus(nil)
	ctx := context.Background()

	boom := errors.New("document store offline")
	failures := 1
	var delivered []string
	if err := bus.Subscribe(ctx, "topic-a", func(_ context.Context, e events.Envelope) error {
		if failures > 0 {
			failures--
			return boom
		}
		delivered = append(delivered, e.EventID)
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// The relay keys "mark published" off this error; it must not be
	// swallowed.
	if err := bus.Publish(ctx, "topic-a", events.Envelope{EventID: "evt-1"}); !errors.Is(err, boom) {
		t.Fatalf("expected handler error from publish, got %v", err)
	}
	if len(delivered) != 0 {
		t.Fatalf("failed delivery still recorded the event")
	}

	// The next cycle republishes the same envelope and succeeds.
	if err := bus.Publish(ctx, "topic-a", events.Envelope{EventID: "evt-1"}); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if len(delivered) != 1 || delivered[0] != "evt-1" {
		t.Fatalf("redelivery not handled: %v", delivered)
	}
}

func TestPublishStopsOnCancelledContext(t *testing.T) {
	bus := NewBus(nil)

	calls := 0
	if err := bus.Subscribe(context.Background(), "topic-a", func(context.Context, events.Envelope) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := bus.Publish(cancelled, "topic-a", events.Envelope{EventID: "evt-1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("handler ran despite cancelled context")
	}
}
