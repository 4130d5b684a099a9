package event_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/taskore/taskore/core"
	"github.com/taskore/taskore/modules/event"
)

type enqueuedHandler struct {
	received chan core.JobEnqueued
}

func (h *enqueuedHandler) Handle(ctx context.Context, e core.JobEnqueued) error {
	h.received <- e
	return nil
}

func TestInMemoryEventBus(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	bus, err := event.NewInMemory(logger)
	if err != nil {
		t.Fatalf("Failed to create event bus: %v", err)
	}

	handler := &enqueuedHandler{received: make(chan core.JobEnqueued, 16)}
	if err := core.SubscribeEvent[core.JobEnqueued](bus, handler); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := bus.Run(ctx); err != nil && ctx.Err() == nil {
			t.Errorf("event bus stopped: %v", err)
		}
	}()

	published := core.JobEnqueued{
		ID:       uuid.NewString(),
		JobID:    "t1",
		TaskName: "reports",
		Priority: core.PriorityHigh,
		At:       time.Now().UTC(),
	}

	// The router subscribes handlers asynchronously on Run; republish until
	// it is ready or the deadline passes.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		if err := bus.Publish(ctx, published); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		select {
		case got := <-handler.received:
			if got.JobID != "t1" || got.TaskName != "reports" || got.Priority != core.PriorityHigh {
				t.Errorf("unexpected event %+v", got)
			}
			return
		case <-deadline:
			t.Fatal("event never delivered")
		case <-ticker.C:
		}
	}
}
