package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskore/taskore/core"
)

// WithEvents wraps a queue so every accepted job is announced on the event
// bus as job.enqueued. Publish failures do not fail the enqueue; the job is
// already on the queue by then.
func WithEvents(q core.Queue, bus core.EventBus, logger *slog.Logger) core.Queue {
	return &eventingQueue{next: q, bus: bus, logger: logger}
}

type eventingQueue struct {
	next   core.Queue
	bus    core.EventBus
	logger *slog.Logger
}

func (q *eventingQueue) Enqueue(ctx context.Context, job *core.Job) error {
	if err := q.next.Enqueue(ctx, job); err != nil {
		return err
	}
	event := core.JobEnqueued{
		ID:       uuid.NewString(),
		JobID:    job.ID,
		TaskName: job.Name,
		Priority: job.Priority,
		At:       time.Now(),
	}
	if err := q.bus.Publish(ctx, event); err != nil {
		q.logger.Warn("failed to publish job.enqueued", "job_id", job.ID, "error", err)
	}
	return nil
}
