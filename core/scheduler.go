package core

import (
	"context"
	"time"
)

// Scheduler fires ready jobs at a later time, once or repeatedly. The core
// hands a job over together with the timing parameters and is done with it;
// pending/fired/expired state lives entirely inside the scheduler.
//
// repeat is forwarded verbatim: its exact convention (one-shot vs. bounded
// repetition) is owned and documented by the implementation.
type Scheduler interface {
	Start()
	Shutdown() error

	// EnqueueIn schedules job to fire after delta, optionally repeating
	// every interval, bounded by repeat.
	EnqueueIn(ctx context.Context, job *Job, delta time.Duration, interval time.Duration, repeat int) error

	// EnqueueAt is EnqueueIn with an absolute fire time.
	EnqueueAt(ctx context.Context, job *Job, at time.Time, interval time.Duration, repeat int) error
}
