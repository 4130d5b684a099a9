package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/taskore/taskore/core"
	"github.com/taskore/taskore/errors"
)

// FireFunc delivers a due job to its destination. The usual sink is the
// priority queue map, via QueueFire.
type FireFunc func(ctx context.Context, job *core.Job) error

// QueueFire returns a sink that submits a due job to the queue registered
// for its priority.
func QueueFire(queues core.QueueMap) FireFunc {
	return func(ctx context.Context, job *core.Job) error {
		queue, ok := queues[job.Priority]
		if !ok {
			return errors.ConfigError(errors.ErrUnknownPriority).
				WithMetadata("priority", string(job.Priority)).
				WithMetadata("job_id", job.ID)
		}
		return queue.Enqueue(ctx, job)
	}
}

// GocronScheduler implements core.Scheduler on top of gocron.
//
// Convention for the forwarded repeat parameter: repeat == 0 fires the job
// exactly once at the requested time; repeat > 0 together with an interval
// runs the job repeat times total, spaced by interval, starting at the
// requested time; repeat < 0 repeats without bound. A non-zero repeat
// without an interval degrades to a single firing.
type GocronScheduler struct {
	scheduler gocron.Scheduler
	fire      FireFunc
	logger    *slog.Logger
	jobs      map[string]uuid.UUID
	mu        sync.Mutex
}

func NewGocron(fire FireFunc, logger *slog.Logger) (*GocronScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &GocronScheduler{
		scheduler: s,
		fire:      fire,
		logger:    logger,
		jobs:      make(map[string]uuid.UUID),
	}, nil
}

func (s *GocronScheduler) Start() {
	s.scheduler.Start()
}

func (s *GocronScheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}

func (s *GocronScheduler) EnqueueIn(ctx context.Context, job *core.Job, delta time.Duration, interval time.Duration, repeat int) error {
	return s.schedule(job, time.Now().Add(delta), interval, repeat)
}

func (s *GocronScheduler) EnqueueAt(ctx context.Context, job *core.Job, at time.Time, interval time.Duration, repeat int) error {
	return s.schedule(job, at, interval, repeat)
}

func (s *GocronScheduler) schedule(job *core.Job, at time.Time, interval time.Duration, repeat int) error {
	var (
		definition gocron.JobDefinition
		options    []gocron.JobOption
	)
	if interval > 0 && repeat != 0 {
		definition = gocron.DurationJob(interval)
		options = append(options, gocron.WithStartAt(gocron.WithStartDateTime(at)))
		if repeat > 0 {
			options = append(options, gocron.WithLimitedRuns(uint(repeat)))
		}
	} else {
		definition = gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(at))
	}

	task := gocron.NewTask(func() {
		// The enqueue call's context is long gone by fire time.
		ctx := context.Background()
		if err := s.fire(ctx, job); err != nil {
			s.logger.Error("failed to fire scheduled job",
				"job_id", job.ID, "task", job.Name, "error", err)
		}
	})

	handle, err := s.scheduler.NewJob(definition, task, options...)
	if err != nil {
		return errors.InfraError(err).WithMetadata("job_id", job.ID)
	}

	s.mu.Lock()
	s.jobs[job.ID] = handle.ID()
	s.mu.Unlock()
	return nil
}

// Remove drops a pending scheduled job by its job ID.
func (s *GocronScheduler) Remove(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, exists := s.jobs[jobID]
	if !exists {
		return errors.AppError(errors.ErrJobNotFound).WithMetadata("job_id", jobID)
	}
	if err := s.scheduler.RemoveJob(handle); err != nil {
		return err
	}
	delete(s.jobs, jobID)
	return nil
}

// Clear drops every pending scheduled job.
func (s *GocronScheduler) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for jobID, handle := range s.jobs {
		if err := s.scheduler.RemoveJob(handle); err != nil {
			return errors.InfraError(err).WithMetadata("job_id", jobID)
		}
		delete(s.jobs, jobID)
	}
	return nil
}
