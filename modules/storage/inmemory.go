package storage

import (
	"context"
	"sync"

	"github.com/taskore/taskore/core"
	"github.com/taskore/taskore/errors"
)

type record struct {
	job         *core.Job
	cancellable bool
}

// InMemory keeps job state in a map. Tests and single-process setups only.
type InMemory struct {
	mu   sync.RWMutex
	rows map[string]*record
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[string]*record)}
}

func (s *InMemory) SaveJob(ctx context.Context, job *core.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[job.ID] = &record{job: job, cancellable: job.Cancellable}
	return nil
}

func (s *InMemory) SaveJobAsCancellable(ctx context.Context, jobID string, cancellable bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[jobID]
	if !ok {
		return errors.InfraError(errors.ErrJobNotFound).WithMetadata("job_id", jobID)
	}
	row.cancellable = cancellable
	return nil
}

// Cancellable reports the persisted flag for jobID.
func (s *InMemory) Cancellable(jobID string) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[jobID]
	if !ok {
		return false, false
	}
	return row.cancellable, true
}
