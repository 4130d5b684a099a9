package queue

import (
	"context"
	"sync"

	"github.com/taskore/taskore/core"
)

// InMemory is a process-local queue for tests and single-process setups.
type InMemory struct {
	mu   sync.Mutex
	jobs []*core.Job
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (q *InMemory) Enqueue(ctx context.Context, job *core.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Dequeue pops the oldest waiting job, or nil when the queue is empty.
func (q *InMemory) Dequeue() *core.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job
}

func (q *InMemory) Length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// NewInMemoryQueueMap builds an in-memory queue per priority label.
func NewInMemoryQueueMap(priorities ...core.Priority) core.QueueMap {
	queues := make(core.QueueMap, len(priorities))
	for _, p := range priorities {
		queues[p] = NewInMemory()
	}
	return queues
}
