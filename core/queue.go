package core

import "context"

// Queue accepts ready jobs for immediate dispatch. Ordering and backpressure
// policy belong to the queue implementation, not to this core.
type Queue interface {
	Enqueue(ctx context.Context, job *Job) error
}

// QueueMap maps a normalized priority label to its queue. It is shared,
// process-wide state, so it is injected explicitly into every component that
// needs a lookup rather than read from a package global; tests swap it per
// case.
//
// The map must carry an entry for every priority any registration uses.
type QueueMap map[Priority]Queue
