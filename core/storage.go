package core

import "context"

// Storage is the durable record of job state. The core calls it in exactly
// one place, Job.SaveAsCancellable; everything else on a concrete store
// belongs to the execution layer. The backend is the source of truth for
// persisted state and may serialize concurrent writes per job ID.
type Storage interface {
	// SaveJobAsCancellable persists the cancellable flag for jobID.
	// The operation is idempotent.
	SaveJobAsCancellable(ctx context.Context, jobID string, cancellable bool) error
}
