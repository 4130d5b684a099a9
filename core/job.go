package core

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/taskore/taskore/errors"
)

// ValidatorResultKey is the reserved kwarg under which a registered task's
// validator output is attached to every job it produces.
const ValidatorResultKey = "validator_result"

// Priority is a normalized queue label. Labels are upper-cased once, at
// registration time; everything downstream relies on the canonical form.
type Priority string

const (
	PriorityHigh    Priority = "HIGH"
	PriorityRegular Priority = "REGULAR"
)

func NormalizePriority(label string) Priority {
	return Priority(strings.ToUpper(label))
}

// Func is the callable target of a job. The core stores it on the job record
// but never invokes it; execution belongs to the worker layer.
type Func func(ctx context.Context, job *Job) error

// Job describes one unit of schedulable work: the target function, the
// arguments bound at construction time, and the runtime flags. A Job is a
// value handed to a queue or scheduler; the core does not track what happens
// to it after hand-off.
//
// Cancellable is the only field meant to change after construction, and only
// through SaveAsCancellable, which keeps the in-memory flag and the storage
// backend in sync.
type Job struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Args          []any          `json:"args"`
	Kwargs        map[string]any `json:"kwargs,omitempty"`
	Priority      Priority       `json:"priority"`
	Cancellable   bool           `json:"cancellable"`
	TrackProgress bool           `json:"track_progress"`

	fn      Func
	storage Storage
}

type JobOption func(*Job)

// WithJobID sets a caller-supplied identifier. Without it the job gets a
// generated UUID.
func WithJobID(id string) JobOption {
	return func(j *Job) {
		if id != "" {
			j.ID = id
		}
	}
}

func WithPriority(p Priority) JobOption {
	return func(j *Job) { j.Priority = p }
}

func WithCancellable(cancellable bool) JobOption {
	return func(j *Job) { j.Cancellable = cancellable }
}

func WithTrackProgress(track bool) JobOption {
	return func(j *Job) { j.TrackProgress = track }
}

// WithStorage binds the persistence backend the job reports flag changes to.
// The reference is non-owning; a job without one is "detached".
func WithStorage(s Storage) JobOption {
	return func(j *Job) { j.storage = s }
}

// NewJob builds a job record for fn with the given bound arguments. kwargs
// is stored as passed; use RegisteredJob to get validation and the
// validator_result attachment.
func NewJob(name string, fn Func, args []any, kwargs map[string]any, opts ...JobOption) *Job {
	j := &Job{
		ID:       uuid.NewString(),
		Name:     name,
		Args:     args,
		Kwargs:   kwargs,
		Priority: PriorityRegular,
		fn:       fn,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Func returns the callable target bound at construction.
func (j *Job) Func() Func {
	return j.fn
}

// AttachStorage binds s as the job's persistence backend. Used by the
// execution layer after rehydrating a job from a queue payload.
func (j *Job) AttachStorage(s Storage) {
	j.storage = s
}

// Detach drops the storage reference, leaving the record read-only.
func (j *Job) Detach() {
	j.storage = nil
}

// SaveAsCancellable persists a change to the cancellable flag.
//
// A request for the current value is a no-op: redundant storage writes are a
// correctness defect, not just wasted I/O. An actual change requires a bound
// storage backend; mutating a detached record fails with ErrJobDetached. The
// in-memory flag is updated only after the backend accepted the write, so a
// failed write leaves the record observing its previous state.
func (j *Job) SaveAsCancellable(ctx context.Context, cancellable bool) error {
	if cancellable == j.Cancellable {
		return nil
	}
	if j.storage == nil {
		return errors.DomainError(errors.ErrJobDetached).WithMetadata("job_id", j.ID)
	}
	if err := j.storage.SaveJobAsCancellable(ctx, j.ID, cancellable); err != nil {
		return err
	}
	j.Cancellable = cancellable
	return nil
}

// Serialize renders the job as a queue payload. The callable target and the
// storage reference stay behind; the execution layer restores them by name
// via the registry.
func (j *Job) Serialize() ([]byte, error) {
	return json.Marshal(j)
}

// DeserializeJob rebuilds a job record from a queue payload. The result is
// detached and carries no callable target.
func DeserializeJob(payload []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(payload, &j); err != nil {
		return nil, err
	}
	return &j, nil
}
