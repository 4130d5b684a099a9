package core

import (
	"context"
	"sync"
	"time"

	"github.com/taskore/taskore/errors"
)

// Validator inspects and transforms caller arguments before a job is built.
// Its return value rides on the produced job under the validator_result
// kwarg. A failing validator aborts the enqueue; the error is handed back to
// the caller untouched.
type Validator func(args []any, kwargs map[string]any) (any, error)

func identityValidator([]any, map[string]any) (any, error) {
	return nil, nil
}

// RegisteredJob is the template for one task definition: the callable, its
// validator, priority, permission set, and the default flags copied onto
// every job it produces. It is read-only after construction, so any number
// of goroutines may enqueue through the same instance without locking.
type RegisteredJob struct {
	Name          string
	Priority      Priority
	Permissions   []Permission
	JobID         string
	Cancellable   bool
	TrackProgress bool

	fn        Func
	validator Validator
	queues    QueueMap
	scheduler Scheduler
	storage   Storage
}

type RegisterOption func(*RegisteredJob)

func WithValidator(v Validator) RegisterOption {
	return func(r *RegisteredJob) {
		if v != nil {
			r.validator = v
		}
	}
}

// WithPriorityLabel sets the queue label; any case variant of a valid label
// is accepted and canonicalized here, exactly once.
func WithPriorityLabel(label string) RegisterOption {
	return func(r *RegisteredJob) { r.Priority = NormalizePriority(label) }
}

// WithPermissions instantiates each factory once, in order, into the
// template's permission set.
func WithPermissions(factories ...PermissionFactory) RegisterOption {
	return func(r *RegisteredJob) {
		perms := make([]Permission, 0, len(factories))
		for _, f := range factories {
			perms = append(perms, f())
		}
		r.Permissions = perms
	}
}

// WithDefaultJobID fixes the identifier used for every produced job. Without
// it each job gets a generated ID.
func WithDefaultJobID(id string) RegisterOption {
	return func(r *RegisteredJob) { r.JobID = id }
}

func WithDefaultCancellable(cancellable bool) RegisterOption {
	return func(r *RegisteredJob) { r.Cancellable = cancellable }
}

func WithDefaultTrackProgress(track bool) RegisterOption {
	return func(r *RegisteredJob) { r.TrackProgress = track }
}

// WithQueueMap injects the priority-to-queue mapping consulted by Enqueue.
func WithQueueMap(queues QueueMap) RegisterOption {
	return func(r *RegisteredJob) { r.queues = queues }
}

// WithScheduler injects the scheduler behind EnqueueIn and EnqueueAt.
func WithScheduler(s Scheduler) RegisterOption {
	return func(r *RegisteredJob) { r.scheduler = s }
}

// WithJobStorage binds the storage backend attached to every produced job.
func WithJobStorage(s Storage) RegisterOption {
	return func(r *RegisteredJob) { r.storage = s }
}

// NewRegisteredJob builds a task template for fn. Collaborators (queue map,
// scheduler, storage) are injected here; nothing reads ambient globals.
func NewRegisteredJob(name string, fn Func, opts ...RegisterOption) *RegisteredJob {
	r := &RegisteredJob{
		Name:      name,
		Priority:  PriorityRegular,
		fn:        fn,
		validator: identityValidator,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// readyJob runs the validator over exactly the caller's arguments and builds
// the job that every enqueue path submits. The validator result is attached
// under the reserved kwarg on a copy of the caller's map; args and the
// remaining kwargs pass through untouched.
func (r *RegisteredJob) readyJob(args []any, kwargs map[string]any) (*Job, error) {
	result, err := r.validator(args, kwargs)
	if err != nil {
		return nil, err
	}

	kw := make(map[string]any, len(kwargs)+1)
	for k, v := range kwargs {
		kw[k] = v
	}
	kw[ValidatorResultKey] = result

	jobOpts := []JobOption{
		WithJobID(r.JobID),
		WithPriority(r.Priority),
		WithCancellable(r.Cancellable),
		WithTrackProgress(r.TrackProgress),
	}
	if r.storage != nil {
		jobOpts = append(jobOpts, WithStorage(r.storage))
	}
	return NewJob(r.Name, r.fn, args, kw, jobOpts...), nil
}

// Enqueue validates the arguments, builds a ready job and submits it to the
// queue registered for the template's priority. A priority with no queue in
// the injected map is a configuration defect and fails the call.
func (r *RegisteredJob) Enqueue(ctx context.Context, args []any, kwargs map[string]any) error {
	job, err := r.readyJob(args, kwargs)
	if err != nil {
		return err
	}
	queue, ok := r.queues[r.Priority]
	if !ok {
		return errors.ConfigError(errors.ErrUnknownPriority).
			WithMetadata("priority", string(r.Priority)).
			WithMetadata("task", r.Name)
	}
	return queue.Enqueue(ctx, job)
}

// EnqueueOptions carries the timing and argument parameters of the delayed
// enqueue operations. Interval spaces repeated firings; Repeat bounds the
// firing count and is forwarded verbatim to the scheduler.
type EnqueueOptions struct {
	Interval time.Duration
	Repeat   int
	Args     []any
	Kwargs   map[string]any
}

// EnqueueIn builds a ready job from opt.Args/opt.Kwargs and hands it to the
// scheduler to fire after delta.
func (r *RegisteredJob) EnqueueIn(ctx context.Context, delta time.Duration, opt EnqueueOptions) error {
	job, err := r.readyJob(opt.Args, opt.Kwargs)
	if err != nil {
		return err
	}
	return r.scheduler.EnqueueIn(ctx, job, delta, opt.Interval, opt.Repeat)
}

// EnqueueAt is EnqueueIn with an absolute fire time.
func (r *RegisteredJob) EnqueueAt(ctx context.Context, at time.Time, opt EnqueueOptions) error {
	job, err := r.readyJob(opt.Args, opt.Kwargs)
	if err != nil {
		return err
	}
	return r.scheduler.EnqueueAt(ctx, job, at, opt.Interval, opt.Repeat)
}

// Registry is the process-wide collection of task registrations. It owns the
// injected collaborators, so templates registered through it inherit the
// queue map, scheduler and storage without each call site wiring them.
type Registry struct {
	mu        sync.RWMutex
	tasks     map[string]*RegisteredJob
	queues    QueueMap
	scheduler Scheduler
	storage   Storage
}

func NewRegistry(queues QueueMap, scheduler Scheduler, storage Storage) *Registry {
	return &Registry{
		tasks:     make(map[string]*RegisteredJob),
		queues:    queues,
		scheduler: scheduler,
		storage:   storage,
	}
}

// Register creates and stores a task template under name. Registering the
// same name twice is rejected.
func (reg *Registry) Register(name string, fn Func, opts ...RegisterOption) (*RegisteredJob, error) {
	wired := []RegisterOption{
		WithQueueMap(reg.queues),
		WithScheduler(reg.scheduler),
		WithJobStorage(reg.storage),
	}
	r := NewRegisteredJob(name, fn, append(wired, opts...)...)

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.tasks[name]; exists {
		return nil, errors.AppError(errors.ErrDuplicateTask).WithMetadata("task", name)
	}
	reg.tasks[name] = r
	return r, nil
}

// MustRegister is Register for process-start wiring, where a duplicate name
// is unrecoverable.
func (reg *Registry) MustRegister(name string, fn Func, opts ...RegisterOption) *RegisteredJob {
	r, err := reg.Register(name, fn, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns the template registered under name.
func (reg *Registry) Get(name string) (*RegisteredJob, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.tasks[name]
	return r, ok
}

// Names returns all registered task names.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.tasks))
	for name := range reg.tasks {
		names = append(names, name)
	}
	return names
}
