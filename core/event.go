package core

import (
	"context"
	"reflect"
	"time"
)

// Event is a fact about the job pipeline, published after the fact. Events
// must carry a unique ID for traceability and a stable name used as the
// routing topic.
type Event interface {
	EventID() string
	EventName() string
	OccurredOn() time.Time
}

type EventHandler[E Event] interface {
	Handle(ctx context.Context, event E) error
}

// EventBus publishes pipeline events and routes them to subscribers. Run
// blocks until ctx is cancelled.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(prototype Event, handler EventHandler[Event]) error
	Run(ctx context.Context) error
}

// SubscribeEvent registers a type-safe subscriber by adapting the typed
// handler onto the bus's type-erased Subscribe.
func SubscribeEvent[E Event](bus EventBus, handler EventHandler[E]) error {
	var prototype E
	// A pointer-typed prototype starts out nil; allocate one so the bus can
	// call its Event methods.
	val := reflect.ValueOf(prototype)
	if val.Kind() == reflect.Ptr && val.IsNil() {
		prototype = reflect.New(val.Type().Elem()).Interface().(E)
	}
	return bus.Subscribe(prototype, &eventHandlerWrapper[E]{handler: handler})
}

type eventHandlerWrapper[E Event] struct {
	handler EventHandler[E]
}

func (w *eventHandlerWrapper[E]) Handle(ctx context.Context, event Event) error {
	return w.handler.Handle(ctx, event.(E))
}

// JobEnqueued is published after a ready job was accepted by a queue.
type JobEnqueued struct {
	ID       string    `json:"id"`
	JobID    string    `json:"job_id"`
	TaskName string    `json:"task_name"`
	Priority Priority  `json:"priority"`
	At       time.Time `json:"at"`
}

func (e JobEnqueued) EventID() string {
	return e.ID
}

func (e JobEnqueued) EventName() string {
	return "job.enqueued"
}

func (e JobEnqueued) OccurredOn() time.Time {
	return e.At
}
