// Package taskore is the job registration and enqueue core of a host
// application: it turns a function plus caller-supplied arguments into a
// validated, persistable job descriptor and routes it to an immediate
// priority queue, a one-shot timer, or a recurring timer. Execution of the
// produced jobs belongs to a worker layer outside this module.
package taskore

import (
	"context"
	"log/slog"

	"github.com/taskore/taskore/core"
)

// Application wires the task registry with its collaborators and manages
// their lifecycle.
type Application struct {
	registry  *core.Registry
	scheduler core.Scheduler
	eventBus  core.EventBus
	logger    *slog.Logger
}

func New(registry *core.Registry, scheduler core.Scheduler, eventBus core.EventBus, logger *slog.Logger) (*Application, error) {
	return &Application{
		registry:  registry,
		scheduler: scheduler,
		eventBus:  eventBus,
		logger:    logger,
	}, nil
}

// Registry exposes the task registration surface to the host application.
func (app *Application) Registry() *core.Registry {
	return app.registry
}

// Run starts the scheduler and blocks running the event bus until ctx is
// cancelled.
func (app *Application) Run(ctx context.Context) error {
	app.scheduler.Start()
	app.logger.Info("task pipeline started", "tasks", len(app.registry.Names()))
	return app.eventBus.Run(ctx)
}

func (app *Application) Shutdown(ctx context.Context) error {
	if app.scheduler != nil {
		if err := app.scheduler.Shutdown(); err != nil {
			app.logger.Error("scheduler shutdown failed", "error", err)
			return err
		}
	}
	return nil
}
