package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/taskore/taskore/core"
)

// inMemory routes job pipeline events over a watermill gochannel pub/sub.
// Topics are event names (job.enqueued, ...).
type inMemory struct {
	router *message.Router
	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func NewInMemory(sl *slog.Logger) (*inMemory, error) {
	logger := watermill.NewSlogLogger(sl)
	router, err := message.NewRouter(message.RouterConfig{}, logger)
	if err != nil {
		return nil, err
	}
	// PreserveContext keeps the publisher's context flowing into handlers,
	// which the trace propagation middleware relies on.
	pubSub := gochannel.NewGoChannel(gochannel.Config{PreserveContext: true}, logger)
	router.AddPlugin(plugin.SignalsHandler)
	return &inMemory{router: router, pubSub: pubSub, logger: logger}, nil
}

func (b *inMemory) Use(middleware ...message.HandlerMiddleware) {
	b.router.AddMiddleware(middleware...)
}

func (b *inMemory) AddPublisherDecorator(decorators ...message.PublisherDecorator) {
	b.router.AddPublisherDecorators(decorators...)
}

func (b *inMemory) Publish(ctx context.Context, event core.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessageWithContext(ctx, watermill.NewUUID(), payload)
	return b.pubSub.Publish(event.EventName(), msg)
}

func (b *inMemory) Subscribe(prototype core.Event, handler core.EventHandler[core.Event]) error {
	eventName := prototype.EventName()
	// The prototype's concrete type is what each message payload is
	// unmarshaled into before the handler runs.
	eventType := reflect.TypeOf(prototype)
	isPtr := eventType.Kind() == reflect.Ptr
	if isPtr {
		eventType = eventType.Elem()
	}

	b.router.AddNoPublisherHandler(
		eventName,
		eventName,
		b.pubSub,
		func(msg *message.Message) error {
			newEvent := reflect.New(eventType)

			if err := json.Unmarshal(msg.Payload, newEvent.Interface()); err != nil {
				return err
			}

			// Hand the handler the same shape the prototype had: pointer
			// prototypes get the pointer, value prototypes the value.
			var raw any
			if isPtr {
				raw = newEvent.Interface()
			} else {
				raw = newEvent.Elem().Interface()
			}
			evt, ok := raw.(core.Event)
			if !ok {
				return fmt.Errorf("failed to cast %T to core.Event", raw)
			}

			return handler.Handle(msg.Context(), evt)
		},
	)
	return nil
}

func (b *inMemory) Run(ctx context.Context) error {
	poisonQueueMiddleware, err := middleware.PoisonQueue(b.pubSub, "poison_queue")
	if err != nil {
		return err
	}

	retryMiddleware := middleware.Retry{
		MaxRetries:      3,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second * 1,
		Multiplier:      2.0,
		Logger:          b.logger,
	}

	b.router.AddMiddleware(
		retryMiddleware.Middleware,
		poisonQueueMiddleware,
	)
	b.AddPublisherDecorator(TraceContextDecorator)

	return b.router.Run(ctx)
}
