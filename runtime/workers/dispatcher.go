package workers

import (
	"context"
	"log/slog"

	"muc-bot/bus"
	"muc-bot/contract"
	"muc-bot/domain/event"
)

var _ contract.Worker = (*DispatcherWorker)(nil)

// EventHandler is satisfied by runtime.Dispatcher.
type EventHandler interface {
	Handle(ctx context.Context, e event.Event)
}

// DispatcherWorker is the single consumer of the event bus.
type DispatcherWorker struct {
	events  *bus.EventBus
	handler EventHandler
	log     *slog.Logger
}

func NewDispatcherWorker(events *bus.EventBus, handler EventHandler, log *slog.Logger) *DispatcherWorker {
	return &DispatcherWorker{events: events, handler: handler, log: log}
}

// Run returns nil when the bus is closed and drained.
func (w *DispatcherWorker) Run(ctx context.Context) error {
	for {
		e, ok := w.events.Receive(ctx)
		if !ok {
			if ctx.Err() != nil {
				w.log.Debug("Stopping worker")
				return ctx.Err()
			}
			w.log.Debug("Event bus is closed")
			return nil
		}
		w.handler.Handle(ctx, e)
	}
}
