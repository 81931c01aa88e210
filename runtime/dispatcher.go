package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"muc-bot/contract"
	"muc-bot/domain"
	"muc-bot/domain/event"
	apperrors "muc-bot/errors"
)

// Dispatcher recognizes commands addressed to the bot nickname and hands
// them to the command handler. Every event is also offered to the sinks.
// Neither handler nor sink failures reach the caller.
type Dispatcher struct {
	log         *slog.Logger
	nickname    string
	handler     contract.CommandHandler
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewDispatcher(log *slog.Logger, nickname string, handler contract.CommandHandler,
	sinkTimeout time.Duration, sinks ...contract.EventSink) *Dispatcher {
	return &Dispatcher{
		log:         log,
		nickname:    nickname,
		handler:     handler,
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

func (d *Dispatcher) Handle(ctx context.Context, e event.Event) {
	d.fanout(ctx, e)

	switch evt := e.(type) {
	case event.Join:
		d.log.Info("Joined room", "account", evt.Account, "room", evt.Channel)
	case event.Message:
		if evt.Direction != event.Incoming {
			return
		}
		if evt.Delayed() {
			d.log.Debug("Skipping room history", "from", evt.From)
			return
		}
		text, ok := domain.ParseCommand(d.nickname, evt.Body)
		if !ok {
			return
		}
		d.dispatch(ctx, domain.Command{Issuer: evt.From, Room: evt.To, Text: text})
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd domain.Command) {
	d.log.Info("xmpp: command", "issuer", cmd.Issuer, "room", cmd.Room, "text", cmd.Text)
	if err := d.callHandler(ctx, cmd); err != nil {
		d.log.Error("Command handler failed", "text", cmd.Text, "error", err)
	}
}

func (d *Dispatcher) callHandler(ctx context.Context, cmd domain.Command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", apperrors.ErrHandlerPanic, r)
		}
	}()
	return d.handler.HandleCommand(ctx, cmd)
}

// fanout runs every sink concurrently, each bounded by sinkTimeout, and
// waits for all of them so sinks observe events in bus order.
func (d *Dispatcher) fanout(ctx context.Context, e event.Event) {
	if len(d.sinks) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, sink := range d.sinks {
		wg.Add(1)
		go func(s contract.EventSink) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					d.log.Error("Sink panicked", "sink", fmt.Sprintf("%T", s), "panic", r)
				}
			}()
			sinkCtx, cancel := context.WithTimeout(ctx, d.sinkTimeout)
			defer cancel()
			if err := s.Consume(sinkCtx, e); err != nil {
				d.log.Warn("Sink failed", "sink", fmt.Sprintf("%T", s), "error", err)
			}
		}(sink)
	}
	wg.Wait()
}
