package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"muc-bot/bus"
	"muc-bot/domain"
	"muc-bot/domain/event"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events chan event.Event
}

func (h recordingHandler) Handle(_ context.Context, e event.Event) {
	h.events <- e
}

func TestDispatcherWorker_DrainsThenStopsOnClose(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	room := domain.MustParseIdentity("lobby@conference.example.org")
	events := bus.NewEventBus(context.Background())
	handler := recordingHandler{events: make(chan event.Event, 10)}

	join := event.Join{Account: domain.MustParseIdentity("bot@example.org/res"), Channel: room}
	msg := event.Message{From: domain.MustParseIdentity("lobby@conference.example.org/alice"), To: room, Body: "hi"}

	// Given two events published then the bus closed
	events.Publish(join)
	events.Publish(msg)
	events.Close()

	// When the worker runs
	err := NewDispatcherWorker(events, handler, log).Run(context.Background())

	// Then it handled both in order and finished cleanly
	req.NoError(err)
	req.Len(handler.events, 2)
	req.Equal(join, <-handler.events)
	req.Equal(msg, <-handler.events)
}

func TestDispatcherWorker_StopsOnContext(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	events := bus.NewEventBus(context.Background())
	defer events.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := NewDispatcherWorker(events, recordingHandler{events: make(chan event.Event)}, log).Run(ctx)
	req.ErrorIs(err, context.DeadlineExceeded)
}
