package bus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"muc-bot/domain"
	"muc-bot/domain/event"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var room = domain.MustParseIdentity("lobby@conference.example.org")

func message(i int) event.Message {
	return event.Message{
		From:      domain.MustParseIdentity("lobby@conference.example.org/alice"),
		To:        room,
		Direction: event.Incoming,
		Body:      fmt.Sprintf("message %d", i),
		Timestamp: time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func TestEventBus_PreservesOrder(t *testing.T) {
	req := require.New(t)
	b := NewEventBus(context.Background())

	// Given N events published before anyone reads
	const n = 500
	for i := 0; i < n; i++ {
		b.Publish(message(i))
	}
	b.Close()

	// Then the consumer receives them in the same order and then a clean end
	var received []event.Event
	for e := range b.Events() {
		received = append(received, e)
	}
	req.Len(received, n)
	for i, e := range received {
		req.Equal(message(i), e)
	}
	<-b.Done()
}

func TestEventBus_ReceiveAfterClose(t *testing.T) {
	req := require.New(t)
	b := NewEventBus(context.Background())
	join := event.Join{Account: domain.MustParseIdentity("bot@example.org/res"), Channel: room}

	b.Publish(join)
	b.Close()
	// Close twice and publish after close are harmless
	b.Close()
	b.Publish(message(1))

	e, ok := b.Receive(context.Background())
	req.True(ok)
	req.Equal(join, e)

	e, ok = b.Receive(context.Background())
	req.False(ok)
	req.Nil(e)
	<-b.Done()
}

func TestEventBus_ConcurrentConsumer(t *testing.T) {
	req := require.New(t)
	b := NewEventBus(context.Background())

	const n = 100
	done := make(chan []event.Event)
	go func() {
		var received []event.Event
		for {
			e, ok := b.Receive(context.Background())
			if !ok {
				done <- received
				return
			}
			received = append(received, e)
		}
	}()

	for i := 0; i < n; i++ {
		b.Publish(message(i))
	}
	b.Close()

	select {
	case received := <-done:
		req.Len(received, n)
		req.Equal(message(0), received[0])
		req.Equal(message(n-1), received[n-1])
	case <-time.After(2 * time.Second):
		req.Fail("consumer did not observe the end of the bus")
	}
	<-b.Done()
}

func TestEventBus_ContextStopsPump(t *testing.T) {
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	b := NewEventBus(ctx)

	// Given an event nobody consumes
	b.Publish(message(0))
	cancel()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		req.Fail("pump did not stop on context cancellation")
	}

	// Publishing on a stopped bus does not block
	b.Publish(message(1))

	ctxRecv, cancelRecv := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelRecv()
	_, ok := b.Receive(ctxRecv)
	req.False(ok)
}
