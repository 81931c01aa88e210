// Package bus carries domain events from the session manager to the
// dispatcher. It is an unbounded FIFO between one producer and one consumer.
package bus

import (
	"context"
	"sync"

	"muc-bot/contract"
	"muc-bot/domain/event"
)

var _ contract.EventPublisher = (*EventBus)(nil)

// EventBus queues events in a pump goroutine so that Publish never waits for
// the consumer. Publish and Close belong to the producer goroutine.
type EventBus struct {
	in        chan event.Event
	out       chan event.Event
	done      chan struct{}
	closed    bool
	closeOnce sync.Once
}

// NewEventBus starts the pump. It stops once closed and drained, or when ctx
// ends, whichever comes first.
func NewEventBus(ctx context.Context) *EventBus {
	b := &EventBus{
		in:   make(chan event.Event),
		out:  make(chan event.Event),
		done: make(chan struct{}),
	}
	go b.pump(ctx)
	return b
}

func (b *EventBus) pump(ctx context.Context) {
	defer close(b.done)
	defer close(b.out)

	var queue []event.Event
	in := b.in
	for in != nil || len(queue) > 0 {
		// A nil channel disables the send case while the queue is empty
		var out chan<- event.Event
		var next event.Event
		if len(queue) > 0 {
			out = b.out
			next = queue[0]
		}

		select {
		case <-ctx.Done():
			return
		case e, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, e)
		case out <- next:
			queue[0] = nil
			queue = queue[1:]
		}
	}
}

// Publish enqueues e. Events published after Close are dropped.
func (b *EventBus) Publish(e event.Event) {
	if b.closed {
		return
	}
	select {
	case b.in <- e:
	case <-b.done:
	}
}

// Close marks the end of the stream. The consumer still receives every event
// published before it.
func (b *EventBus) Close() {
	b.closeOnce.Do(func() {
		b.closed = true
		close(b.in)
	})
}

// Receive blocks until the next event. It returns false once the bus is
// closed and drained, or when ctx is done.
func (b *EventBus) Receive(ctx context.Context) (event.Event, bool) {
	select {
	case e, ok := <-b.out:
		return e, ok
	case <-ctx.Done():
		return nil, false
	}
}

// Events exposes the consumer side for range loops.
func (b *EventBus) Events() <-chan event.Event {
	return b.out
}

// Done is closed when the pump has exited.
func (b *EventBus) Done() <-chan struct{} {
	return b.done
}
