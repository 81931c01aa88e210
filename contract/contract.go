//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"muc-bot/domain"
	"muc-bot/domain/event"
	"muc-bot/domain/stanza"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Transport is the stanza channel to the server.
// Receive blocks until the next item, returns errors.ErrTransportClosed once
// the stream is over. Only the session manager calls Send.
type Transport interface {
	Receive(ctx context.Context) (stanza.Item, error)
	Send(ctx context.Context, out stanza.Outbound) error
}

// EventPublisher is the producer side of the event bus.
type EventPublisher interface {
	Publish(e event.Event)
	Close()
}

// CommandHandler is where bot behaviour plugs in.
type CommandHandler interface {
	HandleCommand(ctx context.Context, cmd domain.Command) error
}

type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

type StateListener interface {
	OnStateChange(state domain.ConnectionState)
}

type IOrchestrator interface {
	Start(ctx context.Context) error
	Stop()
}
