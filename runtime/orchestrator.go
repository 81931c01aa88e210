// Package runtime drives the bot: session lifecycle, stanza classification,
// command dispatch and the glue between them.
// It holds no command business logic.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"muc-bot/bus"
	"muc-bot/contract"
	"muc-bot/domain"
	"muc-bot/runtime/workers"
)

var _ contract.IOrchestrator = (*Orchestrator)(nil)

type Orchestrator struct {
	mu          sync.Mutex
	log         *slog.Logger
	supervisor  contract.ISupervisor
	settings    domain.Settings
	transport   contract.Transport
	handler     contract.CommandHandler
	sinks       []contract.EventSink
	listeners   []contract.StateListener
	auxiliary   []contract.Worker
	sinkTimeout time.Duration
	cancel      context.CancelFunc
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	settings domain.Settings, transport contract.Transport,
	handler contract.CommandHandler, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:         log,
		supervisor:  supervisor,
		settings:    settings,
		transport:   transport,
		handler:     handler,
		sinkTimeout: sinkTimeout,
	}
}

func (o *Orchestrator) RegisterSinks(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sinks = append(o.sinks, sinks...)
}

func (o *Orchestrator) RegisterListeners(listeners ...contract.StateListener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, listeners...)
}

// RegisterAuxiliary adds workers that live as long as the session does,
// e.g. the heartbeat.
func (o *Orchestrator) RegisterAuxiliary(worker ...contract.Worker) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.auxiliary = append(o.auxiliary, worker...)
}

// Start runs the session manager and the dispatcher under supervision and
// blocks until the session is over and every queued event was dispatched.
func (o *Orchestrator) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 1. Preparation phase (short lock)
	o.mu.Lock()
	o.cancel = cancel
	events := bus.NewEventBus(ctx)
	session := NewSessionManager(o.log, o.settings, o.transport, events, o.listeners...)
	dispatcher := NewDispatcher(o.log, o.settings.Nickname, o.handler, o.sinkTimeout, o.sinks...)
	auxiliary := workers.NewSupervisor(o.log)
	auxiliary.Add(o.auxiliary...)
	o.supervisor.Add(session, workers.NewDispatcherWorker(events, dispatcher, o.log))
	o.mu.Unlock()

	// 2. Execution phase
	auxDone := make(chan struct{})
	go func() {
		defer close(auxDone)
		auxiliary.Run(ctx)
	}()

	o.log.Info("Starting session", "bot", o.settings.BotIdentity, "room", o.settings.RoomIdentity)
	o.supervisor.Run(ctx)

	// 3. The session is over: auxiliary workers go with it
	cancel()
	<-auxDone
	o.log.Info("Session ended")
	return nil
}

// Stop cancels the session and every worker.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}
