//go:build e2e

package e2e

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"muc-bot/domain"
	"muc-bot/domain/event"
	"muc-bot/infrastructure/grpc/server"
	"muc-bot/infrastructure/xmpp"
	"muc-bot/runtime"
	"muc-bot/runtime/workers"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// recorder keeps every event the dispatcher hands over.
type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Consume(_ context.Context, e event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) joins() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if _, ok := e.(event.Join); ok {
			n++
		}
	}
	return n
}

type testJoinSuite struct {
	BaseSuite
}

func TestJoinSuite(t *testing.T) {
	suite.Run(t, &testJoinSuite{})
}

func (s *testJoinSuite) TestBotJoinsRoom() {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	settings, err := domain.NewSettings(
		domain.MustParseIdentity(s.Config.BotJID),
		s.Config.BotPassword,
		s.Config.BotNick,
		domain.MustParseIdentity(s.Config.MucJID),
	)
	s.Require().NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s.Step("Dial")
	client, err := xmpp.Dial(ctx, log, xmpp.Options{
		Settings: settings,
		Backoff:  xmpp.NewBackoff(time.Second, 5*time.Second),
	})
	s.Require().NoError(err)
	defer client.Close()

	events := &recorder{}
	health := server.NewHealthServer(log, s.Config.HealthAddr)
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log), settings, client,
		runtime.NewCommandLogger(log), 5*time.Second)
	orchestrator.RegisterSinks(events)
	orchestrator.RegisterListeners(health)
	orchestrator.RegisterAuxiliary(health)

	done := make(chan error, 1)
	go func() { done <- orchestrator.Start(ctx) }()

	s.Step("Join")
	s.Require().Eventually(func() bool { return events.joins() == 1 }, 30*time.Second, 100*time.Millisecond)

	s.Step("Health")
	s.WithHealth(func(ctx context.Context, client healthpb.HealthClient) {
		s.Require().Eventually(func() bool {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: server.ServiceName})
			return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
		}, 10*time.Second, 200*time.Millisecond)
	})

	s.Step("Stop")
	orchestrator.Stop()
	s.Require().NoError(<-done)
}
