package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"muc-bot/infrastructure/grpc/server"
	"muc-bot/infrastructure/xmpp"
	"muc-bot/internal"
	"muc-bot/moderation"
	"muc-bot/repositories"
	"muc-bot/runtime"
	"muc-bot/runtime/workers"
	"muc-bot/sink"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until the session is over.
// Returning instead of exiting lets the deferred cleanups run.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.LoadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	settings, err := config.Settings()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Transport: the first connection must succeed
	client, err := xmpp.Dial(ctx, log, xmpp.Options{
		Settings:    settings,
		Reconnect:   config.Reconnect,
		MaxAttempts: config.ReconnectMaxAttempts,
		Backoff:     xmpp.NewBackoff(config.ReconnectBaseDelay, config.ReconnectMaxDelay),
	})
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing XMPP session...")
		_ = client.Close()
	}()

	// 4. Orchestration
	orchestrator := runtime.NewOrchestrator(
		log, workers.NewSupervisor(log), settings, client,
		runtime.NewCommandLogger(log), config.SinkTimeout,
	)

	// 5. Optional archive
	if config.ArchivePath != "" {
		db, err := badger.Open(badger.DefaultOptions(config.ArchivePath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return fmt.Errorf("database opening failed: %w", err)
		}
		defer func() {
			log.Info("Closing BadgerDB...")
			_ = db.Close()
		}()

		moderator, err := buildModerator(config, log)
		if err != nil {
			return err
		}
		repository := repositories.NewMessageRepository(db, log, config.LimitMessages)
		if config.IndexPath != "" {
			index, err := repositories.OpenMessageIndex(config.IndexPath, log)
			if err != nil {
				return err
			}
			defer func() {
				log.Info("Closing search index...")
				_ = index.Close()
			}()
			repository = repository.WithIndex(index)
		}
		orchestrator.RegisterSinks(sink.NewArchiveSink(repository, moderator, log))
	}

	// 6. Optional health endpoint and heartbeat
	if config.HealthPort > 0 {
		health := server.NewHealthServer(log, fmt.Sprintf("0.0.0.0:%d", config.HealthPort))
		orchestrator.RegisterListeners(health)
		orchestrator.RegisterAuxiliary(health)
	}
	if config.HeartbeatInterval > 0 {
		orchestrator.RegisterAuxiliary(workers.NewHeartbeatWorker(log, config.HeartbeatInterval))
	}

	// 7. Run until the session ends or a signal arrives
	if err := orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator error: %w", err)
	}
	log.Info("Program stopped cleanly")
	return nil
}

// buildModerator returns nil when no censored word list is configured.
func buildModerator(config internal.Config, log *slog.Logger) (*moderation.Moderator, error) {
	if config.CensoredDir == "" {
		return nil, nil
	}
	data, err := runtime.NewCensoredLoader(os.DirFS(config.CensoredDir)).LoadAll(".")
	if err != nil {
		return nil, fmt.Errorf("loading censored words: %w", err)
	}
	log.Info("Censored words loaded", "count", len(data.Words), "languages", data.Languages)

	char, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return nil, err
	}
	return moderation.NewModerator(data.Words, char, log)
}
