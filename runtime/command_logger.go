package runtime

import (
	"context"
	"log/slog"

	"muc-bot/contract"
	"muc-bot/domain"
)

var _ contract.CommandHandler = CommandLogger{}

// CommandLogger is the default command handler: it only records the command.
type CommandLogger struct {
	log *slog.Logger
}

func NewCommandLogger(log *slog.Logger) CommandLogger {
	return CommandLogger{log: log}
}

func (c CommandLogger) HandleCommand(_ context.Context, cmd domain.Command) error {
	c.log.Info("Command received", "issuer", cmd.Issuer, "room", cmd.Room, "command", cmd.Text)
	return nil
}
