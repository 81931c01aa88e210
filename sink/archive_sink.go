// Package sink holds the event sinks the dispatcher fans events out to.
package sink

import (
	"context"
	"log/slog"

	"muc-bot/contract"
	"muc-bot/domain/event"
	"muc-bot/moderation"
	"muc-bot/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

var _ contract.EventSink = ArchiveSink{}

// ArchiveSink writes room messages to the archive, censored and tagged with
// their detected language. Replayed history is not archived twice.
type ArchiveSink struct {
	repository repositories.IMessageRepository
	moderator  *moderation.Moderator
	log        *slog.Logger
}

// NewArchiveSink accepts a nil moderator, bodies are then stored as is.
func NewArchiveSink(repository repositories.IMessageRepository, moderator *moderation.Moderator, log *slog.Logger) ArchiveSink {
	return ArchiveSink{repository: repository, moderator: moderator, log: log}
}

func (a ArchiveSink) Consume(ctx context.Context, e event.Event) error {
	msg, ok := e.(event.Message)
	if !ok || msg.Delayed() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	archived := repositories.ArchivedMessage{
		ID:        uuid.New(),
		Room:      msg.RoomID().Bare().String(),
		From:      msg.From.String(),
		Direction: msg.Direction.String(),
		Body:      msg.Body,
		Lang:      whatlanggo.Detect(msg.Body).Lang.Iso6391(),
		At:        msg.Timestamp,
	}
	if a.moderator != nil {
		archived.Body, archived.CensoredWords = a.moderator.Censor(msg.Body)
	}

	if err := a.repository.StoreMessage(archived); err != nil {
		return err
	}
	a.log.Debug("Message archived", "room", archived.Room, "id", archived.ID)
	return nil
}
