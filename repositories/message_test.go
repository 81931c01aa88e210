package repositories

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const lobby = "lobby@conference.example.org"

func openDB(t *testing.T) *badger.DB {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func archived(room, from string, at time.Time) ArchivedMessage {
	return ArchivedMessage{
		ID:        uuid.New(),
		Room:      room,
		From:      from,
		Direction: "incoming",
		Body:      "this message will self destruct in 5 seconds",
		Lang:      "en",
		At:        at,
	}
}

func TestMessageRepository_NewestFirst(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Given three messages in the lobby and one elsewhere
	stored := []ArchivedMessage{
		archived(lobby, lobby+"/alice", at),
		archived(lobby, lobby+"/bob", at.Add(time.Minute)),
		archived(lobby, lobby+"/clara", at.Add(2*time.Minute)),
	}
	stored[1].CensoredWords = []string{"badger"}
	for _, m := range append(stored, archived("other@conference.example.org", "x", at)) {
		req.NoError(repository.StoreMessage(m))
	}

	// When reading the lobby
	messages, cursor, err := repository.GetMessages(lobby, nil)

	// Then its messages come back newest first, fields intact
	req.NoError(err)
	req.NotNil(cursor)
	req.Equal([]ArchivedMessage{stored[2], stored[1], stored[0]}, messages)
}

func TestMessageRepository_Paging(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), &limit)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	stored := []ArchivedMessage{
		archived(lobby, "alice", at),
		archived(lobby, "bob", at.Add(time.Minute)),
		archived(lobby, "clara", at.Add(2*time.Minute)),
	}
	for _, m := range stored {
		req.NoError(repository.StoreMessage(m))
	}

	// When reading page by page
	first, cursor, err := repository.GetMessages(lobby, nil)
	req.NoError(err)
	second, next, err := repository.GetMessages(lobby, cursor)
	req.NoError(err)
	third, last, err := repository.GetMessages(lobby, next)
	req.NoError(err)

	// Then pages follow each other without overlap
	req.Equal([]ArchivedMessage{stored[2], stored[1]}, first)
	req.Equal([]ArchivedMessage{stored[0]}, second)
	req.Empty(third)
	req.Nil(last)
}

func TestMessageRepository_EmptyRoom(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	messages, cursor, err := repository.GetMessages(lobby, nil)

	req.NoError(err)
	req.Empty(messages)
	req.Nil(cursor)
}
