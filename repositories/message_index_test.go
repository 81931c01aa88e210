package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func searchableRepository(t *testing.T, limit *int) MessageRepository {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	index, err := OpenMessageIndex(t.TempDir(), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return NewMessageRepository(openDB(t), log, limit).WithIndex(index)
}

func TestMessageRepository_SearchPaginated(t *testing.T) {
	req := require.New(t)
	repository := searchableRepository(t, nil)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Given messages in two rooms
	deploy := archived(lobby, "alice", at)
	deploy.Body = "the Database migration is done"
	lunch := archived(lobby, "bob", at.Add(time.Minute))
	lunch.Body = "lunch at noon?"
	secret := archived("ops@conference.example.org", "clara", at)
	secret.Body = "database password rotated"
	for _, m := range []ArchivedMessage{deploy, lunch, secret} {
		req.NoError(repository.StoreMessage(m))
	}

	// When searching the lobby, whatever the case
	for _, terms := range []string{"database", "DATABASE", "Database"} {
		results, total, err := repository.SearchPaginated(context.Background(), terms, lobby, 0)

		// Then only the lobby message comes back
		req.NoError(err)
		req.Equal(uint64(1), total)
		req.Equal([]ArchivedMessage{deploy}, results)
	}
}

func TestMessageRepository_SearchPages(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := searchableRepository(t, &limit)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		m := archived(lobby, "alice", at.Add(time.Duration(i)*time.Minute))
		m.Body = "deploy number"
		req.NoError(repository.StoreMessage(m))
	}

	first, total, err := repository.SearchPaginated(context.Background(), "deploy", lobby, 0)
	req.NoError(err)
	second, _, err := repository.SearchPaginated(context.Background(), "deploy", lobby, 1)
	req.NoError(err)

	req.Equal(uint64(3), total)
	req.Len(first, 2)
	req.Len(second, 1)
}

func TestMessageRepository_SearchEmptyTerms(t *testing.T) {
	req := require.New(t)
	repository := searchableRepository(t, nil)
	req.NoError(repository.StoreMessage(archived(lobby, "alice", time.Now().UTC())))

	results, total, err := repository.SearchPaginated(context.Background(), "  ", lobby, 0)

	req.NoError(err)
	req.Empty(results)
	req.Zero(total)
}

func TestMessageRepository_SearchWithoutIndex(t *testing.T) {
	repository := NewMessageRepository(openDB(t), logs.GetLoggerFromLevel(slog.LevelDebug), nil)

	_, _, err := repository.SearchPaginated(context.Background(), "x", lobby, 0)

	require.Error(t, err)
}
