package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message ArchivedMessage) error
	GetMessages(room string, cursor *string) ([]ArchivedMessage, *string, error)
	SearchPaginated(ctx context.Context, terms, room string, page int) ([]ArchivedMessage, uint64, error)
}

const defaultPageSize = 20

// ArchivedMessage is a room message as written on disk.
// Room is the bare room JID, Body the censored text.
type ArchivedMessage struct {
	ID            uuid.UUID `cbor:"1,keyasint"`
	Room          string    `cbor:"2,keyasint"`
	From          string    `cbor:"3,keyasint"`
	Direction     string    `cbor:"4,keyasint"`
	Body          string    `cbor:"5,keyasint"`
	CensoredWords []string  `cbor:"6,keyasint,omitempty"`
	Lang          string    `cbor:"7,keyasint,omitempty"`
	At            time.Time `cbor:"8,keyasint"`
}

var archiveEncoding = func() cbor.EncMode {
	mode, err := cbor.EncOptions{Time: cbor.TimeRFC3339Nano, TimeTag: cbor.EncTagRequired}.EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

type MessageRepository struct {
	db            *badger.DB
	index         *MessageIndex
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// WithIndex makes stored messages searchable.
func (m MessageRepository) WithIndex(index *MessageIndex) MessageRepository {
	m.index = index
	return m
}

func messageKey(message ArchivedMessage) string {
	return fmt.Sprintf("msg:%s:%019d:%s", message.Room, message.At.UnixNano(), message.ID)
}

// StoreMessage persists a message under "msg:{room}:{timestamp_padded}:{uuid}".
// The 19-digit padding keeps keys in chronological order, the UUID separates
// two messages of the same nanosecond.
func (m MessageRepository) StoreMessage(message ArchivedMessage) error {
	key := messageKey(message)
	bytes, err := archiveEncoding.Marshal(message)
	if err != nil {
		return err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil || m.index == nil {
		return err
	}
	if err := m.index.Index(key, message); err != nil {
		return fmt.Errorf("indexing %s: %w", key, err)
	}
	return nil
}

// SearchPaginated runs a full-text search over a room's archive. Pages are
// 0 based and sized by the message limit.
func (m MessageRepository) SearchPaginated(ctx context.Context, terms, room string, page int) ([]ArchivedMessage, uint64, error) {
	if m.index == nil {
		return nil, 0, fmt.Errorf("archive has no search index")
	}
	size := defaultPageSize
	if m.limitMessages != nil {
		size = *m.limitMessages
	}

	keys, total, err := m.index.Search(ctx, room, terms, size, page)
	if err != nil {
		return nil, 0, err
	}

	messages := make([]ArchivedMessage, 0, len(keys))
	err = m.db.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			item, err := txn.Get([]byte(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				m.log.Warn("Indexed message missing from archive", "key", key)
				continue
			}
			if err != nil {
				return err
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var message ArchivedMessage
			if err := cbor.Unmarshal(value, &message); err != nil {
				return fmt.Errorf("decoding archived message: %w", err)
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// GetMessages returns a room's messages newest first, starting after cursor
// when given. The returned cursor points at the last message read; pass it
// back to read the next page.
func (m MessageRepository) GetMessages(room string, cursor *string) ([]ArchivedMessage, *string, error) {
	var rawMessages [][]byte
	var lastKey string
	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Reverse iteration starts from the highest possible timestamp
		seekKey := append([]byte(prefixStr), []byte("9999999999999999999")...)
		if cursor != nil {
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[len(prefix):]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(rawMessages) == *m.limitMessages {
				m.log.Debug("Maximum of messages reached", "limit", *m.limitMessages)
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rawMessages = append(rawMessages, value)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]ArchivedMessage, 0, len(rawMessages))
	for _, raw := range rawMessages {
		var message ArchivedMessage
		if err := cbor.Unmarshal(raw, &message); err != nil {
			return nil, nil, fmt.Errorf("decoding archived message: %w", err)
		}
		messages = append(messages, message)
	}
	if lastKey == "" {
		return messages, nil, nil
	}
	return messages, &lastKey, nil
}
