package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/blugelabs/bluge"
)

const (
	fieldRoom = "room"
	fieldBody = "body"
	fieldFrom = "from"
	fieldID   = "_id"
)

// MessageIndex is the full-text index of archived bodies. Documents are
// keyed by the archive key so a hit leads straight back to the record.
type MessageIndex struct {
	writer *bluge.Writer
	reader *bluge.Reader
	log    *slog.Logger
}

func OpenMessageIndex(path string, log *slog.Logger) (*MessageIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return &MessageIndex{writer: writer, log: log}, nil
}

// OpenMessageIndexReadOnly opens a snapshot of the index, e.g. next to a
// running bot. It cannot index.
func OpenMessageIndexReadOnly(path string, log *slog.Logger) (*MessageIndex, error) {
	reader, err := bluge.OpenReader(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge reader: %w", err)
	}
	return &MessageIndex{reader: reader, log: log}, nil
}

func (i *MessageIndex) Index(key string, message ArchivedMessage) error {
	if i.writer == nil {
		return fmt.Errorf("index opened read-only")
	}
	doc := bluge.NewDocument(key).
		AddField(bluge.NewKeywordField(fieldRoom, message.Room)).
		AddField(bluge.NewKeywordField(fieldFrom, message.From).StoreValue()).
		AddField(bluge.NewTextField(fieldBody, message.Body))
	return i.writer.Update(doc.ID(), doc)
}

// Search returns one page of archive keys of a room's messages matching
// terms, best match first, with the total number of hits.
func (i *MessageIndex) Search(ctx context.Context, room, terms string, size, page int) ([]string, uint64, error) {
	if strings.TrimSpace(terms) == "" {
		return nil, 0, nil
	}

	reader := i.reader
	if reader == nil {
		r, err := i.writer.Reader()
		if err != nil {
			return nil, 0, err
		}
		defer r.Close()
		reader = r
	}

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(room).SetField(fieldRoom)).
		AddMust(bluge.NewMatchQuery(terms).SetField(fieldBody))
	request := bluge.NewTopNSearch(size, query).SetFrom(page * size).WithStandardAggregations()

	matches, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var keys []string
	match, err := matches.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				keys = append(keys, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, 0, err
	}

	total := matches.Aggregations().Count()
	i.log.Debug("Archive search", "room", room, "terms", terms, "hits", total)
	return keys, total, nil
}

func (i *MessageIndex) Close() error {
	if i.writer != nil {
		return i.writer.Close()
	}
	return i.reader.Close()
}
