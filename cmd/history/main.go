// Command history prints a room archive written by the bot, newest first.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"muc-bot/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

type Config struct {
	ArchivePath string `envconfig:"ARCHIVE_PATH" required:"true"`
	Room        string `envconfig:"MUC_JID" required:"true"`
	// HISTORY_LIMIT is the page size, HISTORY_CURSOR the key of the last row
	// of the previous page.
	Limit  int    `envconfig:"HISTORY_LIMIT" default:"50"`
	Cursor string `envconfig:"HISTORY_CURSOR"`
	// HISTORY_QUERY switches to a full-text search over INDEX_PATH.
	IndexPath string `envconfig:"INDEX_PATH"`
	Query     string `envconfig:"HISTORY_QUERY"`
	Page      int    `envconfig:"HISTORY_PAGE" default:"0"`
	Colours   bool   `envconfig:"HISTORY_COLOURS" default:"true"`
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}
	room, _, _ := strings.Cut(config.Room, "/")

	db, err := openDB(config.ArchivePath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	repository := repositories.NewMessageRepository(db, logger, lo.ToPtr(config.Limit))

	var messages []repositories.ArchivedMessage
	var footer string
	if config.Query != "" {
		index, err := repositories.OpenMessageIndexReadOnly(config.IndexPath, logger)
		if err != nil {
			log.Fatal(err)
		}
		defer index.Close()

		var total uint64
		messages, total, err = repository.WithIndex(index).
			SearchPaginated(context.Background(), config.Query, room, config.Page)
		if err != nil {
			log.Fatal(err)
		}
		footer = fmt.Sprintf("%d match(es), page %d", total, config.Page)
	} else {
		var next *string
		messages, next, err = repository.GetMessages(room, lo.EmptyableToPtr(config.Cursor))
		if err != nil {
			log.Fatal(err)
		}
		if next != nil {
			footer = "next page: HISTORY_CURSOR=" + *next
		}
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"At", "Direction", "From", "Lang", "Censored", "Body"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.AppendBulk(lo.Map(messages, func(m repositories.ArchivedMessage, _ int) []string {
		return toRow(m, config.Colours)
	}))
	table.Render()

	if footer != "" {
		fmt.Printf("\n%s\n", footer)
	}
}

func toRow(m repositories.ArchivedMessage, colours bool) []string {
	direction := m.Direction
	if colours {
		direction = lo.Ternary(direction == "outgoing", color.Cyan, color.Green).Sprint(direction)
	}
	return []string{
		m.At.Local().Format("2006-01-02 15:04:05"),
		direction,
		m.From,
		m.Lang,
		strings.Join(lo.Uniq(m.CensoredWords), ","),
		m.Body,
	}
}

// openDB opens the archive read-only, next to a running bot.
func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
