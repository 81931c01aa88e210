package event

import (
	"time"

	"muc-bot/domain"
)

// Event is produced by the session manager and consumed by the dispatcher.
// Implementations are immutable values.
type Event interface {
	RoomID() domain.Identity
}

type Direction int

const (
	Incoming Direction = iota
	Outgoing
)

func (d Direction) String() string {
	if d == Outgoing {
		return "outgoing"
	}
	return "incoming"
}

// Join is emitted each time the bot (re)announces itself to the room.
type Join struct {
	Account domain.Identity
	Channel domain.Identity
}

func (j Join) RoomID() domain.Identity {
	return j.Channel
}

// Message is a chat message observed in, or sent to, the room.
// Timestamp is when the bot received it. SentAt carries the room's stamp on
// history replayed at join and is nil for live traffic.
type Message struct {
	From      domain.Identity
	To        domain.Identity
	Direction Direction
	Body      string
	Timestamp time.Time
	SentAt    *time.Time
}

// Delayed reports replayed room history.
func (m Message) Delayed() bool {
	return m.SentAt != nil
}

func (m Message) RoomID() domain.Identity {
	return m.To
}
