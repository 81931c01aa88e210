// Package stanza is the closed set of values crossing the transport boundary.
// Inbound wire data is decoded once into an Item; outbound stanzas are built
// as complete values before being handed to the transport.
package stanza

import (
	"time"

	"muc-bot/domain"
)

// Item is either a lifecycle notification or a decoded stanza.
type Item interface {
	item()
}

// Online is delivered after every successful (re)connection.
type Online struct {
	Bound   domain.Identity
	Resumed bool
}

// Reconnecting is delivered when the stream was lost and the transport is
// about to redial. It is not terminal.
type Reconnecting struct {
	Cause   error
	Attempt int
}

// Disconnected is terminal: no item follows it.
type Disconnected struct {
	Cause error
}

type MessageType string

const (
	NormalMessage    MessageType = "normal"
	ChatMessageType  MessageType = "chat"
	GroupChatMessage MessageType = "groupchat"
	HeadlineMessage  MessageType = "headline"
	ErrorMessage     MessageType = "error"
)

type Body struct {
	Lang string
	Text string
}

type ChatMessage struct {
	ID     string
	From   domain.Identity
	To     domain.Identity
	Type   MessageType
	Lang   string
	Bodies []Body
	// Delay is the delayed-delivery stamp, nil for live messages.
	Delay *time.Time
}

// Other is any stanza that is not a message (presence, iq, ...).
type Other struct {
	Name string
}

func (Online) item()       {}
func (Reconnecting) item() {}
func (Disconnected) item() {}
func (ChatMessage) item()  {}
func (Other) item()        {}

// BestBody picks the body without a language tag, then the one matching the
// stanza default language, then the first one.
func (m ChatMessage) BestBody() (string, bool) {
	if len(m.Bodies) == 0 {
		return "", false
	}
	for _, b := range m.Bodies {
		if b.Lang == "" {
			return b.Text, true
		}
	}
	if m.Lang != "" {
		for _, b := range m.Bodies {
			if b.Lang == m.Lang {
				return b.Text, true
			}
		}
	}
	return m.Bodies[0].Text, true
}

// Outbound is a stanza the transport can send.
type Outbound interface {
	outbound()
}

type PresenceType string

// AvailablePresence is the neutral type: no type attribute on the wire.
const (
	AvailablePresence   PresenceType = ""
	UnavailablePresence PresenceType = "unavailable"
)

// MUCJoin is the room-join extension payload.
type MUCJoin struct{}

type Presence struct {
	From domain.Identity
	To   domain.Identity
	Type PresenceType
	Join *MUCJoin
}

func (Presence) outbound() {}

// NewJoinPresence builds the available presence that joins the room as occupant.
func NewJoinPresence(from, occupant domain.Identity) Presence {
	return Presence{
		From: from,
		To:   occupant,
		Type: AvailablePresence,
		Join: &MUCJoin{},
	}
}
