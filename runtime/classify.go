package runtime

import (
	"time"

	"muc-bot/domain/event"
	"muc-bot/domain/stanza"
)

// Classify turns a decoded chat message into a room Message event.
// Only group chat messages with a body qualify. The result depends on msg and
// now only: now is the receive time, a delayed-delivery stamp goes to SentAt.
func Classify(msg stanza.ChatMessage, now time.Time) (event.Message, bool) {
	if msg.Type != stanza.GroupChatMessage {
		return event.Message{}, false
	}
	body, ok := msg.BestBody()
	if !ok {
		return event.Message{}, false
	}

	var sentAt *time.Time
	if msg.Delay != nil {
		stamp := msg.Delay.In(now.Location())
		sentAt = &stamp
	}

	return event.Message{
		From:      msg.From,
		To:        msg.From.Bare(),
		Direction: event.Incoming,
		Body:      body,
		Timestamp: now,
		SentAt:    sentAt,
	}, true
}
