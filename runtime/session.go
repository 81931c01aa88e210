package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"muc-bot/contract"
	"muc-bot/domain"
	"muc-bot/domain/event"
	"muc-bot/domain/stanza"
	apperrors "muc-bot/errors"
)

var _ contract.Worker = (*SessionManager)(nil)

// SessionManager owns the transport: it announces presence on every
// (re)connection and turns inbound stanzas into events, in wire order.
// It never redials itself; the transport reconnects and reports it.
type SessionManager struct {
	log       *slog.Logger
	settings  domain.Settings
	transport contract.Transport
	events    contract.EventPublisher
	listeners []contract.StateListener
	now       func() time.Time
	state     domain.ConnectionState
}

func NewSessionManager(log *slog.Logger, settings domain.Settings,
	transport contract.Transport, events contract.EventPublisher,
	listeners ...contract.StateListener) *SessionManager {
	return &SessionManager{
		log:       log,
		settings:  settings,
		transport: transport,
		events:    events,
		listeners: listeners,
		now:       time.Now,
		state:     domain.StateDisconnected(),
	}
}

// WithClock replaces the receive-time clock.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

func (m *SessionManager) State() domain.ConnectionState {
	return m.state
}

// Run processes transport items until a terminal disconnection, the end of
// the item stream, or ctx cancellation. The event publisher is closed on
// the way out so the consumer terminates cleanly.
func (m *SessionManager) Run(ctx context.Context) error {
	err := m.loop(ctx)
	m.setState(domain.StateDisconnected())
	m.events.Close()
	return err
}

func (m *SessionManager) loop(ctx context.Context) error {
	m.setState(domain.StateConnecting())
	for {
		item, err := m.transport.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				m.log.Info("xmpp: session stopped")
				return ctx.Err()
			}
			if errors.Is(err, apperrors.ErrTransportClosed) {
				m.log.Info("xmpp: stream ended")
			} else {
				m.log.Error("xmpp: receive failed", "error", err)
			}
			return nil
		}

		switch it := item.(type) {
		case stanza.Online:
			m.onOnline(ctx, it)
		case stanza.Reconnecting:
			m.log.Warn("xmpp: connection lost, reconnecting", "attempt", it.Attempt, "error", it.Cause)
			m.setState(domain.StateReconnecting())
		case stanza.Disconnected:
			m.log.Error("xmpp: disconnected", "error", it.Cause)
			return nil
		case stanza.ChatMessage:
			if msg, ok := Classify(it, m.now()); ok {
				m.events.Publish(msg)
			}
		case stanza.Other:
			m.log.Debug("xmpp: recv stanza", "name", it.Name)
		}
	}
}

func (m *SessionManager) onOnline(ctx context.Context, online stanza.Online) {
	m.log.Info("xmpp: connected", "bound_jid", online.Bound, "resumed", online.Resumed)
	m.setState(domain.StateOnline(online.Bound))

	presence := stanza.NewJoinPresence(online.Bound, m.settings.OccupantIdentity())
	if err := m.transport.Send(ctx, presence); err != nil {
		m.log.Error("xmpp: cannot send stanza", "to", presence.To, "error", err)
	}

	m.events.Publish(event.Join{Account: online.Bound, Channel: m.settings.RoomIdentity})
	m.log.Info("xmpp: joined", "room", m.settings.RoomIdentity, "nick", m.settings.Nickname)
}

func (m *SessionManager) setState(state domain.ConnectionState) {
	if state == m.state {
		return
	}
	m.log.Debug("xmpp: connection state", "from", m.state, "to", state)
	m.state = state
	for _, l := range m.listeners {
		l.OnStateChange(state)
	}
}
