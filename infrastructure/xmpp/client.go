// Package xmpp is the transport adapter: it owns the XMPP client session,
// turns inbound stanzas into stanza.Item values and redials lost streams.
package xmpp

import (
	"context"
	"crypto/tls"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"muc-bot/contract"
	"muc-bot/domain"
	"muc-bot/domain/stanza"
	apperrors "muc-bot/errors"

	"github.com/cenkalti/backoff/v4"
	"mellium.im/sasl"
	"mellium.im/xmlstream"
	mxmpp "mellium.im/xmpp"
)

var _ contract.Transport = (*Client)(nil)

var errStreamClosed = errors.New("stream closed by server")

type Options struct {
	Settings domain.Settings
	// Reconnect redials lost streams. When false the first loss is terminal.
	Reconnect bool
	// MaxAttempts bounds consecutive failed redials, 0 means unlimited.
	MaxAttempts int
	// Backoff spaces redials, NewBackoff(1s, 2m) when nil.
	Backoff backoff.BackOff
	// TLSConfig defaults to the account domain as server name.
	TLSConfig *tls.Config
}

type dialFunc func(ctx context.Context) (*mxmpp.Session, error)

// Client is a contract.Transport over a mellium session.
type Client struct {
	log       *slog.Logger
	opts      Options
	dial      dialFunc
	items     chan stanza.Item
	session   atomic.Pointer[mxmpp.Session]
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Dial opens the first session. Its failure is fatal and returned as is,
// later losses are reported as items.
func Dial(ctx context.Context, log *slog.Logger, opts Options) (*Client, error) {
	c := &Client{
		log:   log,
		opts:  opts,
		items: make(chan stanza.Item),
		done:  make(chan struct{}),
	}
	c.dial = c.dialSession

	session, err := c.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting as %s: %w", opts.Settings.BotIdentity, err)
	}

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx, session)
	return c, nil
}

func (c *Client) dialSession(ctx context.Context) (*mxmpp.Session, error) {
	addr := c.opts.Settings.BotIdentity.JID()
	tlsConfig := c.opts.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: addr.Domainpart(), MinVersion: tls.VersionTLS12}
	}
	return mxmpp.DialClientSession(ctx, addr,
		mxmpp.StartTLS(tlsConfig),
		mxmpp.SASL("", c.opts.Settings.Credential,
			sasl.ScramSha256Plus, sasl.ScramSha256,
			sasl.ScramSha1Plus, sasl.ScramSha1,
			sasl.Plain),
		mxmpp.BindResource(),
	)
}

// run serves sessions one after the other until the stream is lost for good.
func (c *Client) run(ctx context.Context, session *mxmpp.Session) {
	defer close(c.done)
	defer close(c.items)

	for {
		cause := c.serve(ctx, session)
		if ctx.Err() != nil {
			return
		}
		if !c.opts.Reconnect {
			c.push(ctx, stanza.Disconnected{Cause: cause})
			return
		}
		if session = c.redial(ctx, cause); session == nil {
			return
		}
	}
}

// serve announces the session and blocks until its stream ends.
func (c *Client) serve(ctx context.Context, session *mxmpp.Session) error {
	c.session.Store(session)
	defer func() {
		c.session.Store(nil)
		_ = session.Close()
	}()

	bound := domain.NewIdentity(session.LocalAddr())
	c.log.Info("Stream negotiated", "bound", bound)
	if !c.push(ctx, stanza.Online{Bound: bound}) {
		return ctx.Err()
	}

	err := session.Serve(mxmpp.HandlerFunc(func(t xmlstream.TokenReadEncoder, start *xml.StartElement) error {
		item, err := decodeStanza(t, start)
		if err != nil {
			c.log.Debug("Ignoring malformed stanza", "name", start.Name.Local, "error", err)
			return nil
		}
		c.push(ctx, item)
		return nil
	}))
	if err == nil {
		err = errStreamClosed
	}
	return err
}

// redial retries along the backoff policy, nil when giving up.
func (c *Client) redial(ctx context.Context, cause error) *mxmpp.Session {
	policy := c.redialPolicy(ctx)
	for attempt := 1; ; attempt++ {
		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			if ctx.Err() == nil {
				c.push(ctx, stanza.Disconnected{
					Cause: fmt.Errorf("giving up after %d attempts: %w", attempt-1, cause),
				})
			}
			return nil
		}
		if !c.push(ctx, stanza.Reconnecting{Cause: cause, Attempt: attempt}) {
			return nil
		}

		c.log.Warn("Stream lost, redialing", "attempt", attempt, "in", wait, "cause", cause)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		session, err := c.dial(ctx)
		if err == nil {
			return session
		}
		cause = err
	}
}

func (c *Client) push(ctx context.Context, item stanza.Item) bool {
	select {
	case c.items <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) Receive(ctx context.Context) (stanza.Item, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case item, ok := <-c.items:
		if !ok {
			return nil, apperrors.ErrTransportClosed
		}
		return item, nil
	}
}

func (c *Client) Send(ctx context.Context, out stanza.Outbound) error {
	session := c.session.Load()
	if session == nil {
		return apperrors.ErrNotConnected
	}
	switch o := out.(type) {
	case stanza.Presence:
		r, err := encodePresence(o)
		if err != nil {
			return err
		}
		return session.Send(ctx, r)
	default:
		return fmt.Errorf("unsupported outbound stanza %T", out)
	}
}

// Close ends the live session and waits for the serve loop to stop.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if session := c.session.Load(); session != nil {
			_ = session.Close()
			if conn, ok := any(session.Conn()).(io.Closer); ok {
				_ = conn.Close()
			}
		}
	})
	<-c.done
	return nil
}
