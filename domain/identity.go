// Package domain contains core concepts of the chat bot.
// This file defines Identity, the handle of a protocol participant or room.
// No runtime, network, or logging logic should be added here.
package domain

import (
	"fmt"
	"log/slog"

	apperrors "muc-bot/errors"

	"mellium.im/xmpp/jid"
)

// Identity is an immutable, comparable XMPP address.
// It holds the normalized string form so that == is value equality.
type Identity struct {
	value string
}

// ParseIdentity validates and normalizes s (local@domain[/resource]).
func ParseIdentity(s string) (Identity, error) {
	j, err := jid.Parse(s)
	if err != nil {
		return Identity{}, fmt.Errorf("%w %q: %v", apperrors.ErrInvalidIdentity, s, err)
	}
	return NewIdentity(j), nil
}

// MustParseIdentity is ParseIdentity for literals known to be valid.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func NewIdentity(j jid.JID) Identity {
	return Identity{value: j.String()}
}

func (i Identity) String() string { return i.value }

// MarshalText renders the address, so log handlers and encoders print it
// instead of an empty object.
func (i Identity) MarshalText() ([]byte, error) { return []byte(i.value), nil }

func (i Identity) LogValue() slog.Value { return slog.StringValue(i.value) }

func (i Identity) IsZero() bool { return i.value == "" }

func (i Identity) Equal(other Identity) bool { return i.value == other.value }

// JID returns the library form of the address. The zero Identity maps to the zero JID.
func (i Identity) JID() jid.JID {
	if i.IsZero() {
		return jid.JID{}
	}
	return jid.MustParse(i.value)
}

func (i Identity) Localpart() string {
	if i.IsZero() {
		return ""
	}
	return i.JID().Localpart()
}

func (i Identity) Domainpart() string {
	if i.IsZero() {
		return ""
	}
	return i.JID().Domainpart()
}

func (i Identity) Resourcepart() string {
	if i.IsZero() {
		return ""
	}
	return i.JID().Resourcepart()
}

// Bare strips the resource.
func (i Identity) Bare() Identity {
	if i.IsZero() {
		return i
	}
	return NewIdentity(i.JID().Bare())
}

// WithResource returns the bare address qualified by resource,
// e.g. room@conference.example.org/nickname.
func (i Identity) WithResource(resource string) (Identity, error) {
	if i.IsZero() {
		return Identity{}, fmt.Errorf("%w: empty address", apperrors.ErrInvalidIdentity)
	}
	j, err := i.JID().Bare().WithResource(resource)
	if err != nil {
		return Identity{}, fmt.Errorf("%w %s/%s: %v", apperrors.ErrInvalidIdentity, i.value, resource, err)
	}
	return NewIdentity(j), nil
}
