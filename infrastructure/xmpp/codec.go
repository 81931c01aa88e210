package xmpp

import (
	"encoding/xml"
	"fmt"
	"time"

	"muc-bot/domain"
	"muc-bot/domain/stanza"

	"mellium.im/xmlstream"
	"mellium.im/xmpp/jid"
	"mellium.im/xmpp/muc"
	xmppstanza "mellium.im/xmpp/stanza"
)

const delayNS = "urn:xmpp:delay"

type wireBody struct {
	Lang string `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Text string `xml:",chardata"`
}

// wireDelay is the delayed-delivery stamp rooms put on replayed history.
type wireDelay struct {
	Stamp string `xml:"stamp,attr"`
}

type wireMessage struct {
	XMLName xml.Name   `xml:"message"`
	ID      string     `xml:"id,attr"`
	From    string     `xml:"from,attr"`
	To      string     `xml:"to,attr"`
	Type    string     `xml:"type,attr"`
	Lang    string     `xml:"http://www.w3.org/XML/1998/namespace lang,attr"`
	Bodies  []wireBody `xml:"body"`
	Delay   *wireDelay `xml:"urn:xmpp:delay delay"`
}

// decodeStanza turns a top level element into an Item. r yields the
// element's content and its end token, start has already been consumed.
// Only messages are decoded, anything else comes back as Other without
// reading its content.
func decodeStanza(r xml.TokenReader, start *xml.StartElement) (stanza.Item, error) {
	if start.Name.Local != "message" {
		return stanza.Other{Name: start.Name.Local}, nil
	}

	var wire wireMessage
	element := xmlstream.MultiReader(xmlstream.Token(start.Copy()), r)
	if err := xml.NewTokenDecoder(element).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decoding message: %w", err)
	}

	msg := stanza.ChatMessage{
		ID:   wire.ID,
		Type: stanza.MessageType(wire.Type),
		Lang: wire.Lang,
	}
	if msg.Type == "" {
		msg.Type = stanza.NormalMessage
	}

	var err error
	if msg.From, err = parseOptional(wire.From); err != nil {
		return nil, fmt.Errorf("message from: %w", err)
	}
	if msg.To, err = parseOptional(wire.To); err != nil {
		return nil, fmt.Errorf("message to: %w", err)
	}

	for _, b := range wire.Bodies {
		msg.Bodies = append(msg.Bodies, stanza.Body{Lang: b.Lang, Text: b.Text})
	}

	// An unreadable stamp leaves the message undelayed.
	if wire.Delay != nil {
		if stamp, err := time.Parse(time.RFC3339, wire.Delay.Stamp); err == nil {
			msg.Delay = &stamp
		}
	}
	return msg, nil
}

func parseOptional(s string) (domain.Identity, error) {
	if s == "" {
		return domain.Identity{}, nil
	}
	return domain.ParseIdentity(s)
}

// encodePresence renders a presence, with the MUC join payload when asked.
func encodePresence(p stanza.Presence) (xml.TokenReader, error) {
	wire := xmppstanza.Presence{Type: xmppstanza.PresenceType(p.Type)}
	var err error
	if wire.To, err = toJID(p.To); err != nil {
		return nil, err
	}
	if wire.From, err = toJID(p.From); err != nil {
		return nil, err
	}

	var payload xml.TokenReader
	if p.Join != nil {
		payload = xmlstream.Wrap(nil, xml.StartElement{Name: xml.Name{Space: muc.NS, Local: "x"}})
	}
	return wire.Wrap(payload), nil
}

func toJID(i domain.Identity) (jid.JID, error) {
	if i.IsZero() {
		return jid.JID{}, nil
	}
	return jid.Parse(i.String())
}
