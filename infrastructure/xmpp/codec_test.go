package xmpp

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"muc-bot/domain"
	"muc-bot/domain/stanza"

	"github.com/stretchr/testify/require"
	"mellium.im/xmlstream"
)

// decode pops the start of the first element of raw and hands over the
// rest as a separate reader ending at its close, as a session handler gets it.
func decode(t *testing.T, raw string) (stanza.Item, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	tok, err := d.Token()
	require.NoError(t, err)
	start, ok := tok.(xml.StartElement)
	require.True(t, ok)
	return decodeStanza(xmlstream.InnerElement(d), &start)
}

func TestDecodeStanza_GroupChat(t *testing.T) {
	req := require.New(t)
	raw := `<message xmlns='jabber:client' id='m1' type='groupchat' xml:lang='fr'
		from='lobby@conference.example.org/alice' to='bot@example.org/r'>
		<body xml:lang='en'>hello</body>
		<body>salut</body>
	</message>`

	item, err := decode(t, raw)

	req.NoError(err)
	req.Equal(stanza.ChatMessage{
		ID:   "m1",
		From: domain.MustParseIdentity("lobby@conference.example.org/alice"),
		To:   domain.MustParseIdentity("bot@example.org/r"),
		Type: stanza.GroupChatMessage,
		Lang: "fr",
		Bodies: []stanza.Body{
			{Lang: "en", Text: "hello"},
			{Text: "salut"},
		},
	}, item)
}

func TestDecodeStanza_DelayedHistory(t *testing.T) {
	req := require.New(t)
	raw := `<message xmlns='jabber:client' type='groupchat' from='lobby@conference.example.org/bob'>
		<body>old</body>
		<delay xmlns='urn:xmpp:delay' from='lobby@conference.example.org' stamp='2026-02-28T10:00:00Z'/>
	</message>`

	item, err := decode(t, raw)

	req.NoError(err)
	msg, ok := item.(stanza.ChatMessage)
	req.True(ok)
	req.NotNil(msg.Delay)
	req.True(time.Date(2026, 2, 28, 10, 0, 0, 0, time.UTC).Equal(*msg.Delay))
}

func TestDecodeStanza_UnreadableStampKeepsMessage(t *testing.T) {
	req := require.New(t)
	raw := `<message xmlns='jabber:client' type='groupchat' from='lobby@conference.example.org/alice'>
		<body>bender: ping</body>
		<delay xmlns='urn:xmpp:delay' stamp='yesterday'/>
	</message>`

	item, err := decode(t, raw)

	req.NoError(err)
	msg, ok := item.(stanza.ChatMessage)
	req.True(ok)
	req.Nil(msg.Delay)
	req.Equal([]stanza.Body{{Text: "bender: ping"}}, msg.Bodies)
}

func TestDecodeStanza_DefaultsToNormal(t *testing.T) {
	item, err := decode(t, `<message xmlns='jabber:client' from='alice@example.org'><body>hi</body></message>`)

	require.NoError(t, err)
	require.Equal(t, stanza.NormalMessage, item.(stanza.ChatMessage).Type)
}

func TestDecodeStanza_OtherStanzas(t *testing.T) {
	item, err := decode(t, `<presence xmlns='jabber:client' from='lobby@conference.example.org/alice'/>`)

	require.NoError(t, err)
	require.Equal(t, stanza.Other{Name: "presence"}, item)
}

func TestDecodeStanza_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "bad sender", raw: `<message xmlns='jabber:client' from='alice@' type='groupchat'><body>x</body></message>`},
		{name: "bad recipient", raw: `<message xmlns='jabber:client' to='@example.org' type='groupchat'><body>x</body></message>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(t, tt.raw)
			require.Error(t, err)
		})
	}
}

func TestEncodePresence_Join(t *testing.T) {
	req := require.New(t)
	presence := stanza.NewJoinPresence(
		domain.MustParseIdentity("bot@example.org/r"),
		domain.MustParseIdentity("lobby@conference.example.org/bender"),
	)

	r, err := encodePresence(presence)
	req.NoError(err)

	var out strings.Builder
	e := xml.NewEncoder(&out)
	_, err = xmlstream.Copy(e, r)
	req.NoError(err)
	req.NoError(e.Flush())

	req.Contains(out.String(), "<presence")
	req.Contains(out.String(), `to="lobby@conference.example.org/bender"`)
	req.Contains(out.String(), `from="bot@example.org/r"`)
	req.Contains(out.String(), `<x xmlns="http://jabber.org/protocol/muc">`)
}
