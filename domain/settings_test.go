package domain

import (
	"testing"

	apperrors "muc-bot/errors"

	"github.com/stretchr/testify/require"
)

func TestNewSettings_BuildsOccupant(t *testing.T) {
	req := require.New(t)
	bot := MustParseIdentity("bot@example.org")
	room := MustParseIdentity("lobby@conference.example.org/ignored")

	settings, err := NewSettings(bot, "secret", "bender", room)
	req.NoError(err)

	// The room is kept bare, the occupant carries the nickname
	req.Equal("lobby@conference.example.org", settings.RoomIdentity.String())
	req.Equal("lobby@conference.example.org/bender", settings.OccupantIdentity().String())
	req.Equal(bot, settings.BotIdentity)
	req.Equal("secret", settings.Credential)
	req.Equal("bender", settings.Nickname)
}

func TestNewSettings_Invalid(t *testing.T) {
	bot := MustParseIdentity("bot@example.org")
	room := MustParseIdentity("lobby@conference.example.org")

	tests := []struct {
		name       string
		bot        Identity
		credential string
		nickname   string
		room       Identity
	}{
		{name: "missing bot", credential: "secret", nickname: "bender", room: room},
		{name: "bot without localpart", bot: MustParseIdentity("example.org"), credential: "secret", nickname: "bender", room: room},
		{name: "empty credential", bot: bot, nickname: "bender", room: room},
		{name: "empty nickname", bot: bot, credential: "secret", room: room},
		{name: "missing room", bot: bot, credential: "secret", nickname: "bender"},
		{name: "room without localpart", bot: bot, credential: "secret", nickname: "bender", room: MustParseIdentity("conference.example.org")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSettings(tt.bot, tt.credential, tt.nickname, tt.room)
			require.ErrorIs(t, err, apperrors.ErrInvalidSettings)
		})
	}
}
