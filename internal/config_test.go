package internal

import (
	"testing"
	"time"

	apperrors "muc-bot/errors"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("BOT_JID", "bot@example.org/muc-bot")
	t.Setenv("BOT_PASSWORD", "secret")
	t.Setenv("BOT_NICK", "bender")
	t.Setenv("MUC_JID", "lobby@conference.example.org")
}

func TestLoadConfig_Defaults(t *testing.T) {
	req := require.New(t)
	setRequired(t)

	config, err := LoadConfig()

	req.NoError(err)
	req.Equal("INFO", config.LogLevel)
	req.True(config.Reconnect)
	req.Equal(0, config.ReconnectMaxAttempts)
	req.Equal(time.Second, config.ReconnectBaseDelay)
	req.Equal(2*time.Minute, config.ReconnectMaxDelay)
	req.Equal(5*time.Second, config.SinkTimeout)
	req.Equal("*", config.CharReplacement)
	req.Nil(config.LimitMessages)
	req.Zero(config.HealthPort)
	req.Zero(config.HeartbeatInterval)
}

func TestLoadConfig_Settings(t *testing.T) {
	req := require.New(t)
	setRequired(t)
	t.Setenv("MUC_JID", "lobby@conference.example.org/ignored")

	config, err := LoadConfig()
	req.NoError(err)
	settings, err := config.Settings()

	req.NoError(err)
	req.Equal("bot@example.org/muc-bot", settings.BotIdentity.String())
	req.Equal("lobby@conference.example.org", settings.RoomIdentity.String())
	req.Equal("lobby@conference.example.org/bender", settings.OccupantIdentity().String())
	req.Equal("bender", settings.Nickname)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad bot jid", key: "BOT_JID", value: "@example.org"},
		{name: "bad room jid", key: "MUC_JID", value: "lobby@"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "LOUD"},
		{name: "negative attempts", key: "RECONNECT_MAX_ATTEMPTS", value: "-1"},
		{name: "max below base", key: "RECONNECT_MAX_DELAY", value: "1ms"},
		{name: "two characters", key: "CHARACTER_REPLACEMENT", value: "**"},
		{name: "index without archive", key: "INDEX_PATH", value: "/tmp/muc-bot-index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()

			require.ErrorIs(t, err, apperrors.ErrInvalidSettings)
		})
	}
}

func TestLoadConfig_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("BOT_NICK", "")

	_, err := LoadConfig()

	require.Error(t, err)
}

func TestCharacterRune(t *testing.T) {
	r, err := CharacterRune("#")
	require.NoError(t, err)
	require.Equal(t, '#', r)

	_, err = CharacterRune("")
	require.Error(t, err)
}
