package domain

import (
	"fmt"

	apperrors "muc-bot/errors"
)

// Settings is the bot identity and target room. Built once at startup by
// NewSettings and shared read-only afterwards.
type Settings struct {
	BotIdentity  Identity
	Credential   string
	Nickname     string
	RoomIdentity Identity
	occupant     Identity
}

// NewSettings requires every field to be set and both addresses to have
// a localpart. room/nickname must itself be a valid address.
// The room is reduced to its bare form.
func NewSettings(bot Identity, credential, nickname string, room Identity) (Settings, error) {
	switch {
	case bot.IsZero() || bot.Localpart() == "":
		return Settings{}, fmt.Errorf("%w: bot identity %q needs the form name@example.org", apperrors.ErrInvalidSettings, bot)
	case credential == "":
		return Settings{}, fmt.Errorf("%w: empty credential", apperrors.ErrInvalidSettings)
	case nickname == "":
		return Settings{}, fmt.Errorf("%w: empty nickname", apperrors.ErrInvalidSettings)
	case room.IsZero() || room.Localpart() == "":
		return Settings{}, fmt.Errorf("%w: room identity %q needs the form room@conference.example.org", apperrors.ErrInvalidSettings, room)
	}

	room = room.Bare()
	occupant, err := room.WithResource(nickname)
	if err != nil {
		return Settings{}, fmt.Errorf("%w: nickname %q: %w", apperrors.ErrInvalidSettings, nickname, err)
	}
	return Settings{
		BotIdentity:  bot,
		Credential:   credential,
		Nickname:     nickname,
		RoomIdentity: room,
		occupant:     occupant,
	}, nil
}

// OccupantIdentity is the room-scoped address of the bot: room/nickname.
func (s Settings) OccupantIdentity() Identity {
	return s.occupant
}
