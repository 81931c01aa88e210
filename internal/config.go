package internal

import (
	"fmt"
	"time"

	"muc-bot/domain"
	apperrors "muc-bot/errors"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	BotJID      string `env:"BOT_JID,required=true" validate:"required,jid"`
	BotPassword string `env:"BOT_PASSWORD,required=true" validate:"required"`
	BotNick     string `env:"BOT_NICK,required=true" validate:"required"`
	MucJID      string `env:"MUC_JID,required=true" validate:"required,jid"`
	LogLevel    string `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR"`

	Reconnect            bool          `env:"RECONNECT,default=true"`
	ReconnectMaxAttempts int           `env:"RECONNECT_MAX_ATTEMPTS,default=0" validate:"gte=0"`
	ReconnectBaseDelay   time.Duration `env:"RECONNECT_BASE_DELAY,default=1s" validate:"gt=0"`
	ReconnectMaxDelay    time.Duration `env:"RECONNECT_MAX_DELAY,default=2m" validate:"gtefield=ReconnectBaseDelay"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,default=5s" validate:"gt=0"`

	ArchivePath     string `env:"ARCHIVE_PATH"`
	IndexPath       string `env:"INDEX_PATH" validate:"excluded_without=ArchivePath"`
	LimitMessages   *int   `env:"LIMIT_MESSAGES" validate:"omitempty,gt=0"`
	CensoredDir     string `env:"CENSORED_DIR"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	HealthPort        int           `env:"HEALTH_PORT,default=0" validate:"gte=0,lte=65535"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=0s" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("jid", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseIdentity(fl.Field().String())
		return err == nil
	})
	return v
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validate.Struct(config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidSettings, err)
	}
	if _, err := CharacterRune(config.CharReplacement); err != nil {
		return Config{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidSettings, err)
	}
	return config, nil
}

// Settings builds the immutable session settings.
func (c Config) Settings() (domain.Settings, error) {
	bot, err := domain.ParseIdentity(c.BotJID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("BOT_JID: %w", err)
	}
	room, err := domain.ParseIdentity(c.MucJID)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("MUC_JID: %w", err)
	}
	return domain.NewSettings(bot, c.BotPassword, c.BotNick, room)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
