//go:build e2e

package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

// Config points the suite at a real XMPP server and room.
type Config struct {
	BotJID      string `envconfig:"E2E_BOT_JID" required:"true"`
	BotPassword string `envconfig:"E2E_BOT_PASSWORD" required:"true"`
	BotNick     string `envconfig:"E2E_BOT_NICK" default:"muc-bot-e2e"`
	MucJID      string `envconfig:"E2E_MUC_JID" required:"true"`
	// E2E_HEALTH_ADDR is where the in-process health endpoint listens
	HealthAddr string `envconfig:"E2E_HEALTH_ADDR" default:"127.0.0.1:50551"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
