package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_GATEWAY_URL points to a running gateway, e.g. ws://localhost:8080/ws.
	// The suite is skipped when it is empty.
	GatewayURL string `envconfig:"E2E_GATEWAY_URL"`
	// E2E_TOKEN / E2E_CHANNEL_ID come from the seed tool's output.
	Token     string `envconfig:"E2E_TOKEN"`
	ChannelID string `envconfig:"E2E_CHANNEL_ID"`
	// E2E_DEBUG_JSON allows dumping full websocket frame bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
