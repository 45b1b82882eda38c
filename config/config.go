package config

import (
	"time"

	"github.com/pitabwire/frame/config"
)

// AssistantConfig holds configuration for the assistant service.
type AssistantConfig struct {
	config.ConfigurationDefault
	FlowDir       string `envDefault:"./flows" env:"FLOW_DIR"`
	FlowHotReload bool   `envDefault:"true"    env:"FLOW_HOT_RELOAD"`
	SessionTTLMin int    `envDefault:"720"     env:"SESSION_TTL_MIN"`
}

// SessionTTL returns the widget session time-to-live.
func (c *AssistantConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}
