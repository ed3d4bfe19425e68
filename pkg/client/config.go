package client

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/julian-ornelas/ai-open-source-prework/pkg/shared"
)

// Config carries everything the client needs that isn't server
// state. Zero values are filled in by applyDefaults, so a partial
// YAML file (or none at all) works.
type Config struct {
	Addr     string `yaml:"addr"`
	Protocol string `yaml:"protocol"`
	Username string `yaml:"username"`

	WindowTitle  string  `yaml:"windowTitle"`
	WindowWidth  float64 `yaml:"windowWidth"`
	WindowHeight float64 `yaml:"windowHeight"`

	WorldImage  string  `yaml:"worldImage"`
	WorldWidth  float64 `yaml:"worldWidth"`
	WorldHeight float64 `yaml:"worldHeight"`

	// SpriteSize is the unzoomed on-screen height of an avatar in
	// pixels; width follows the source aspect ratio.
	SpriteSize float64 `yaml:"spriteSize"`

	SendPeriod     time.Duration `yaml:"sendPeriod"`
	ReconnectDelay time.Duration `yaml:"reconnectDelay"`
	PingPeriod     time.Duration `yaml:"pingPeriod"`

	LogLevel string `yaml:"logLevel"`
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads a YAML config file. A missing path returns the
// defaults rather than an error so the client runs with flags alone.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				cfg.applyDefaults()
				return cfg, nil
			}
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:8080"
	}
	if c.Protocol == "" {
		c.Protocol = shared.ProtocolWS
	}
	if c.WindowTitle == "" {
		c.WindowTitle = "meadow"
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = 800
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = 600
	}
	if c.WorldWidth <= 0 {
		c.WorldWidth = 2048
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = 2048
	}
	if c.SpriteSize <= 0 {
		c.SpriteSize = 64
	}
	if c.SendPeriod <= 0 {
		c.SendPeriod = defaultSendPeriod
	}
	if c.ReconnectDelay <= 0 {
		c.ReconnectDelay = 3 * time.Second
	}
	if c.PingPeriod <= 0 {
		c.PingPeriod = 10 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
