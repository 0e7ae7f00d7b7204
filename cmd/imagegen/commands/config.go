package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// cliConfig holds the settings shared by every command.
type cliConfig struct {
	Endpoint  string        `mapstructure:"endpoint"`
	ClientKey string        `mapstructure:"client-key"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Debug     bool          `mapstructure:"debug"`
}

// loadConfig merges flags, IMAGEGEN_* environment variables and an optional
// imagegen.yaml from the working directory or $HOME/.imagegen.
func loadConfig(v *viper.Viper) (*cliConfig, error) {
	v.SetDefault("endpoint", "http://localhost:8080")
	v.SetDefault("client-key", "")
	v.SetDefault("timeout", 0)
	v.SetDefault("debug", false)

	// IMAGEGEN_ENDPOINT, IMAGEGEN_CLIENT_KEY, ...
	v.SetEnvPrefix("IMAGEGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("imagegen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.imagegen")
	_ = v.ReadInConfig()

	var cfg cliConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.ClientKey = strings.TrimSpace(cfg.ClientKey)
	return &cfg, nil
}

func (c *cliConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}
