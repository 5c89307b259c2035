// Package config loads webarchive's on-disk configuration file.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Extract holds the defaults applied to the `extract` command when the
// matching flag isn't given explicitly on the command line.
type Extract struct {
	IgnoreJavaScript bool   `mapstructure:"ignore_javascript"`
	OutputDir        string `mapstructure:"output_dir"`
}

// Config is the top-level shape of $HOME/.config/webarchive/config.yaml.
type Config struct {
	Extract Extract `mapstructure:"extract"`
}

func (c *Config) verify() error {
	if c.Extract.OutputDir == "." {
		return fmt.Errorf("config: extract.output_dir must not be the current directory")
	}
	return nil
}

// LoadConfig loads the configuration file already read by viper (see
// cmd/webarchive/cmd/root.go's initConfig) and verifies it.
func LoadConfig() (*Config, error) {
	var c Config

	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %v", err)
	}

	if err := c.verify(); err != nil {
		return nil, fmt.Errorf("config: failed to verify: %v", err)
	}

	return &c, nil
}
