package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlBucket labels a minimum day count threshold
type TomlBucket struct {
	Name    string `toml:"name"`
	MinDays int    `toml:"min_days"`
}

// TomlFeed represents feed configuration
type TomlFeed struct {
	Id          string `toml:"id"`
	DisplayName string `toml:"display_name"`
	Description string `toml:"description"`
	MinDays     int    `toml:"min_days"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	TopLimit int          `toml:"top_limit"`
	Buckets  []TomlBucket `toml:"buckets"`
	Feeds    []TomlFeed   `toml:"feeds"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if config.TopLimit <= 0 {
		config.TopLimit = 60
	}

	return &config, nil
}
