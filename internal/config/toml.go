// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// APIKeyEnv names the environment variable holding the bearer token.
const APIKeyEnv = "STABILITY_API_KEY"

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Generation   GenerationConfig   `toml:"generation"`
	Selection    SelectionConfig    `toml:"selection"`
	Presentation PresentationConfig `toml:"presentation"`
	Output       OutputConfig       `toml:"output"`
}

// GenerationConfig maps image service settings.
type GenerationConfig struct {
	Endpoint    *string  `toml:"endpoint"`
	APIKey      *string  `toml:"api-key"`
	Images      *int     `toml:"images"`
	Timeout     *string  `toml:"timeout"`
	Width       *int     `toml:"width"`
	Height      *int     `toml:"height"`
	Steps       *int     `toml:"steps"`
	CfgScale    *float64 `toml:"cfg-scale"`
	CacheTTL    *string  `toml:"cache-ttl"`
	MinInterval *string  `toml:"min-interval"`
}

// SelectionConfig maps word selection settings.
type SelectionConfig struct {
	ButtonsPerStep *int  `toml:"buttons-per-step"`
	Secondary      *bool `toml:"secondary-language"`
}

// PresentationConfig maps the waiting sequence settings.
type PresentationConfig struct {
	Frames   *int    `toml:"frames"`
	Interval *string `toml:"interval"`
}

// OutputConfig maps where illustrations are written.
type OutputConfig struct {
	Dir *string `toml:"dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validateDurations(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// ParseDuration parses an optional duration value. Nil yields ok=false.
func ParseDuration(key string, value *string) (time.Duration, bool, error) {
	if value == nil {
		return 0, false, nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s %q: %w", key, *value, err)
	}
	return d, true, nil
}

func (c FileConfig) validateDurations() error {
	fields := map[string]*string{
		"generation.timeout":      c.Generation.Timeout,
		"generation.cache-ttl":    c.Generation.CacheTTL,
		"generation.min-interval": c.Generation.MinInterval,
		"presentation.interval":   c.Presentation.Interval,
	}
	for key, value := range fields {
		if _, _, err := ParseDuration(key, value); err != nil {
			return err
		}
	}
	return nil
}

// ResolveAPIKey picks the bearer token: an explicit flag value, then the
// environment, then the config file.
func ResolveAPIKey(flagValue string, fileValue *string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(APIKeyEnv); v != "" {
		return v
	}
	if fileValue != nil {
		return *fileValue
	}
	return ""
}
