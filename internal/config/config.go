// Package config loads service configuration from an optional YAML file with
// CITYPULSE_-prefixed environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds everything the binaries need.
type Config struct {
	Listen        string        `koanf:"listen"`
	DataDir       string        `koanf:"data_dir"`
	VenuesFile    string        `koanf:"venues_file"`
	ScrapeCron    string        `koanf:"scrape_cron"`
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	SourceTimeout time.Duration `koanf:"source_timeout"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	LogLevel      string        `koanf:"log_level"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Listen:        ":8080",
		DataDir:       "./data",
		VenuesFile:    "./venues.yaml",
		ScrapeCron:    "0 */6 * * *",
		FetchTimeout:  30 * time.Second,
		SourceTimeout: 45 * time.Second,
		CacheTTL:      5 * time.Minute,
		LogLevel:      "info",
	}
}

// Load reads configuration, layering file values and then environment
// overrides on top of the defaults. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("loading config file: %w", err)
		}
	}

	err := k.Load(env.Provider("CITYPULSE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "CITYPULSE_")), "__", ".")
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
