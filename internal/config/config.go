// Package config loads application configuration from an optional YAML file
// with environment variable overrides. In development a .env file is loaded
// before this package reads the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5m" or "12h" decode.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	dur, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(dur)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all runtime settings for the aggregator.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Feeds struct {
		// ExternalConfig is the optional per-country feed override file.
		ExternalConfig  string   `yaml:"external_config"`
		NewsAPIKey      string   `yaml:"news_api_key"`
		WorldNewsAPIKey string   `yaml:"worldnews_api_key"`
		CacheTTL        Duration `yaml:"cache_ttl"`
	} `yaml:"feeds"`
	Stats struct {
		CacheTTL Duration `yaml:"cache_ttl"`
	} `yaml:"stats"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	var cfg Config
	cfg.Server.Addr = ":8473"
	cfg.Database.Path = "terrasaver.db"
	cfg.Feeds.ExternalConfig = "news-feeds.json"
	cfg.Feeds.CacheTTL = Duration(10 * time.Minute)
	cfg.Stats.CacheTTL = Duration(24 * time.Hour)
	return cfg
}

// Load reads the YAML config at path and applies environment overrides.
// A missing file is not an error; defaults are used instead.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Addr, "TERRASAVER_ADDR")
	setString(&cfg.Database.Path, "TERRASAVER_DB")
	setString(&cfg.Feeds.ExternalConfig, "TERRASAVER_FEEDS")
	setString(&cfg.Feeds.NewsAPIKey, "NEWS_API_KEY")
	setString(&cfg.Feeds.WorldNewsAPIKey, "WORLDNEWS_API_KEY")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
