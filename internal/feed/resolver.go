package feed

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

//go:embed news-feeds.json
var bundledFeeds []byte

// cacheTTL is the freshness window for a merged configuration. Within the
// window Load serves the cached result without re-reading the override file.
const cacheTTL = 60 * time.Second

// Resolver merges the bundled feed configuration with an optional external
// override file and serves per-country descriptors. The merged result is
// cached for cacheTTL.
type Resolver struct {
	bundled      []byte
	externalPath string
	now          func() time.Time
	log          *slog.Logger

	mu       sync.Mutex
	cached   *Config
	lastLoad time.Time
}

// NewResolver creates a resolver backed by the embedded bundled config.
// externalPath points at the optional override file; empty disables overrides.
func NewResolver(externalPath string) *Resolver {
	return &Resolver{
		bundled:      bundledFeeds,
		externalPath: externalPath,
		now:          time.Now,
		log:          slog.Default(),
	}
}

// rawConfig mirrors the on-disk shape. Default is a pointer so a missing
// object can be told apart from an empty one.
type rawConfig struct {
	Default   *Descriptor           `json:"default"`
	Countries map[string]Descriptor `json:"countries"`
}

// Load returns the merged feed configuration. A bundled-config failure is
// fatal; an absent or malformed override file is logged and ignored.
func (r *Resolver) Load() (*Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.cached != nil && now.Sub(r.lastLoad) < cacheTTL {
		return r.cached, nil
	}

	base, err := parseRawConfig(r.bundled)
	if err != nil {
		return nil, &ConfigError{Source: "bundled news-feeds.json", Err: err}
	}
	if base.Default == nil || base.Default.FeedURL == "" {
		return nil, &ConfigError{Source: "bundled news-feeds.json", Err: errors.New("missing default feed")}
	}

	merged := buildConfig(base)
	if r.externalPath != "" {
		if override, err := readRawConfig(r.externalPath); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.log.Warn("ignoring external feed config", "path", r.externalPath, "error", err)
			}
		} else {
			mergeOverride(merged, override)
			r.log.Info("external feed config merged", "path", r.externalPath, "countries", len(override.Countries))
		}
	}

	r.cached = merged
	r.lastLoad = now
	return merged, nil
}

// FeedFor returns the descriptor for the given ISO-2 country code, or the
// default descriptor when no country entry exists. Lookup is case-insensitive.
func (r *Resolver) FeedFor(countryCode string) (Descriptor, error) {
	cfg, err := r.Load()
	if err != nil {
		return Descriptor{}, err
	}
	code := strings.ToLower(strings.TrimSpace(countryCode))
	if d, ok := cfg.Countries[code]; ok {
		return d, nil
	}
	return cfg.Default, nil
}

// ClearCache drops the cached configuration so the next Load re-reads the
// override file. Intended for tests and manual refresh.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cached = nil
	r.lastLoad = time.Time{}
}

// PrepareFeedURL substitutes the {COUNTRY_CODE} and {API_KEY} placeholders.
// The substitution is literal; the caller must pass URL-safe values.
func PrepareFeedURL(template, countryCode, apiKey string) string {
	out := strings.ReplaceAll(template, "{COUNTRY_CODE}", countryCode)
	return strings.ReplaceAll(out, "{API_KEY}", apiKey)
}

func parseRawConfig(data []byte) (*rawConfig, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	return &raw, nil
}

func readRawConfig(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseRawConfig(data)
}

// buildConfig turns a validated raw bundled config into a Config with
// lowercase country keys and normalized types.
func buildConfig(base *rawConfig) *Config {
	cfg := &Config{
		Default:   normalizeDescriptor(*base.Default),
		Countries: make(map[string]Descriptor, len(base.Countries)),
	}
	for code, d := range base.Countries {
		if d.FeedURL == "" {
			continue
		}
		cfg.Countries[strings.ToLower(code)] = normalizeDescriptor(d)
	}
	return cfg
}

// mergeOverride applies an external override: its default, when present,
// replaces the bundled default wholesale; country entries win key-by-key.
func mergeOverride(cfg *Config, override *rawConfig) {
	if override.Default != nil && override.Default.FeedURL != "" {
		cfg.Default = normalizeDescriptor(*override.Default)
	}
	for code, d := range override.Countries {
		if d.FeedURL == "" {
			continue
		}
		cfg.Countries[strings.ToLower(code)] = normalizeDescriptor(d)
	}
}

func normalizeDescriptor(d Descriptor) Descriptor {
	d.Type = d.Type.Normalize()
	return d
}
