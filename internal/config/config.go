// Package config loads server settings from an optional YAML file and
// environment variables.
//
// Precedence, lowest to highest: built-in defaults, the YAML file, the
// environment.
//
// Example file:
//
//	log:
//	  level: debug
//	sampler:
//	  cache_capacity: 100
//	placement:
//	  panel_width: 280
//	  panel_height: 160
//	  clearance: 12
//	  edge_padding: 8
//	  compact_breakpoint: 640
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/pixel-inspector/internal/placement"
	"github.com/ironsheep/pixel-inspector/internal/sampler"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel      = "PIXEL_INSPECTOR_LOG_LEVEL"
	EnvCacheCapacity = "PIXEL_INSPECTOR_CACHE_CAPACITY"
)

// Config is the complete server configuration.
type Config struct {
	Log struct {
		// Level is a zap level name: debug, info, warn, error.
		Level string `yaml:"level"`
	} `yaml:"log"`

	Sampler struct {
		CacheCapacity int `yaml:"cache_capacity"`
	} `yaml:"sampler"`

	Placement placement.Config `yaml:"placement"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{Placement: placement.DefaultConfig()}
	cfg.Log.Level = "info"
	cfg.Sampler.CacheCapacity = sampler.DefaultCacheCapacity
	return cfg
}

// Load reads the YAML file at path over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// An empty file decodes to io.EOF and leaves the defaults in place.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment. lookup is normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvCacheCapacity); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvCacheCapacity, err)
		}
		c.Sampler.CacheCapacity = n
	}
	return c.Validate()
}

// Validate checks values that would otherwise be silently corrected.
func (c *Config) Validate() error {
	if c.Sampler.CacheCapacity < 1 {
		return fmt.Errorf("sampler.cache_capacity must be at least 1, got %d", c.Sampler.CacheCapacity)
	}
	p := c.Placement
	if p.Clearance < 0 || p.EdgePadding < 0 {
		return fmt.Errorf("placement clearance and edge_padding must not be negative")
	}
	if p.PanelWidth < 0 || p.PanelHeight < 0 || p.CompactPanelWidth < 0 || p.CompactPanelHeight < 0 {
		return fmt.Errorf("placement panel sizes must not be negative")
	}
	return nil
}
