package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	fcfg "github.com/frikeldon/openscad/foundation/core/config"
)

// Config holds the complete application configuration
type Config struct {
	General GeneralConfig `toml:"general"`
	Engine  EngineConfig  `toml:"engine"`
	Preview PreviewConfig `toml:"preview"`
	Store   StoreConfig   `toml:"store"`
	Cache   CacheConfig   `toml:"cache"`
	Watch   WatchConfig   `toml:"watch"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name      string `toml:"name"`
	DataDir   string `toml:"data_dir"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// EngineConfig holds interpreter limits
type EngineConfig struct {
	MaxSteps       int `toml:"max_steps"`
	MaxInputLength int `toml:"max_input_length"`
}

// PreviewConfig holds live preview server settings
type PreviewConfig struct {
	Host         string   `toml:"host"`
	Port         int      `toml:"port"`
	PingInterval Duration `toml:"ping_interval"`
	RunTimeout   Duration `toml:"run_timeout"`
}

// StoreConfig holds run history settings
type StoreConfig struct {
	Path string `toml:"path"`
}

// CacheConfig holds result cache settings
type CacheConfig struct {
	Enabled    bool     `toml:"enabled"`
	TTL        Duration `toml:"ttl"`
	MaxEntries int      `toml:"max_entries"`
}

// WatchConfig holds file watcher settings
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Duration wraps time.Duration for config parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{Cache: CacheConfig{Enabled: true}}
	cfg.applyDefaults()
	return cfg
}

// EnvPrefix prefixes environment overrides: engine.max_steps is read from
// OPENSCAD_ENGINE_MAX_STEPS when set.
const EnvPrefix = "OPENSCAD"

// Load loads configuration from a TOML or YAML file, picked by extension.
// Environment variables with EnvPrefix override file values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	doc, err := fcfg.LoadWithOptions(path, fcfg.LoadOptions{Format: fcfg.FormatAuto, EnvPrefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg, err := FromDocument(doc)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromDocument builds the typed configuration from a loaded document and
// applies defaults for every missing key
func FromDocument(doc *fcfg.Config) (*Config, error) {
	cfg := &Config{
		General: GeneralConfig{
			Name:      doc.GetString("general.name"),
			DataDir:   doc.GetString("general.data_dir"),
			LogLevel:  doc.GetString("general.log_level"),
			LogFormat: doc.GetString("general.log_format"),
		},
		Engine: EngineConfig{
			MaxSteps:       doc.GetInt("engine.max_steps"),
			MaxInputLength: doc.GetInt("engine.max_input_length"),
		},
		Preview: PreviewConfig{
			Host: doc.GetString("preview.host"),
			Port: doc.GetInt("preview.port"),
		},
		Store: StoreConfig{
			Path: doc.GetString("store.path"),
		},
		Cache: CacheConfig{
			Enabled:    doc.GetBool("cache.enabled", true),
			MaxEntries: doc.GetInt("cache.max_entries"),
		},
	}

	durations := map[string]*Duration{
		"preview.ping_interval": &cfg.Preview.PingInterval,
		"preview.run_timeout":   &cfg.Preview.RunTimeout,
		"cache.ttl":             &cfg.Cache.TTL,
		"watch.debounce":        &cfg.Watch.Debounce,
	}
	for key, target := range durations {
		raw := doc.GetString(key)
		if raw == "" {
			continue
		}
		if err := target.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()
	return cfg, nil
}

// LoadFromEnv loads configuration from the OPENSCAD_CONFIG environment
// variable or a default location. Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv("OPENSCAD_CONFIG")
	if path == "" {
		defaultPaths := []string{
			"./configs/openscad.toml",
			"./openscad.toml",
			filepath.Join(os.Getenv("HOME"), ".config/openscad/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "openscad"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Engine
	if c.Engine.MaxInputLength == 0 {
		c.Engine.MaxInputLength = 1 << 20
	}
	if c.Engine.MaxSteps == 0 {
		c.Engine.MaxSteps = 10_000_000
	}

	// Preview
	if c.Preview.Host == "" {
		c.Preview.Host = "127.0.0.1"
	}
	if c.Preview.Port == 0 {
		c.Preview.Port = 8765
	}
	if c.Preview.PingInterval.Duration == 0 {
		c.Preview.PingInterval.Duration = 30 * time.Second
	}
	if c.Preview.RunTimeout.Duration == 0 {
		c.Preview.RunTimeout.Duration = 5 * time.Second
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "history.db")
	}

	// Cache
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 10 * time.Minute
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}

	// Watch
	if c.Watch.Debounce.Duration == 0 {
		c.Watch.Debounce.Duration = 150 * time.Millisecond
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// Validate rejects values no component can work with
func (c *Config) Validate() error {
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("engine.max_steps cannot be negative: %d", c.Engine.MaxSteps)
	}
	if c.Engine.MaxInputLength < 0 {
		return fmt.Errorf("engine.max_input_length cannot be negative: %d", c.Engine.MaxInputLength)
	}
	if c.Preview.Port < 0 || c.Preview.Port > 65535 {
		return fmt.Errorf("preview.port out of range: %d", c.Preview.Port)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries cannot be negative: %d", c.Cache.MaxEntries)
	}
	return nil
}

// PreviewAddress returns the listen address of the preview server
func (c *Config) PreviewAddress() string {
	return fmt.Sprintf("%s:%d", c.Preview.Host, c.Preview.Port)
}
