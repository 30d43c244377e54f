// File: config.go
// Title: Configuration Loading
// Description: Loads TOML and YAML configuration files into a nested map and
//              exposes dotted-key accessors with environment overrides. The
//              typed application settings in pkg/core/config are read
//              through this layer.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation with TOML/YAML support

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	mdwstringx "github.com/frikeldon/openscad/foundation/utils/stringx"
)

// Format represents the configuration file format
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
	// FormatAuto picks the format from the file extension
	FormatAuto
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Config is a loaded configuration document
type Config struct {
	mu        sync.RWMutex
	data      map[string]interface{}
	filePath  string
	format    Format
	envPrefix string
}

// LoadOptions defines options for loading configuration
type LoadOptions struct {
	Format Format
	// EnvPrefix enables overrides: key "engine.max_steps" with prefix
	// "OPENSCAD" is read from OPENSCAD_ENGINE_MAX_STEPS.
	EnvPrefix string
}

// Load loads configuration from a file, detecting the format
func Load(filePath string) (*Config, error) {
	return LoadWithOptions(filePath, LoadOptions{Format: FormatAuto})
}

// LoadWithOptions loads configuration from a file with custom options
func LoadWithOptions(filePath string, options LoadOptions) (*Config, error) {
	if mdwstringx.IsBlank(filePath) {
		return nil, mdwerror.New("config file path cannot be empty").
			WithCode(mdwerror.CodeMissingConfig).
			WithOperation("config.LoadWithOptions")
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		code := mdwerror.CodeConfigError
		if os.IsNotExist(err) {
			code = mdwerror.CodeNotFound
		}
		return nil, mdwerror.Wrap(err, "failed to read config file").
			WithCode(code).
			WithOperation("config.LoadWithOptions").
			WithDetail("filePath", filePath)
	}

	format := options.Format
	if format == FormatAuto {
		format = detectFormat(filePath)
	}

	data, err := parseContent(content, format)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config file").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.LoadWithOptions").
			WithDetail("filePath", filePath).
			WithDetail("format", format.String())
	}

	return &Config{data: data, filePath: filePath, format: format, envPrefix: options.EnvPrefix}, nil
}

// LoadFromString parses configuration content held in memory
func LoadFromString(content string, format Format) (*Config, error) {
	if format == FormatAuto {
		format = FormatTOML
	}
	data, err := parseContent([]byte(content), format)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to parse config from string").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.LoadFromString")
	}
	return &Config{data: data, format: format}, nil
}

// Empty returns a configuration with no keys; every getter yields its default
func Empty() *Config {
	return &Config{data: map[string]interface{}{}, format: FormatTOML}
}

func detectFormat(filePath string) Format {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func parseContent(content []byte, format Format) (map[string]interface{}, error) {
	data := map[string]interface{}{}
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &data); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	return data, nil
}

// WithEnvPrefix returns the same configuration with environment overrides enabled
func (c *Config) WithEnvPrefix(prefix string) *Config {
	c.mu.Lock()
	c.envPrefix = prefix
	c.mu.Unlock()
	return c
}

// FilePath returns the file the configuration was loaded from
func (c *Config) FilePath() string { return c.filePath }

// Format returns the parsed format
func (c *Config) Format() Format { return c.format }

// Has reports whether a key is present in the document
func (c *Config) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.getValue(key) != nil
}

// Set stores a value at a dotted key, creating intermediate tables
func (c *Config) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := strings.Split(key, ".")
	current := c.data
	for _, p := range parts[:len(parts)-1] {
		next, ok := current[p].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[p] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// GetString returns a string value
func (c *Config) GetString(key string, defaultValue ...string) string {
	if env, ok := c.lookupEnv(key); ok {
		return env
	}
	c.mu.RLock()
	v := c.getValue(key)
	c.mu.RUnlock()

	if s, ok := v.(string); ok {
		return s
	}
	if v != nil {
		return fmt.Sprint(v)
	}
	return first(defaultValue)
}

// GetInt returns an integer value
func (c *Config) GetInt(key string, defaultValue ...int) int {
	if env, ok := c.lookupEnv(key); ok {
		if n, err := strconv.Atoi(env); err == nil {
			return n
		}
	}
	c.mu.RLock()
	v := c.getValue(key)
	c.mu.RUnlock()

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}
	return first(defaultValue)
}

// GetBool returns a boolean value
func (c *Config) GetBool(key string, defaultValue ...bool) bool {
	if env, ok := c.lookupEnv(key); ok {
		if b, err := strconv.ParseBool(env); err == nil {
			return b
		}
	}
	c.mu.RLock()
	v := c.getValue(key)
	c.mu.RUnlock()

	switch b := v.(type) {
	case bool:
		return b
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed
		}
	}
	return first(defaultValue)
}

// GetDuration returns a duration written as a Go duration string ("250ms")
func (c *Config) GetDuration(key string, defaultValue ...time.Duration) time.Duration {
	raw := c.GetString(key)
	if raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return first(defaultValue)
}

func (c *Config) getValue(key string) interface{} {
	current := c.data
	parts := strings.Split(key, ".")
	for i, p := range parts {
		if i == len(parts)-1 {
			return current[p]
		}
		next, ok := current[p].(map[string]interface{})
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func (c *Config) lookupEnv(key string) (string, bool) {
	c.mu.RLock()
	prefix := c.envPrefix
	c.mu.RUnlock()
	if prefix == "" {
		return "", false
	}
	envKey := strings.ToUpper(prefix + "_" + strings.ReplaceAll(key, ".", "_"))
	v, ok := os.LookupEnv(envKey)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func first[T any](values []T) T {
	var zero T
	if len(values) > 0 {
		return values[0]
	}
	return zero
}
