// Package config loads and saves the global Dialectic configuration stored
// at ~/.dialectic/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/dialectic/internal/errors"
	"github.com/felixgeelhaar/dialectic/internal/log"
	"github.com/felixgeelhaar/dialectic/internal/recipe"
)

// EnvHome overrides the configuration directory
const EnvHome = "DIALECTIC_HOME"

// Config represents the global Dialectic configuration
type Config struct {
	Defaults CommandDefaults `json:"defaults,omitempty" yaml:"defaults,omitempty"`
	Logging  LoggingConfig   `json:"logging,omitempty" yaml:"logging,omitempty"`
	Planner  PlannerConfig   `json:"planner,omitempty" yaml:"planner,omitempty"`
	Metrics  MetricsConfig   `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

type CommandDefaults struct {
	Format  string `json:"format,omitempty" yaml:"format,omitempty"` // "text", "json", "yaml"
	NoColor bool   `json:"no_color,omitempty" yaml:"no_color,omitempty"`
	Verbose bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

type LoggingConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`   // "debug", "info", "warn", "error"
	Format string `json:"format,omitempty" yaml:"format,omitempty"` // "text", "json"
}

type PlannerConfig struct {
	// DefaultStrategy is used for steps without a granularity_strategy
	DefaultStrategy  string   `json:"default_strategy,omitempty" yaml:"default_strategy,omitempty"`
	StrictStrategies bool     `json:"strict_strategies,omitempty" yaml:"strict_strategies,omitempty"`
	BroadcastKinds   []string `json:"broadcast_kinds,omitempty" yaml:"broadcast_kinds,omitempty"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Defaults: CommandDefaults{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Planner: PlannerConfig{
			DefaultStrategy: recipe.StrategyPerSourceDocument,
			BroadcastKinds:  []string{"seed_prompt"},
		},
	}
}

// Dir returns the configuration directory, honoring DIALECTIC_HOME
func Dir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dialectic"), nil
}

// Path returns the path to the global configuration file
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration at path. A missing file yields the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read config", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, creating its directory
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write config", err)
	}
	return nil
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	if f := c.Defaults.Format; f != "" && !slices.Contains([]string{"text", "json", "yaml"}, f) {
		return invalid("defaults.format", f, "text, json, yaml")
	}
	if f := c.Logging.Format; f != "" && !slices.Contains([]string{"text", "json"}, f) {
		return invalid("logging.format", f, "text, json")
	}
	if l := c.Logging.Level; l != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(l)) {
		return invalid("logging.level", l, "debug, info, warn, error")
	}
	if s := c.Planner.DefaultStrategy; s != "" && !slices.Contains(recipe.KnownStrategies, s) {
		return invalid("planner.default_strategy", s, strings.Join(recipe.KnownStrategies, ", "))
	}
	return nil
}

func invalid(key, value, allowed string) error {
	return errors.Newf(errors.ErrCodeConfigInvalid, "invalid value %q for %s", value, key).
		WithSuggestion("Use one of: " + allowed)
}

// LogConfig builds a logger configuration from the logging section
func (c *Config) LogConfig() log.Config {
	lc := log.DefaultConfig()
	if c.Logging.Level != "" {
		lc.Level = log.ParseLevel(c.Logging.Level)
	}
	if c.Logging.Format != "" {
		lc.Format = log.ParseFormat(c.Logging.Format)
	}
	return lc
}

// Keys lists every key Get and Set accept
func Keys() []string {
	return []string{
		"defaults.format",
		"defaults.no_color",
		"defaults.verbose",
		"logging.level",
		"logging.format",
		"planner.default_strategy",
		"planner.strict_strategies",
		"planner.broadcast_kinds",
		"metrics.enabled",
	}
}

// Get retrieves a value using dot notation
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "defaults.format":
		return c.Defaults.Format, nil
	case "defaults.no_color":
		return strconv.FormatBool(c.Defaults.NoColor), nil
	case "defaults.verbose":
		return strconv.FormatBool(c.Defaults.Verbose), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "planner.default_strategy":
		return c.Planner.DefaultStrategy, nil
	case "planner.strict_strategies":
		return strconv.FormatBool(c.Planner.StrictStrategies), nil
	case "planner.broadcast_kinds":
		return strings.Join(c.Planner.BroadcastKinds, ","), nil
	case "metrics.enabled":
		return strconv.FormatBool(c.Metrics.Enabled), nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a value using dot notation and validates the result
func (c *Config) Set(key, value string) error {
	switch key {
	case "defaults.format":
		c.Defaults.Format = value
	case "defaults.no_color":
		c.Defaults.NoColor = parseBool(value)
	case "defaults.verbose":
		c.Defaults.Verbose = parseBool(value)
	case "logging.level":
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "planner.default_strategy":
		c.Planner.DefaultStrategy = value
	case "planner.strict_strategies":
		c.Planner.StrictStrategies = parseBool(value)
	case "planner.broadcast_kinds":
		c.Planner.BroadcastKinds = splitList(value)
	case "metrics.enabled":
		c.Metrics.Enabled = parseBool(value)
	default:
		return unknownKey(key)
	}
	return c.Validate()
}

func unknownKey(key string) error {
	return errors.Newf(errors.ErrCodeConfigInvalid, "unknown configuration key: %s", key).
		WithSuggestion("Known keys: " + strings.Join(Keys(), ", "))
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "yes" || s == "1"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
