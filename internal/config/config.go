// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/gptwrap/internal/settings"
	"github.com/jeranaias/gptwrap/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete gptwrap configuration.
type Config struct {
	// Completions endpoint
	Endpoint EndpointConfig `toml:"endpoint" yaml:"endpoint" json:"endpoint"`

	// Settings in effect at startup
	Defaults DefaultsConfig `toml:"defaults" yaml:"defaults" json:"defaults"`

	// Logging
	Log LogConfig `toml:"log" yaml:"log" json:"log"`

	// UI configuration
	UI UIConfig `toml:"ui" yaml:"ui" json:"ui"`

	// Source is the file this config was loaded from, or "" for defaults.
	Source string `toml:"-" yaml:"-" json:"-"`
}

// EndpointConfig describes the completions endpoint.
type EndpointConfig struct {
	// BaseURL is the API base; "/chat/completions" is appended
	BaseURL string `toml:"base_url" yaml:"base_url" json:"base_url"`
	// Name is used in error messages, e.g. "OpenAI API error: 401"
	Name string `toml:"name" yaml:"name" json:"name"`
	// APIKey is the initial credential. May be left empty and entered in the UI.
	APIKey string `toml:"api_key" yaml:"api_key" json:"api_key"`
	// TimeoutSecs bounds one request. 0 disables the timeout.
	TimeoutSecs int `toml:"timeout_secs" yaml:"timeout_secs" json:"timeout_secs"`
}

// DefaultsConfig holds the initial settings.
type DefaultsConfig struct {
	Model          string  `toml:"model" yaml:"model" json:"model"`
	ResponseFormat string  `toml:"response_format" yaml:"response_format" json:"response_format"`
	Temperature    float64 `toml:"temperature" yaml:"temperature" json:"temperature"`
	MaxTokens      int     `toml:"max_tokens" yaml:"max_tokens" json:"max_tokens"`
	TopP           float64 `toml:"top_p" yaml:"top_p" json:"top_p"`
	Store          bool    `toml:"store" yaml:"store" json:"store"`
	Variables      string  `toml:"variables" yaml:"variables" json:"variables"`
	Tools          string  `toml:"tools" yaml:"tools" json:"tools"`
	SystemMessage  string  `toml:"system_message" yaml:"system_message" json:"system_message"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error, disabled
	Level string `toml:"level" yaml:"level" json:"level"`
	// File is the log file path; empty means ~/.gptwrap/gptwrap.log
	File       string `toml:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups" json:"max_backups"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" yaml:"theme" json:"theme"`
	// WordWrap is the markdown wrap width; 0 follows the terminal width
	WordWrap int `toml:"word_wrap" yaml:"word_wrap" json:"word_wrap"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	s := settings.Default()
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:     "https://api.openai.com/v1",
			Name:        "OpenAI API",
			TimeoutSecs: 60,
		},
		Defaults: DefaultsConfig{
			Model:          s.Model,
			ResponseFormat: s.ResponseFormat.String(),
			Temperature:    s.Temperature,
			MaxTokens:      s.MaxOutputTokens,
			TopP:           s.TopP,
			Store:          s.PersistOnServer,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the gptwrap configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not determine home directory")
	}
	return filepath.Join(home, ".gptwrap"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathYAML returns the path to the YAML config file.
func ConfigPathYAML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultLogPath returns ~/.gptwrap/gptwrap.log.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gptwrap.log"), nil
}

// ensureSecurePermissions tightens a config file to 0600 since it may hold
// an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := os.Chmod(path, 0600); err != nil {
			return errors.Wrapf(err, "failed to fix insecure permissions (was %o)", mode)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads the config file from the config directory: TOML first, then
// YAML, then built-in defaults. Environment overrides are applied last and
// the result is validated.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathYAML} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file. Files ending in
// .yaml or .yml are read as YAML, everything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if isYAML(path) {
		err = LoadYAML(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load config from %s", path)
	}
	cfg.Source = path

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys missing from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrap(err, "failed to decode TOML file")
	}
	fillDefaults(cfg)
	return nil
}

// LoadYAML decodes a YAML file over cfg. Keys missing from the file keep
// their current values.
func LoadYAML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read YAML file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, "failed to decode YAML file")
	}
	fillDefaults(cfg)
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// fillDefaults replaces explicitly empty strings with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Endpoint.BaseURL == "" {
		cfg.Endpoint.BaseURL = defaults.Endpoint.BaseURL
	}
	if cfg.Endpoint.Name == "" {
		cfg.Endpoint.Name = defaults.Endpoint.Name
	}
	if cfg.Defaults.Model == "" {
		cfg.Defaults.Model = defaults.Defaults.Model
	}
	if cfg.Defaults.ResponseFormat == "" {
		cfg.Defaults.ResponseFormat = defaults.Defaults.ResponseFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

const tomlHeader = `# gptwrap configuration file
# Generated by "gptwrap config init" - edit with care
#
# api_key may be left empty and entered from the settings dialog (Ctrl+S).

`

// SaveTOML writes cfg to path as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString(tomlHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// SaveYAML writes cfg to path as YAML with 0600 permissions.
func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to encode config")
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidThemes lists accepted ui.theme values.
var ValidThemes = []string{"dark", "light", "auto"}

// Validate checks the configuration. Sampling values and the API key are
// not checked here.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Endpoint.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an http or https URL", c.Endpoint.BaseURL),
		})
	}

	if c.Endpoint.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.timeout_secs",
			Message: fmt.Sprintf("must be 0 or greater, got %d", c.Endpoint.TimeoutSecs),
		})
	}

	if !settings.ResponseFormat(c.Defaults.ResponseFormat).Valid() {
		errs = append(errs, ValidationError{
			Field:   "defaults.response_format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Defaults.ResponseFormat),
		})
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s'", c.Log.Level),
		})
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, ValidationError{
			Field:   "log",
			Message: "max_size_mb and max_backups must be 0 or greater",
		})
	}

	if !contains(ValidThemes, strings.ToLower(c.UI.Theme)) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(ValidThemes, ", ")),
		})
	}

	if c.UI.WordWrap < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.word_wrap",
			Message: fmt.Sprintf("must be 0 or greater, got %d", c.UI.WordWrap),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - GPTWRAP_API_KEY, then OPENAI_API_KEY: endpoint.api_key
//   - GPTWRAP_BASE_URL: endpoint.base_url
//   - GPTWRAP_MODEL: defaults.model
//   - GPTWRAP_LOG_LEVEL: log.level
//   - GPTWRAP_THEME: ui.theme
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("GPTWRAP_API_KEY"); key != "" {
		c.Endpoint.APIKey = key
	} else if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Endpoint.APIKey = key
	}

	if u := os.Getenv("GPTWRAP_BASE_URL"); u != "" {
		c.Endpoint.BaseURL = u
	}

	if model := os.Getenv("GPTWRAP_MODEL"); model != "" {
		c.Defaults.Model = model
	}

	if level := os.Getenv("GPTWRAP_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}

	if theme := os.Getenv("GPTWRAP_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Timeout returns the endpoint timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Endpoint.TimeoutSecs) * time.Second
}

// InitialSettings maps the endpoint credential and [defaults] onto the
// settings in effect at startup. The result is not validated, so the
// credential may be empty.
func (c *Config) InitialSettings() settings.Settings {
	return settings.Settings{
		Credential:        c.Endpoint.APIKey,
		Model:             c.Defaults.Model,
		ResponseFormat:    settings.ResponseFormat(c.Defaults.ResponseFormat),
		Temperature:       c.Defaults.Temperature,
		MaxOutputTokens:   c.Defaults.MaxTokens,
		TopP:              c.Defaults.TopP,
		PersistOnServer:   c.Defaults.Store,
		Variables:         c.Defaults.Variables,
		Tools:             c.Defaults.Tools,
		SystemInstruction: c.Defaults.SystemMessage,
	}
}

// LogPath returns the configured log file, or the default path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	return DefaultLogPath()
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as TOML with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Endpoint.APIKey != "" {
		safe.Endpoint.APIKey = "[REDACTED]"
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
