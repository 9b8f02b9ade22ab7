// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

// Package config provides configuration loading and management for ragterm.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - $RAGTERM_CONFIG (explicit path)
//   - ~/.ragterm/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"

	"github.com/ragterm/ragterm/internal/api"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ragterm configuration.
type Config struct {
	Version string `toml:"version"`

	// Server configuration
	Server ServerConfig `toml:"server"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Upload configuration
	Upload UploadConfig `toml:"upload"`

	// History (local usage journal) configuration
	History HistoryConfig `toml:"history"`
}

// ServerConfig contains backend connection configuration.
type ServerConfig struct {
	// BaseURL is the RAG backend base URL
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds (0 = default)
	TimeoutSecs int `toml:"timeout_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// Language is a BCP 47 tag for UI text, e.g. "en", "fr", "pt-BR"
	Language string `toml:"language"`
	// CompactMode uses a more compact layout
	CompactMode bool `toml:"compact_mode"`
	// DefaultMode selects how questions are answered: "rag" or "chat"
	DefaultMode string `toml:"default_mode"`
}

// UploadConfig contains document upload defaults.
type UploadConfig struct {
	// DefaultVisibility is the visibility used when none is given: "public" or "private"
	DefaultVisibility string `toml:"default_visibility"`
}

// HistoryConfig contains the local usage journal configuration.
type HistoryConfig struct {
	// Enabled controls whether questions are journaled locally
	Enabled bool `toml:"enabled"`
	// Path is the journal database path (empty = ~/.ragterm/history.db)
	Path string `toml:"path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			BaseURL:     api.DefaultBaseURL,
			TimeoutSecs: 60,
		},

		UI: UIConfig{
			Theme:       "auto",
			Language:    "en",
			CompactMode: false,
			DefaultMode: string(api.ModeRAG),
		},

		Upload: UploadConfig{
			DefaultVisibility: string(api.VisibilityPrivate),
		},

		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the ragterm configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ragterm"), nil
}

// Path returns the path to the config file, honoring $RAGTERM_CONFIG.
func Path() (string, error) {
	if p := os.Getenv("RAGTERM_CONFIG"); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// The file may carry a server URL pointing at an internal host; keep it
// owner-only.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads the configuration from the config file, falling back to
// defaults when no file exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error; defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if permErr := ensureSecurePermissions(path); permErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, permErr)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default config file with 0600
// permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to a specific file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# ragterm configuration file")
	fmt.Fprintln(file, "# Generated by ragterm - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
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
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Server.BaseURL == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: "must not be empty",
		})
	} else if u, err := url.Parse(c.Server.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.base_url",
			Message: fmt.Sprintf("invalid URL '%s'", c.Server.BaseURL),
		})
	}

	if c.Server.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.timeout_secs",
			Message: "must be non-negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.Language != "" {
		if _, err := language.Parse(c.UI.Language); err != nil {
			errs = append(errs, ValidationError{
				Field:   "ui.language",
				Message: fmt.Sprintf("invalid language tag '%s'", c.UI.Language),
			})
		}
	}

	if mode := api.Mode(strings.ToLower(c.UI.DefaultMode)); !mode.Valid() {
		errs = append(errs, ValidationError{
			Field:   "ui.default_mode",
			Message: fmt.Sprintf("invalid mode '%s', must be one of: rag, chat", c.UI.DefaultMode),
		})
	}

	if v := api.Visibility(strings.ToLower(c.Upload.DefaultVisibility)); !v.Valid() {
		errs = append(errs, ValidationError{
			Field:   "upload.default_visibility",
			Message: fmt.Sprintf("invalid visibility '%s', must be one of: public, private", c.Upload.DefaultVisibility),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills in any missing or zero-value configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = defaults.Server.BaseURL
	}
	if c.Server.TimeoutSecs == 0 {
		c.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = defaults.UI.Language
	}
	if c.UI.DefaultMode == "" {
		c.UI.DefaultMode = defaults.UI.DefaultMode
	}
	if c.Upload.DefaultVisibility == "" {
		c.Upload.DefaultVisibility = defaults.Upload.DefaultVisibility
	}

	// Normalize the language tag to its canonical form, e.g. "PT-br" to
	// "pt-BR". Validate already rejected unparseable tags.
	if tag, err := language.Parse(c.UI.Language); err == nil {
		c.UI.Language = tag.String()
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RAGTERM_SERVER_URL: overrides server.base_url
//   - RAGTERM_TIMEOUT_SECS: overrides server.timeout_secs
//   - RAGTERM_THEME: overrides ui.theme
//   - RAGTERM_LANGUAGE: overrides ui.language
//   - RAGTERM_MODE: overrides ui.default_mode
//   - RAGTERM_NO_HISTORY: set to "1" or "true" to disable the local journal
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RAGTERM_SERVER_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("RAGTERM_TIMEOUT_SECS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.TimeoutSecs = secs
		}
	}
	if v := os.Getenv("RAGTERM_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("RAGTERM_LANGUAGE"); v != "" {
		c.UI.Language = v
	}
	if v := os.Getenv("RAGTERM_MODE"); v != "" {
		c.UI.DefaultMode = v
	}
	if v := os.Getenv("RAGTERM_NO_HISTORY"); v != "" {
		if v == "1" || strings.EqualFold(v, "true") {
			c.History.Enabled = false
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// HistoryPath returns the journal database path, defaulting under the
// config directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// Mode returns the configured default answer mode.
func (c *Config) Mode() api.Mode {
	return api.Mode(strings.ToLower(c.UI.DefaultMode))
}

// Visibility returns the configured default upload visibility.
func (c *Config) Visibility() api.Visibility {
	return api.Visibility(strings.ToLower(c.Upload.DefaultVisibility))
}
