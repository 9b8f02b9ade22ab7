// Copyright (c) 2025 The ragterm Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragterm/ragterm/internal/api"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, api.DefaultBaseURL, cfg.Server.BaseURL)
	assert.Equal(t, api.ModeRAG, cfg.Mode())
	assert.Equal(t, api.VisibilityPrivate, cfg.Visibility())
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestLoadFromPath_MergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[server]
base_url = "https://rag.example.com"

[ui]
theme = "light"
language = "PT-br"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "https://rag.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "pt-BR", cfg.UI.Language, "language tag is canonicalized")
	assert.Equal(t, 60, cfg.Server.TimeoutSecs, "unset fields keep defaults")
}

func TestLoadFromPath_FixesLoosePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`version = "1.0.0"`), 0o644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
	}{
		{"empty base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url"},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "not a url" }, "server.base_url"},
		{"negative timeout", func(c *Config) { c.Server.TimeoutSecs = -1 }, "server.timeout_secs"},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, "ui.theme"},
		{"bad language", func(c *Config) { c.UI.Language = "not a tag!" }, "ui.language"},
		{"bad mode", func(c *Config) { c.UI.DefaultMode = "turbo" }, "ui.default_mode"},
		{"bad visibility", func(c *Config) { c.Upload.DefaultVisibility = "everyone" }, "upload.default_visibility"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)

			var errs ValidateErrors
			require.ErrorAs(t, err, &errs)
			require.NotEmpty(t, errs)
			assert.Equal(t, tc.field, errs[0].Field)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("RAGTERM_SERVER_URL", "https://env.example.com")
	t.Setenv("RAGTERM_THEME", "dark")
	t.Setenv("RAGTERM_NO_HISTORY", "1")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "https://env.example.com", cfg.Server.BaseURL)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.False(t, cfg.History.Enabled)
}

func TestSaveToPath_RoundTripWithSecurePerms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveToPath(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "light", got.UI.Theme)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	var mu sync.Mutex
	var themes []string
	w, err := Watch(path, func(cfg *Config) {
		mu.Lock()
		themes = append(themes, cfg.UI.Theme)
		mu.Unlock()
	})
	require.NoError(t, err)
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	require.NoError(t, SaveToPath(cfg, path))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(themes) > 0 && themes[len(themes)-1] == "light"
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_SkipsBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveToPath(Default(), path))

	reloads := make(chan string, 4)
	w, err := Watch(path, func(cfg *Config) { reloads <- cfg.UI.Theme })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("theme = [broken"), 0o600))

	select {
	case theme := <-reloads:
		t.Fatalf("broken config must not reach the callback, got theme %q", theme)
	case <-time.After(600 * time.Millisecond):
	}
}
