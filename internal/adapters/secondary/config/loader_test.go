package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTOMLLoader_LoadGlobal(t *testing.T) {
	t.Run("creates defaults on first run", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "slideforge", "config.toml")
		loader := NewTOMLLoaderWithPath(path)

		config, err := loader.LoadGlobal(context.Background())
		require.NoError(t, err)

		_, err = os.Stat(path)
		require.NoError(t, err, "defaults should be written to disk")

		assert.Equal(t, "localhost", config.Server.Host)
		assert.Equal(t, 4000, config.Server.Port)
		assert.Equal(t, "default", config.Deck.DefaultTheme)
		assert.Equal(t, "title", config.Deck.DefaultTemplate)
		assert.True(t, config.Browser.AutoOpen)
		assert.Equal(t, 200, config.Watcher.IntervalMs)
		assert.Equal(t, "presentation.html", config.Export.OutputName)
	})

	t.Run("loads existing config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, `
[server]
host = "0.0.0.0"
port = 8080
cors_origins = ["https://slides.example.com"]

[deck]
default_template = "content"
default_theme = "ocean"
default_name = "Weekly Sync"

[browser]
auto_open = false

[logging]
level = "debug"
json_format = true
`)

		config, err := NewTOMLLoaderWithPath(path).LoadGlobal(context.Background())
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", config.Server.Host)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, []string{"https://slides.example.com"}, config.Server.CORSOrigins)
		assert.Equal(t, "content", config.Deck.DefaultTemplate)
		assert.Equal(t, "ocean", config.Deck.DefaultTheme)
		assert.Equal(t, "Weekly Sync", config.Deck.DefaultName)
		assert.False(t, config.Browser.AutoOpen)
		assert.Equal(t, "debug", config.Logging.Level)
		assert.True(t, config.Logging.JSONFormat)

		assert.True(t, config.IsSet("browser.auto_open"))
		assert.True(t, config.IsSet("logging.json_format"))
		assert.False(t, config.IsSet("logging.verbose"))
	})

	t.Run("fails with invalid TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, "[server\nport = 1")

		_, err := NewTOMLLoaderWithPath(path).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing TOML")
	})

	t.Run("fails with invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		writeFile(t, path, `
[server]
port = 70000

[deck]
default_template = "chart"
default_theme = "default"
`)

		_, err := NewTOMLLoaderWithPath(path).LoadGlobal(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
		assert.Contains(t, err.Error(), "port must be between")
		assert.Contains(t, err.Error(), "chart")
	})
}

func TestTOMLLoader_LoadLocal(t *testing.T) {
	loader := NewTOMLLoaderWithPath("unused")

	t.Run("loads existing local config", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "slideforge.toml"), `
[deck]
default_theme = "forest"

[watcher]
interval_ms = 150
`)

		config, err := loader.LoadLocal(context.Background(), dir)
		require.NoError(t, err)
		require.NotNil(t, config)

		assert.Equal(t, "forest", config.Deck.DefaultTheme)
		assert.Equal(t, 150, config.Watcher.IntervalMs)
		assert.False(t, config.IsSet("browser.auto_open"))
	})

	t.Run("returns nil for missing local config", func(t *testing.T) {
		config, err := loader.LoadLocal(context.Background(), t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, config)
	})

	t.Run("fails with empty theme", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "slideforge.toml"), "[deck]\ndefault_theme = \"\"\n")

		_, err := loader.LoadLocal(context.Background(), dir)
		assert.Error(t, err)
	})
}

func TestTOMLLoader_CreateDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	loader := NewTOMLLoaderWithPath(path)

	require.NoError(t, loader.CreateDefaults(context.Background(), path))

	config, err := loader.loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 4000, config.Server.Port)
	assert.True(t, config.IsSet("browser.auto_open"))
}

func TestTOMLLoader_GetPaths(t *testing.T) {
	t.Run("global path", func(t *testing.T) {
		path := NewTOMLLoader().GetGlobalPath()

		assert.Contains(t, path, ".config")
		assert.Contains(t, path, "slideforge")
		assert.Equal(t, "config.toml", filepath.Base(path))
	})

	t.Run("local path", func(t *testing.T) {
		assert.Equal(t, filepath.Join("/some/project", "slideforge.toml"), NewTOMLLoader().GetLocalPath("/some/project"))
	})
}

func TestTOMLLoader_loadConfig_MissingFile(t *testing.T) {
	_, err := NewTOMLLoader().loadConfig("/non/existent/file.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
