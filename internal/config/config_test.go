package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMainConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ThemeLight, cfg.Theme)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Len(t, cfg.Datasets, len(DefaultDatasets()))

	plaza, err := cfg.Dataset("dealer-plaza")
	require.NoError(t, err)
	assert.Empty(t, plaza.URL)
	assert.Equal(t, "Walton Plaza", plaza.IdentityKey)
}

func TestLoadMainConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
server_addr: ":9090"
log_level: debug
theme: dark
fetch_timeout: 5s
datasets:
  - code: dealer-plaza
    url: https://example.com/plaza.csv
  - code: sales
    doubled_quote_escape: true
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.Equal(t, ThemeDark, cfg.Theme)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)

	plaza, err := cfg.Dataset("dealer-plaza")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/plaza.csv", plaza.URL)
	assert.Equal(t, "Walton Plaza", plaza.IdentityKey)

	sales, err := cfg.Dataset("sales")
	require.NoError(t, err)
	assert.True(t, sales.DoubledQuoteEscape)
	assert.Contains(t, sales.URL, "docs.google.com")
	assert.Equal(t, "sales", cfg.Datasets[0].Code)
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	_, err := LoadMainConfig(writeConfig(t, "theme: sepia\n"))
	assert.Error(t, err)

	_, err = LoadMainConfig(writeConfig(t, "log_level: loud\n"))
	assert.Error(t, err)

	_, err = LoadMainConfig(writeConfig(t, "datasets:\n  - code: payroll\n"))
	assert.ErrorIs(t, err, ErrUnknownDataset)

	_, err = LoadMainConfig(writeConfig(t, "server_addr: [\n"))
	assert.Error(t, err)
}

func TestDataset_Unknown(t *testing.T) {
	_, err := Default().Dataset("nope")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestThemeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ThemeLight, ThemeFrom(ctx))
	assert.Equal(t, ThemeDark, ThemeFrom(WithTheme(ctx, ThemeDark)))
}
