package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-map/backend/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "CORS_ORIGINS", "MAPTILER_API_KEY",
		"MAP_STYLE_URL", "MAP_STYLE_TIMEOUT", "SEED_LINE_PATH",
	} {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that optional env vars fall back to their defaults
// when only the required MAPTILER_API_KEY is provided.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAPTILER_API_KEY", "test-key")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "test-key", cfg.MapTilerAPIKey)
	require.Equal(t, config.DefaultStyleURL, cfg.StyleURL)
	require.Equal(t, 10*time.Second, cfg.StyleTimeout)
	require.Empty(t, cfg.SeedLinePath)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAPTILER_API_KEY", "k")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("MAP_STYLE_URL", "https://tiles.example.com/style.json?token={key}")
	t.Setenv("MAP_STYLE_TIMEOUT", "3s")
	t.Setenv("SEED_LINE_PATH", "/etc/transit/m10.yaml")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "https://tiles.example.com/style.json?token={key}", cfg.StyleURL)
	require.Equal(t, 3*time.Second, cfg.StyleTimeout)
	require.Equal(t, "/etc/transit/m10.yaml", cfg.SeedLinePath)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

// TestLoad_missingRequired verifies that an error is returned when
// MAPTILER_API_KEY is not set, and that the error message names it.
func TestLoad_missingRequired(t *testing.T) {
	clearEnv(t)

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "MAPTILER_API_KEY")
}

// TestLoad_invalidValues verifies that malformed values are rejected.
func TestLoad_invalidValues(t *testing.T) {
	cases := map[string][2]string{
		"port":    {"PORT", "http"},
		"level":   {"LOG_LEVEL", "verbose"},
		"origin":  {"CORS_ORIGINS", "not a url"},
		"timeout": {"MAP_STYLE_TIMEOUT", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MAPTILER_API_KEY", "k")
			t.Setenv(kv[0], kv[1])

			_, err := config.Load()

			require.Error(t, err)
		})
	}
}

// TestLoad_dotenv verifies that a .env file supplies unset variables.
func TestLoad_dotenv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("MAPTILER_API_KEY")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MAPTILER_API_KEY=from-dotenv\n"), 0o600))
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("MAPTILER_API_KEY") })

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.MapTilerAPIKey)
}
