package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"phishguard/internal/config"

	"github.com/stretchr/testify/require"
)

func TestLoad_defaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, "http://127.0.0.1:5000", cfg.Predictor.URL)
	require.Equal(t, 1500*time.Millisecond, cfg.Content.SettleDelay)
	require.Equal(t, 10*time.Second, cfg.Notification.NavigationTimeout)
	require.Equal(t, 15*time.Second, cfg.Notification.ContentTimeout)
	require.Equal(t, "div.a3s", cfg.Content.BodySelector)
	require.Equal(t, 10*time.Minute, cfg.Content.IdleTimeout)
	require.Equal(t, 1024, cfg.Content.MaxSurfaces)
	require.Equal(t, []string{"chrome://", "chrome-extension://", "https://www.google.com/search"}, cfg.Navigation.ExcludedPrefixes)
	require.Equal(t, "https://mail.google.com/mail/u/", cfg.Navigation.CompanionPrefix)
	require.Equal(t, "#", cfg.Navigation.FragmentMarker)
}

func TestLoad_fileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
predictor:
  url: http://scorer:5000
  rateLimit: 5
content:
  concurrency: 2
`), 0o600))
	t.Setenv("CONTENT_SETTLE_DELAY", "2s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "http://scorer:5000", cfg.Predictor.URL)
	require.InDelta(t, 5.0, cfg.Predictor.RateLimit, 1e-9)
	require.Equal(t, 2, cfg.Content.Concurrency)
	require.Equal(t, 2*time.Second, cfg.Content.SettleDelay)
}

func TestLoad_invalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("content: [unterminated"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}
