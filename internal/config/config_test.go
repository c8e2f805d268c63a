package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  api_key: topsecret
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
redis:
  address: localhost:6379
  price_cache_ttl_seconds: 120
pricing:
  vat_rate: 0.18
calendar:
  fetch_window_past_days: 7
  fetch_window_future_days: 60
  max_range_days: 45
ratelimit:
  requests_per_second: 5
  burst: 10
telegram:
  enabled: true
  bot_token: abc
  manager_chat_ids: [111, 222]
`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "topsecret", cfg.Server.APIKey)
	assert.Equal(t, 0.18, cfg.Pricing.VATRate)
	assert.Equal(t, 2*time.Minute, cfg.PriceCacheTTL())
	assert.Equal(t, 45, cfg.Calendar.MaxRangeDays)
	assert.Equal(t, []int64{111, 222}, cfg.Telegram.ManagerChatIDs)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.17, cfg.Pricing.VATRate)
	assert.Equal(t, 30, cfg.Calendar.FetchWindowPastDays)
	assert.Equal(t, 365, cfg.Calendar.FetchWindowFutureDays)
	assert.Equal(t, 90, cfg.Calendar.MaxRangeDays)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Equal(t, time.Duration(0), cfg.PriceCacheTTL())
}

func TestLoadExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_BACKOFFICE_KEY", "from-env")
	path := writeConfig(t, `
server:
  api_key: ${TEST_BACKOFFICE_KEY}
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
`)

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.APIKey)
}

func TestLoadRejectsBadVATRate(t *testing.T) {
	path := writeConfig(t, `
pricing:
  vat_rate: 1.17
database:
  path: `+filepath.Join(t.TempDir(), "test.db")+`
`)

	_, err := Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "vat_rate")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFetchWindow(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Calendar.FetchWindowPastDays = 10
	cfg.Calendar.FetchWindowFutureDays = 20

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	from, to := cfg.FetchWindow(now)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 4, 4, 12, 0, 0, 0, time.UTC), to)
}
