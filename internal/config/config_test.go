package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sikukuu.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "KE", cfg.Country.Code)
	assert.Equal(t, "https://date.nager.at/api/v3/PublicHolidays", cfg.Baseline.BaseURL)
	assert.Equal(t, 25, cfg.Baseline.TimeoutSecs)
	assert.Equal(t, 25, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 3, cfg.Scrape.MaxRetries)
	assert.InDelta(t, 2.0, cfg.Scrape.HostRate, 0.001)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/holidays
country:
  code: UG
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/holidays", cfg.Store.DatabaseURL)
	assert.Equal(t, "UG", cfg.Country.Code)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Scrape.MaxRetries)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SIKUKUU_STORE_DRIVER", "postgres")
	t.Setenv("SIKUKUU_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("SIKUKUU_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func validDefaults() *Config {
	return &Config{
		Store:    StoreConfig{Driver: "sqlite", DatabaseURL: "sikukuu.db"},
		Country:  CountryConfig{Code: "KE"},
		Baseline: BaselineConfig{BaseURL: "https://date.nager.at/api/v3/PublicHolidays", TimeoutSecs: 25},
		Scrape:   ScrapeConfig{TimeoutSecs: 25, MaxRetries: 3, HostRate: 2},
		Server:   ServerConfig{Port: 8080},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidateIngest(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("ingest"))

	cfg.Baseline.BaseURL = ""
	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "baseline.base_url is required")
}

func TestValidateIngest_ScrapeBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Scrape.MaxRetries = 11
	err := cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.max_retries must be between 0 and 10")

	cfg.Scrape.MaxRetries = 3
	cfg.Scrape.HostRate = 0
	err = cfg.Validate("ingest")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "scrape.host_rate must be > 0")
}

func TestValidateServe(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))

	cfg.Server.Port = 0
	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateStoreChecks(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Store.DatabaseURL = ""
	cfg.Country.Code = ""

	err := cfg.Validate("store")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "country.code is required")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
