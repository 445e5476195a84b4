package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cronzimus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:5000", cfg.HTTP.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, time.Local, cfg.Location())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
environment: staging
http:
  addr: 127.0.0.1:8080
scheduler:
  timezone: UTC
  stop_timeout: 5s
log:
  level: debug
  format: json
database:
  url: postgres://u:p@db:5432/x
  max_conns: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Environment)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.StopTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
	assert.EqualValues(t, 4, cfg.Database.MaxConns)
	assert.Equal(t, "UTC", cfg.Location().String())

	// untouched keys keep their defaults
	assert.Equal(t, Default().HTTP.ShutdownTimeout, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, Default().Database.RetryAttempts, cfg.Database.RetryAttempts)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "http:\n  addr: 127.0.0.1:8080\nlog:\n  level: debug\n")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("SCHEDULER_STOP_TIMEOUT", "2s")
	t.Setenv("LOG_FILE", "/var/log/cronzimus/server.log")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "warning", cfg.Log.Level)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 2*time.Second, cfg.Scheduler.StopTimeout)
	assert.Equal(t, "/var/log/cronzimus/server.log", cfg.Log.File)
	assert.Equal(t, 512, cfg.Log.FileMaxSizeMB)
}

func TestLoad_EnvAlias(t *testing.T) {
	t.Setenv("ENV", "staging")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvStaging, cfg.Environment)

	t.Setenv("ENVIRONMENT", "production")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Environment)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "http: [unclosed"))
	assert.Error(t, err)

	t.Setenv("HTTP_READ_TIMEOUT", "soon")
	_, err = Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"environment", func(c *Config) { c.Environment = "qa" }},
		{"addr", func(c *Config) { c.HTTP.Addr = "localhost" }},
		{"shutdown timeout", func(c *Config) { c.HTTP.ShutdownTimeout = 0 }},
		{"stop timeout", func(c *Config) { c.Scheduler.StopTimeout = -time.Second }},
		{"timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus_Mons" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"log file size", func(c *Config) { c.Log.FileMaxSizeMB = -1 }},
		{"database url", func(c *Config) { c.Database.URL = " " }},
		{"pool sizes", func(c *Config) { c.Database.MinConns = 20 }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
