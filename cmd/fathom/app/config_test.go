package app

import (
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/fathomsearch/fathom/modules/cache"
)

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.RegisterFlagsAndApplyDefaults("", flag.NewFlagSet("", flag.PanicOnError))
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, 8888, cfg.Server.HTTPListenPort)
	assert.Equal(t, "logfmt", cfg.Server.LogFormat)
	assert.NotEmpty(t, cfg.Engines.Engines)
	assert.Equal(t, 3.0, cfg.Search.RequestTimeout)
	assert.True(t, cfg.Outgoing.VerifySSL)
	assert.Equal(t, "duckduckgo", cfg.Autocomplete.Backend)
	assert.Equal(t, cache.BackendMemory, cfg.Frontend.Cache.Backend)
}

func TestConfigUnmarshalStrict(t *testing.T) {
	cfg := defaultConfig()

	raw := `
server:
  http_listen_port: 9999
  log_level: debug
search:
  request_timeout: 5.0
outgoing:
  verify_ssl: false
  hedge_requests_at: 400ms
frontend:
  instance_name: myinstance
  cache:
    backend: redis
    redis:
      endpoint: redis:6379
engines:
  - name: google
    shortcut: g
  - name: duckduckgo
    shortcut: ddg
    disabled: true
`
	require.NoError(t, yaml.UnmarshalStrict([]byte(raw), cfg))

	assert.Equal(t, 9999, cfg.Server.HTTPListenPort)
	assert.Equal(t, 5.0, cfg.Search.RequestTimeout)
	assert.False(t, cfg.Outgoing.VerifySSL)
	assert.Equal(t, 400*time.Millisecond, cfg.Outgoing.HedgeRequestsAt)
	assert.Equal(t, "myinstance", cfg.Frontend.InstanceName)
	assert.Equal(t, "redis:6379", cfg.Frontend.Cache.Redis.Endpoint)

	// the engines section replaces the default list wholesale
	require.Len(t, cfg.Engines.Engines, 2)
	assert.True(t, cfg.Engines.Engines[1].Disabled)

	// unknown keys must be rejected
	require.Error(t, yaml.UnmarshalStrict([]byte("serverr:\n  port: 1\n"), defaultConfig()))
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SEARXNG_PORT", "7777")
	t.Setenv("SEARXNG_BIND_ADDRESS", "127.0.0.1")
	t.Setenv("SEARXNG_BASE_URL", "https://search.example.org")
	t.Setenv("SEARXNG_SECRET_KEY", "sekrit")
	t.Setenv("SEARXNG_DEBUG", "1")

	cfg.ApplyEnvOverrides()

	assert.Equal(t, 7777, cfg.Server.HTTPListenPort)
	assert.Equal(t, "127.0.0.1", cfg.Server.HTTPListenAddress)
	assert.Equal(t, "https://search.example.org", cfg.Frontend.BaseURL)
	assert.Equal(t, "sekrit", cfg.SecretKey)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.Server.LogLevel.String())
}

func TestCheckConfigWarnings(t *testing.T) {
	cfg := defaultConfig()
	cfg.SecretKey = "set"

	warnings := cfg.CheckConfig()
	assert.Empty(t, warnings)

	cfg.Outgoing.VerifySSL = false
	cfg.Frontend.Cache.Backend = cache.BackendNone
	for i := range cfg.Engines.Engines {
		cfg.Engines.Engines[i].Disabled = true
	}

	warnings = cfg.CheckConfig()
	assert.Len(t, warnings, 3)
}
