package app

import (
	"flag"
	"os"
	"strconv"
	"time"

	dslog "github.com/grafana/dskit/log"

	"github.com/fathomsearch/fathom/modules/autocomplete"
	"github.com/fathomsearch/fathom/modules/cache"
	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/frontend"
	"github.com/fathomsearch/fathom/modules/plugin"
	"github.com/fathomsearch/fathom/modules/search"
	"github.com/fathomsearch/fathom/pkg/httpclient"
)

// ServerConfig covers the listening socket and logging.
type ServerConfig struct {
	HTTPListenAddress string `yaml:"http_listen_address"`
	HTTPListenPort    int    `yaml:"http_listen_port"`

	ReadTimeout             time.Duration `yaml:"read_timeout"`
	WriteTimeout            time.Duration `yaml:"write_timeout"`
	IdleTimeout             time.Duration `yaml:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `yaml:"graceful_shutdown_timeout"`

	LogLevel  dslog.Level `yaml:"log_level"`
	LogFormat string      `yaml:"log_format"`
}

func (cfg *ServerConfig) RegisterFlagsAndApplyDefaults(_ string, f *flag.FlagSet) {
	cfg.HTTPListenAddress = "0.0.0.0"
	cfg.HTTPListenPort = 8888
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 60 * time.Second
	cfg.IdleTimeout = 120 * time.Second
	cfg.GracefulShutdownTimeout = 10 * time.Second
	cfg.LogFormat = "logfmt"
	_ = cfg.LogLevel.Set("info")

	f.StringVar(&cfg.HTTPListenAddress, "server.http-listen-address", cfg.HTTPListenAddress, "HTTP server listen address.")
	f.IntVar(&cfg.HTTPListenPort, "server.http-listen-port", cfg.HTTPListenPort, "HTTP server listen port.")
	f.Var(&cfg.LogLevel, "log.level", "Only log messages with the given severity or above.")
}

// Config is the root configuration of the process.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// SecretKey is reserved for features that sign URLs. Warned about when
	// empty, never required.
	SecretKey string `yaml:"secret_key"`
	Debug     bool   `yaml:"debug"`

	Engines      engine.RegistryConfig `yaml:",inline"`
	Search       search.Config         `yaml:"search"`
	Outgoing     httpclient.Config     `yaml:"outgoing"`
	Frontend     frontend.Config       `yaml:"frontend"`
	Autocomplete autocomplete.Config   `yaml:"autocomplete"`
	Plugins      plugin.Config         `yaml:"plugins"`
}

// RegisterFlagsAndApplyDefaults seeds every section with its defaults.
func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	cfg.Server.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Engines.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Search.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Outgoing.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Frontend.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Autocomplete.RegisterFlagsAndApplyDefaults(prefix, f)
	cfg.Plugins.RegisterFlagsAndApplyDefaults(prefix, f)
}

// ApplyEnvOverrides honors the well known environment variables, which win
// over the config file.
func (cfg *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SEARXNG_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPListenPort = port
		}
	}
	if v := os.Getenv("SEARXNG_BIND_ADDRESS"); v != "" {
		cfg.Server.HTTPListenAddress = v
	}
	if v := os.Getenv("SEARXNG_BASE_URL"); v != "" {
		cfg.Frontend.BaseURL = v
	}
	if v := os.Getenv("SEARXNG_SECRET_KEY"); v != "" {
		cfg.SecretKey = v
	}
	if v := os.Getenv("SEARXNG_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
	if cfg.Debug {
		_ = cfg.Server.LogLevel.Set("debug")
	}
}

// ConfigWarning bundles a warning with an optional explanation.
type ConfigWarning struct {
	Message string
	Explain string
}

// CheckConfig returns warnings for configurations that work but probably
// are not what the operator wants.
func (cfg *Config) CheckConfig() []ConfigWarning {
	var warnings []ConfigWarning

	enabled := 0
	for _, ec := range cfg.Engines.Engines {
		if !ec.Disabled {
			enabled++
		}
	}
	if enabled == 0 {
		warnings = append(warnings, ConfigWarning{
			Message: "no engines enabled",
			Explain: "every search will return zero results",
		})
	}

	if cfg.SecretKey == "" {
		warnings = append(warnings, ConfigWarning{
			Message: "secret_key is empty",
		})
	}

	if !cfg.Outgoing.VerifySSL {
		warnings = append(warnings, ConfigWarning{
			Message: "outgoing.verify_ssl is disabled",
			Explain: "upstream certificates are not checked",
		})
	}

	if cfg.Frontend.Cache.Backend == cache.BackendNone {
		warnings = append(warnings, ConfigWarning{
			Message: "result cache is disabled",
			Explain: "identical searches will fan out every time",
		})
	}

	return warnings
}
