package search

import "flag"

// Config controls the executor's timeout and suspension behavior.
type Config struct {
	// RequestTimeout is the default per engine timeout in seconds, used
	// when neither the query nor the engine config set one.
	RequestTimeout float64 `yaml:"request_timeout"`
	// MaxRequestTimeout caps every per engine timeout, including ones
	// requested through query syntax.
	MaxRequestTimeout float64 `yaml:"max_request_timeout"`

	// BanTimeOnFail is how long a repeatedly failing engine is suspended,
	// in seconds.
	BanTimeOnFail float64 `yaml:"ban_time_on_fail"`
	// MaxBanTimeOnFail bounds the suspension window.
	MaxBanTimeOnFail float64 `yaml:"max_ban_time_on_fail"`
}

// RegisterFlagsAndApplyDefaults sets the defaults.
func (cfg *Config) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
	cfg.RequestTimeout = 3.0
	cfg.MaxRequestTimeout = 10.0
	cfg.BanTimeOnFail = 5.0
	cfg.MaxBanTimeOnFail = 120.0
}
