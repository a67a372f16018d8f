package frontend

import (
	"flag"

	"github.com/fathomsearch/fathom/modules/cache"
)

// Config covers the HTTP surface: instance identity, paging and the result
// cache.
type Config struct {
	// InstanceName shows up on the index and about pages.
	InstanceName string `yaml:"instance_name"`
	// BaseURL is the public URL of this instance, used in the opensearch
	// descriptor and absolute links.
	BaseURL string `yaml:"base_url"`

	ResultsPerPage int `yaml:"results_per_page"`

	// DefaultLanguage applies when neither the query nor the preferences
	// cookie pick one.
	DefaultLanguage   string `yaml:"default_language"`
	DefaultSafeSearch int    `yaml:"default_safesearch"`
	DefaultCategory   string `yaml:"default_category"`

	Cache cache.Config `yaml:"cache"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	cfg.InstanceName = "fathom"
	cfg.ResultsPerPage = 10
	cfg.DefaultLanguage = "all"
	cfg.DefaultCategory = "general"
	cfg.Cache.RegisterFlagsAndApplyDefaults(prefix, f)
}
