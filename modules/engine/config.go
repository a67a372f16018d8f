package engine

import (
	"flag"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Config is one entry of the engines list in the configuration file. Name
// is the instance identity, Engine selects the implementation in the
// factory; the two usually coincide.
type Config struct {
	Name        string   `yaml:"name"`
	Engine      string   `yaml:"engine"`
	Categories  []string `yaml:"categories,omitempty"`
	Shortcut    string   `yaml:"shortcut,omitempty"`
	Disabled    bool     `yaml:"disabled,omitempty"`
	Timeout     *float64 `yaml:"timeout,omitempty"`
	Weight      *float64 `yaml:"weight,omitempty"`
	DisplayName string   `yaml:"display_name,omitempty"`
	APIKey      string   `yaml:"api_key,omitempty"`

	// Extra carries engine specific keys opaquely.
	Extra map[string]any `yaml:",inline"`
}

// DecodeExtra unmarshals the opaque per engine keys into out.
func (c *Config) DecodeExtra(out any) error {
	if len(c.Extra) == 0 {
		return nil
	}
	if err := mapstructure.Decode(c.Extra, out); err != nil {
		return errors.Wrapf(err, "decoding extra settings of engine %s", c.Name)
	}
	return nil
}

// RegistryConfig configures the registry as a whole.
type RegistryConfig struct {
	Engines []Config `yaml:"engines,omitempty"`
}

// RegisterFlagsAndApplyDefaults seeds the built in engine list. A config
// file engines section replaces it wholesale.
func (cfg *RegistryConfig) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
	cfg.Engines = DefaultEngineConfigs()
}

// DefaultEngineConfigs is the engine set served when the configuration
// file has no engines section.
func DefaultEngineConfigs() []Config {
	return []Config{
		{Name: "google", Engine: "google", Shortcut: "g", Categories: []string{"general"}},
		{Name: "duckduckgo", Engine: "duckduckgo", Shortcut: "ddg", Categories: []string{"general"}},
		{Name: "bing", Engine: "bing", Shortcut: "bi", Categories: []string{"general"}},
		{Name: "brave", Engine: "brave", Shortcut: "br", Categories: []string{"general"}},
		{Name: "wikipedia", Engine: "wikipedia", Shortcut: "wp", Categories: []string{"general"}},
		{Name: "google_images", Engine: "google_images", Shortcut: "gi", Categories: []string{"images"}},
		{Name: "bing_images", Engine: "bing_images", Shortcut: "bii", Categories: []string{"images"}},
		{Name: "youtube", Engine: "youtube", Shortcut: "yt", Categories: []string{"videos"}},
		{Name: "google_news", Engine: "google_news", Shortcut: "gn", Categories: []string{"news"}},
		{Name: "arxiv", Engine: "arxiv", Shortcut: "arx", Categories: []string{"science"}},
		{Name: "github", Engine: "github", Shortcut: "gh", Categories: []string{"it"}},
		{Name: "stackoverflow", Engine: "stackoverflow", Shortcut: "so", Categories: []string{"it"}},
	}
}
