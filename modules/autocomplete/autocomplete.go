// Package autocomplete fetches query suggestions from an upstream
// provider, deduplicating concurrent lookups and caching recent ones.
package autocomplete

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/fathomsearch/fathom/modules/cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxSuggestionBody = 1 << 20

// Doer performs an HTTP request.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config selects the suggestion provider.
type Config struct {
	Backend        string `yaml:"backend"`
	MaxSuggestions int    `yaml:"max_suggestions"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
	cfg.Backend = "duckduckgo"
	cfg.MaxSuggestions = 10
}

// backendURL builds the provider request URL for a query.
type backendURL func(query, lang string) string

var backends = map[string]backendURL{
	"duckduckgo": func(query, _ string) string {
		return "https://duckduckgo.com/ac/?type=list&q=" + url.QueryEscape(query)
	},
	"google": func(query, lang string) string {
		u := "https://www.google.com/complete/search?client=firefox&q=" + url.QueryEscape(query)
		if lang != "" && lang != "all" {
			u += "&hl=" + url.QueryEscape(lang)
		}
		return u
	},
	"wikipedia": func(query, lang string) string {
		sub := "en"
		if lang != "" && lang != "all" {
			if i := strings.IndexByte(lang, '-'); i > 0 {
				lang = lang[:i]
			}
			sub = lang
		}
		return fmt.Sprintf("https://%s.wikipedia.org/w/api.php?action=opensearch&format=json&limit=10&search=%s",
			sub, url.QueryEscape(query))
	},
	"brave": func(query, _ string) string {
		return "https://search.brave.com/api/suggest?q=" + url.QueryEscape(query)
	},
}

// Backends lists the configurable provider names.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	return names
}

// Completer resolves partial queries to suggestions. Concurrent identical
// lookups share one upstream request.
type Completer struct {
	cfg    Config
	client Doer
	cache  cache.Cache
	group  singleflight.Group
}

// New builds a completer. cache may be the none backend but not nil.
func New(cfg Config, client Doer, c cache.Cache) (*Completer, error) {
	if _, ok := backends[cfg.Backend]; !ok {
		return nil, errors.Errorf("unknown autocomplete backend %q", cfg.Backend)
	}
	return &Completer{cfg: cfg, client: client, cache: c}, nil
}

// Complete returns suggestions for a partial query. Empty input yields an
// empty list without an upstream call.
func (c *Completer) Complete(ctx context.Context, query, lang string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []string{}, nil
	}

	key := c.cfg.Backend + "\x00" + lang + "\x00" + query
	if buf, ok := c.cache.Get(ctx, "ac:"+key); ok {
		var cached []string
		if err := json.Unmarshal(buf, &cached); err == nil {
			return cached, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.fetch(ctx, query, lang)
	})
	if err != nil {
		return nil, err
	}

	suggestions := v.([]string)
	if buf, err := json.Marshal(suggestions); err == nil {
		c.cache.Set(ctx, "ac:"+key, buf)
	}
	return suggestions, nil
}

func (c *Completer) fetch(ctx context.Context, query, lang string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, backends[c.cfg.Backend](query, lang), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "autocomplete request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("autocomplete status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSuggestionBody))
	if err != nil {
		return nil, errors.Wrap(err, "autocomplete body")
	}

	return c.parse(body)
}

// parse handles the opensearch shape every provider speaks: a JSON array
// whose second element is the suggestion list.
func (c *Completer) parse(body []byte) ([]string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "autocomplete parse")
	}
	if len(payload) < 2 {
		return []string{}, nil
	}

	items, ok := payload[1].([]any)
	if !ok {
		return []string{}, nil
	}

	suggestions := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			continue
		}
		suggestions = append(suggestions, s)
		if len(suggestions) >= c.cfg.MaxSuggestions {
			break
		}
	}
	return suggestions, nil
}
