// Package frontend is the HTTP surface: routing, the search and
// autocomplete endpoints, preferences, instance pages and output formats.
package frontend

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/common/version"

	"github.com/fathomsearch/fathom/modules/cache"
	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/plugin"
	"github.com/fathomsearch/fathom/modules/query"
	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Searcher executes a resolved query. Implemented by the search executor.
type Searcher interface {
	Execute(ctx context.Context, q *search.Query) *result.Container
}

// Completer resolves partial queries to suggestions.
type Completer interface {
	Complete(ctx context.Context, query, lang string) ([]string, error)
}

// Frontend wires the HTTP handlers to the search machinery.
type Frontend struct {
	cfg       Config
	logger    log.Logger
	registry  *engine.Registry
	parser    *query.Parser
	searcher  Searcher
	completer Completer
	pipeline  *plugin.Pipeline
	store     cache.Cache

	startTime time.Time
	stats     instanceStats
}

// instanceStats backs the public /stats page.
type instanceStats struct {
	mu           sync.Mutex
	searches     int64
	results      int64
	engineErrors map[string]int64
}

func (s *instanceStats) record(c *result.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.searches++
	s.results += int64(c.Len())
	for _, ue := range c.Unresponsive() {
		if s.engineErrors == nil {
			s.engineErrors = map[string]int64{}
		}
		s.engineErrors[ue.Name]++
	}
}

// New builds the frontend.
func New(cfg Config, registry *engine.Registry, searcher Searcher, completer Completer, pipeline *plugin.Pipeline, store cache.Cache, logger log.Logger) *Frontend {
	return &Frontend{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		parser:    query.NewParser(registry),
		searcher:  searcher,
		completer: completer,
		pipeline:  pipeline,
		store:     store,
		startTime: time.Now(),
	}
}

// RegisterRoutes attaches all handlers to the router.
func (f *Frontend) RegisterRoutes(r *mux.Router) {
	r.Use(f.LogMiddleware)
	r.HandleFunc("/", f.IndexHandler).Methods(http.MethodGet)
	r.HandleFunc("/search", f.SearchHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/autocomplete", f.AutocompleteHandler).Methods(http.MethodGet)
	r.HandleFunc("/about", f.AboutHandler).Methods(http.MethodGet)
	r.HandleFunc("/preferences", f.PreferencesHandler).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/stats", f.StatsHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", f.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/opensearch.xml", f.OpenSearchHandler).Methods(http.MethodGet)
	r.HandleFunc("/robots.txt", f.RobotsHandler).Methods(http.MethodGet)
	r.HandleFunc("/favicon.ico", f.FaviconHandler).Methods(http.MethodGet)
}

func (f *Frontend) IndexHandler(w http.ResponseWriter, r *http.Request) {
	f.renderTemplate(w, indexTemplate, map[string]any{
		"InstanceName": f.cfg.InstanceName,
		"Categories":   f.categories(),
	})
}

func (f *Frontend) AboutHandler(w http.ResponseWriter, r *http.Request) {
	names := f.registry.Names()
	sort.Strings(names)
	f.renderTemplate(w, aboutTemplate, map[string]any{
		"InstanceName": f.cfg.InstanceName,
		"Version":      version.Version,
		"Engines":      names,
		"Plugins":      f.pipeline.Names(),
	})
}

func (f *Frontend) HealthHandler(w http.ResponseWriter, r *http.Request) {
	f.writeJSON(w, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// StatsHandler reports instance level usage in a human readable form.
func (f *Frontend) StatsHandler(w http.ResponseWriter, r *http.Request) {
	f.stats.mu.Lock()
	searches := f.stats.searches
	results := f.stats.results
	engineErrors := make(map[string]int64, len(f.stats.engineErrors))
	for name, n := range f.stats.engineErrors {
		engineErrors[name] = n
	}
	f.stats.mu.Unlock()

	f.writeJSON(w, map[string]any{
		"uptime":        humanize.Time(f.startTime),
		"searches":      searches,
		"results":       humanize.Comma(results),
		"engine_errors": engineErrors,
	})
}

func (f *Frontend) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User-agent: *\nAllow: /\nDisallow: /search\nDisallow: /preferences\n"))
}

func (f *Frontend) FaviconHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// OpenSearchHandler serves the descriptor browsers use to register this
// instance as a search provider.
func (f *Frontend) OpenSearchHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/opensearchdescription+xml")
	err := openSearchTemplate.Execute(w, map[string]any{
		"InstanceName": f.cfg.InstanceName,
		"BaseURL":      f.baseURL(r),
	})
	if err != nil {
		level.Error(f.logger).Log("msg", "rendering opensearch descriptor", "err", err)
	}
}

func (f *Frontend) baseURL(r *http.Request) string {
	if f.cfg.BaseURL != "" {
		return f.cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (f *Frontend) categories() []string {
	cats := f.registry.Categories()
	sort.Strings(cats)
	return cats
}

func (f *Frontend) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		level.Error(f.logger).Log("msg", "writing json response", "err", err)
	}
}
