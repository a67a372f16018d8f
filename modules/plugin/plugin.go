// Package plugin hosts the hooks that run around a search: instant answer
// producers before the engines fire, per result filters, and post search
// passes over the merged container.
package plugin

import (
	"flag"
	"sort"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

// Verdict is the outcome of a pre search hook.
type Verdict int

const (
	// VerdictContinue lets the search proceed unchanged.
	VerdictContinue Verdict = iota
	// VerdictAnswer answers the query instantly; no engine is queried and
	// the answer is the whole response.
	VerdictAnswer
	// VerdictSkip suppresses the search; an attached answer, if any, is
	// the whole response.
	VerdictSkip
	// VerdictModifyQuery rewrites the query before the engines see it.
	VerdictModifyQuery
)

// PreResult carries a pre search hook's verdict and its payload.
type PreResult struct {
	Verdict  Verdict
	Answer   *result.Answer
	NewQuery string
}

// Continue is the zero verdict, shared to keep hook bodies short.
var Continue = PreResult{Verdict: VerdictContinue}

// Plugin is the base every hook implements.
type Plugin interface {
	Name() string
	Description() string
}

// PreSearcher runs before the engines. The first plugin returning a non
// continue verdict decides.
type PreSearcher interface {
	Plugin
	PreSearch(q *search.Query) PreResult
}

// ResultFilter inspects one merged result. Returning false drops it; the
// hook may also rewrite the result in place.
type ResultFilter interface {
	Plugin
	OnResult(q *search.Query, r *result.Result) bool
}

// PostSearcher runs once over the merged container after all engines
// returned.
type PostSearcher interface {
	Plugin
	PostSearch(q *search.Query, c *result.Container)
}

// Config selects which plugins run. All builtins are on by default;
// disabled wins over enabled.
type Config struct {
	Enabled  []string `yaml:"enabled"`
	Disabled []string `yaml:"disabled"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
}

// builtins are constructed fresh per pipeline so plugins may hold state.
var builtins = map[string]func() Plugin{
	"calculator":      func() Plugin { return &Calculator{} },
	"hash":            func() Plugin { return &Hasher{} },
	"unit_converter":  func() Plugin { return &UnitConverter{} },
	"tracker_remover": func() Plugin { return &TrackerRemover{} },
}

// Pipeline is an ordered set of active plugins.
type Pipeline struct {
	plugins []Plugin
}

// NewPipeline instantiates the selected plugins. Unknown names in either
// list are an error so typos do not silently disable a hook.
func NewPipeline(cfg Config) (*Pipeline, error) {
	selected := map[string]bool{}
	if len(cfg.Enabled) > 0 {
		for _, name := range cfg.Enabled {
			if _, ok := builtins[name]; !ok {
				return nil, errors.Errorf("unknown plugin %q", name)
			}
			selected[name] = true
		}
	} else {
		for name := range builtins {
			selected[name] = true
		}
	}
	for _, name := range cfg.Disabled {
		if _, ok := builtins[name]; !ok {
			return nil, errors.Errorf("unknown plugin %q", name)
		}
		delete(selected, name)
	}

	names := make([]string, 0, len(selected))
	for name := range selected {
		names = append(names, name)
	}
	sort.Strings(names)

	p := &Pipeline{}
	for _, name := range names {
		p.plugins = append(p.plugins, builtins[name]())
	}
	return p, nil
}

// Names returns the active plugin names in run order.
func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.plugins))
	for _, pl := range p.plugins {
		names = append(names, pl.Name())
	}
	return names
}

// PreSearch runs the pre search hooks in order and returns the first non
// continue verdict.
func (p *Pipeline) PreSearch(q *search.Query) PreResult {
	for _, pl := range p.plugins {
		pre, ok := pl.(PreSearcher)
		if !ok {
			continue
		}
		if res := pre.PreSearch(q); res.Verdict != VerdictContinue {
			return res
		}
	}
	return Continue
}

// FilterResults runs every result through all result filters. A result
// survives only if every filter passes it.
func (p *Pipeline) FilterResults(q *search.Query, results []result.Result) []result.Result {
	filters := make([]ResultFilter, 0, len(p.plugins))
	for _, pl := range p.plugins {
		if f, ok := pl.(ResultFilter); ok {
			filters = append(filters, f)
		}
	}
	if len(filters) == 0 {
		return results
	}

	kept := results[:0]
	for i := range results {
		keep := true
		for _, f := range filters {
			if !f.OnResult(q, &results[i]) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, results[i])
		}
	}
	return kept
}

// PostSearch runs the post search hooks over the merged container.
func (p *Pipeline) PostSearch(q *search.Query, c *result.Container) {
	for _, pl := range p.plugins {
		if post, ok := pl.(PostSearcher); ok {
			post.PostSearch(q, c)
		}
	}
}
