package engine

// Registry is the lookup structure populated once at startup and read only
// afterwards, so request serving needs no locks.
type Registry struct {
	engines    map[string]Engine
	shortcuts  map[string]string
	categories map[string][]string
	configs    map[string]Config
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		engines:    map[string]Engine{},
		shortcuts:  map[string]string{},
		categories: map[string][]string{},
		configs:    map[string]Config{},
	}
}

// Add registers an engine under its config. Disabled engines are expected
// to be filtered out before this point.
func (r *Registry) Add(e Engine, cfg Config) {
	name := cfg.Name
	if name == "" {
		name = e.Name()
	}

	r.engines[name] = e
	r.configs[name] = cfg

	if cfg.Shortcut != "" {
		r.shortcuts[cfg.Shortcut] = name
	}

	cats := cfg.Categories
	if len(cats) == 0 {
		cats = e.Categories()
	}
	for _, c := range cats {
		r.categories[c] = append(r.categories[c], name)
	}
}

// Get returns the engine registered under name.
func (r *Registry) Get(name string) (Engine, bool) {
	e, ok := r.engines[name]
	return e, ok
}

// Resolve maps a name or shortcut to the canonical engine name.
func (r *Registry) Resolve(nameOrShortcut string) (string, bool) {
	if _, ok := r.engines[nameOrShortcut]; ok {
		return nameOrShortcut, true
	}
	if name, ok := r.shortcuts[nameOrShortcut]; ok {
		return name, true
	}
	return "", false
}

// ResolveShortcut satisfies the query parser's resolver interface.
func (r *Registry) ResolveShortcut(shortcut string) (string, bool) {
	return r.Resolve(shortcut)
}

// ByCategory returns the engine names serving a category. Unknown
// categories yield an empty slice, not an error.
func (r *Registry) ByCategory(category string) []string {
	return append([]string(nil), r.categories[category]...)
}

// Categories returns every category with at least one engine, unsorted.
func (r *Registry) Categories() []string {
	cats := make([]string, 0, len(r.categories))
	for c := range r.categories {
		cats = append(cats, c)
	}
	return cats
}

// Names returns all registered engine names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	return names
}

// EffectiveTimeout merges the config override, the engine default and the
// caller fallback, in that order. Seconds.
func (r *Registry) EffectiveTimeout(name string, fallback float64) float64 {
	if cfg, ok := r.configs[name]; ok && cfg.Timeout != nil {
		return *cfg.Timeout
	}
	if e, ok := r.engines[name]; ok && e.TimeoutSeconds() > 0 {
		return e.TimeoutSeconds()
	}
	return fallback
}

// EffectiveWeight merges the config override and the engine default. A
// configured 0 is honored verbatim.
func (r *Registry) EffectiveWeight(name string) float64 {
	if cfg, ok := r.configs[name]; ok && cfg.Weight != nil {
		return *cfg.Weight
	}
	if e, ok := r.engines[name]; ok {
		return e.Weight()
	}
	return 1.0
}

// Config returns the configuration an engine was loaded with.
func (r *Registry) Config(name string) (Config, bool) {
	cfg, ok := r.configs[name]
	return cfg, ok
}
