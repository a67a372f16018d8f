// Package search contains the fan-out executor: it dispatches one query to
// many engines concurrently, classifies failures, and merges everything
// into a result container.
package search

// EngineRef names an engine in the context of the category it is being
// queried for. The same engine may appear in several categories with
// distinct presentation.
type EngineRef struct {
	Name     string
	Category string
}

// Query is the fully resolved request handed to the executor. The HTTP
// layer builds it from a ParsedQuery plus registry lookups.
type Query struct {
	CleanQuery string
	EngineRefs []EngineRef

	Lang       string
	SafeSearch int
	PageNo     int
	TimeRange  string

	// TimeoutLimit caps per engine timeouts, seconds; 0 means unset.
	TimeoutLimit float64

	// ExternalBang, when set, turns the search into a redirect to a third
	// party site.
	ExternalBang    string
	RedirectToFirst bool

	// EngineData carries opaque per engine state between pages, keyed by
	// engine name.
	EngineData map[string]map[string]string
}
