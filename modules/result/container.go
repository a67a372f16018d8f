package result

import (
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type suggestionKey struct {
	text   string
	engine string
}

// Container accumulates the output of all engines of one search. Producers
// (one goroutine per engine) write concurrently; readers only call the get
// methods after the executor has joined all producers. Each collection is
// guarded independently so slow writers in one do not serialize the others.
type Container struct {
	engineWeights map[string]float64

	resultsMu sync.Mutex
	results   map[uint64]*Result
	order     []uint64
	frozen    bool

	answersMu sync.Mutex
	answers   []Answer
	seenAns   map[string]struct{}

	suggestionsMu sync.Mutex
	suggestions   []Suggestion
	seenSugg      map[suggestionKey]struct{}

	correctionsMu sync.Mutex
	corrections   []Correction
	seenCorr      map[suggestionKey]struct{}

	infoboxesMu sync.Mutex
	infoboxes   []Infobox

	unresponsiveMu sync.Mutex
	unresponsive   []UnresponsiveEngine

	timingsMu sync.Mutex
	timings   []Timing

	redirectMu  sync.Mutex
	redirectURL string
}

// NewContainer builds an empty container. engineWeights maps engine name to
// its effective weight; engines missing from the map count as weight 1.
func NewContainer(engineWeights map[string]float64) *Container {
	if engineWeights == nil {
		engineWeights = map[string]float64{}
	}
	return &Container{
		engineWeights: engineWeights,
		results:       map[uint64]*Result{},
		seenAns:       map[string]struct{}{},
		seenSugg:      map[suggestionKey]struct{}{},
		seenCorr:      map[suggestionKey]struct{}{},
	}
}

// AddResult merges one result into the container. On a dedup key collision
// the stored record absorbs the new one: engines are unioned, positions
// appended, a missing snippet adopted. All other fields keep their first
// writer. An engine repeating a URL it already contributed is ignored, so
// len(Engines) and len(Positions) stay in step.
func (c *Container) AddResult(r Result) {
	key := xxhash.Sum64String(DedupKey(r.URL))

	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()

	stored, ok := c.results[key]
	if !ok {
		cp := r
		c.results[key] = &cp
		c.order = append(c.order, key)
		return
	}

	newEngine := false
	for _, e := range r.Engines {
		if !containsString(stored.Engines, e) {
			stored.Engines = append(stored.Engines, e)
			newEngine = true
		}
	}
	if newEngine {
		stored.Positions = append(stored.Positions, r.Positions...)
	}
	if stored.Content == "" && r.Content != "" {
		stored.Content = r.Content
	}
}

// Extend merges everything an engine returned.
func (c *Container) Extend(er *EngineResults) {
	for _, r := range er.Results {
		c.AddResult(r)
	}
	for _, a := range er.Answers {
		c.AddAnswer(a)
	}
	for _, s := range er.Suggestions {
		c.AddSuggestion(s)
	}
	for _, corr := range er.Corrections {
		c.AddCorrection(corr)
	}
	for _, ib := range er.Infoboxes {
		c.AddInfobox(ib)
	}
}

// AddAnswer stores an answer, deduplicated by exact text. Earliest wins.
func (c *Container) AddAnswer(a Answer) {
	c.answersMu.Lock()
	defer c.answersMu.Unlock()

	if _, ok := c.seenAns[a.Text]; ok {
		return
	}
	c.seenAns[a.Text] = struct{}{}
	c.answers = append(c.answers, a)
}

// AddSuggestion stores a suggestion with set semantics on (text, engine).
func (c *Container) AddSuggestion(s Suggestion) {
	c.suggestionsMu.Lock()
	defer c.suggestionsMu.Unlock()

	k := suggestionKey{text: s.Text, engine: s.Engine}
	if _, ok := c.seenSugg[k]; ok {
		return
	}
	c.seenSugg[k] = struct{}{}
	c.suggestions = append(c.suggestions, s)
}

// AddCorrection stores a correction with set semantics on (text, engine).
func (c *Container) AddCorrection(corr Correction) {
	c.correctionsMu.Lock()
	defer c.correctionsMu.Unlock()

	k := suggestionKey{text: corr.Text, engine: corr.Engine}
	if _, ok := c.seenCorr[k]; ok {
		return
	}
	c.seenCorr[k] = struct{}{}
	c.corrections = append(c.corrections, corr)
}

// AddInfobox stores an infobox keyed by ID. On collision the one with the
// longer content replaces the stored one.
func (c *Container) AddInfobox(ib Infobox) {
	c.infoboxesMu.Lock()
	defer c.infoboxesMu.Unlock()

	for i, existing := range c.infoboxes {
		if existing.ID == ib.ID {
			if len(ib.Content) > len(existing.Content) {
				c.infoboxes[i] = ib
			}
			return
		}
	}
	c.infoboxes = append(c.infoboxes, ib)
}

// AddUnresponsive records an engine that failed to contribute.
func (c *Container) AddUnresponsive(ue UnresponsiveEngine) {
	c.unresponsiveMu.Lock()
	defer c.unresponsiveMu.Unlock()
	c.unresponsive = append(c.unresponsive, ue)
}

// AddTiming records how one engine performed.
func (c *Container) AddTiming(t Timing) {
	c.timingsMu.Lock()
	defer c.timingsMu.Unlock()
	c.timings = append(c.timings, t)
}

// SetRedirect stores a redirect target. Last writer wins; in practice only
// the external bang codepath writes it, before any engine runs.
func (c *Container) SetRedirect(u string) {
	c.redirectMu.Lock()
	defer c.redirectMu.Unlock()
	c.redirectURL = u
}

// Redirect returns the redirect target, "" if none.
func (c *Container) Redirect() string {
	c.redirectMu.Lock()
	defer c.redirectMu.Unlock()
	return c.redirectURL
}

// score computes the fused rank score of a stored result:
//
//	weight = product(engine weights) * number of engines
//	score  = sum over positions of weight / position
//
// The multi engine boost and the reciprocal rank sum are both load bearing.
// A configured weight of 0 zeroes the product, which operators can use to
// soft-disable an engine's influence; this is intentional.
func (c *Container) score(r *Result) float64 {
	weight := 1.0
	for _, e := range r.Engines {
		if w, ok := c.engineWeights[e]; ok {
			weight *= w
		}
	}
	weight *= float64(len(r.Engines))

	score := 0.0
	for _, p := range r.Positions {
		if p > 0 {
			score += weight / float64(p)
		}
	}
	return score
}

// OrderedResults returns all results scored and sorted by score descending.
// The sort is stable: ties keep insertion order, so calling this twice on
// an unchanged container yields an identical order. After ReplaceResults
// the stored order is returned verbatim.
func (c *Container) OrderedResults() []Result {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()

	out := make([]Result, 0, len(c.order))
	for _, key := range c.order {
		r := *c.results[key]
		if !c.frozen {
			r.Score = c.score(&r)
		}
		out = append(out, r)
	}

	if !c.frozen {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	}
	return out
}

// Page returns the n-th page (1-indexed) of the ordered results. Pages past
// the end are empty, never an error.
func (c *Container) Page(n, perPage int) []Result {
	if n < 1 {
		n = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	ordered := c.OrderedResults()
	start := (n - 1) * perPage
	if start > len(ordered) {
		start = len(ordered)
	}
	end := start + perPage
	if end > len(ordered) {
		end = len(ordered)
	}
	return ordered[start:end]
}

// Len returns the number of distinct results.
func (c *Container) Len() int {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()
	return len(c.results)
}

// Answers returns all stored answers in insertion order.
func (c *Container) Answers() []Answer {
	c.answersMu.Lock()
	defer c.answersMu.Unlock()
	return append([]Answer(nil), c.answers...)
}

// Suggestions returns all stored suggestions in insertion order.
func (c *Container) Suggestions() []Suggestion {
	c.suggestionsMu.Lock()
	defer c.suggestionsMu.Unlock()
	return append([]Suggestion(nil), c.suggestions...)
}

// Corrections returns all stored corrections in insertion order.
func (c *Container) Corrections() []Correction {
	c.correctionsMu.Lock()
	defer c.correctionsMu.Unlock()
	return append([]Correction(nil), c.corrections...)
}

// Infoboxes returns all stored infoboxes.
func (c *Container) Infoboxes() []Infobox {
	c.infoboxesMu.Lock()
	defer c.infoboxesMu.Unlock()
	return append([]Infobox(nil), c.infoboxes...)
}

// Unresponsive returns the engines that failed this search.
func (c *Container) Unresponsive() []UnresponsiveEngine {
	c.unresponsiveMu.Lock()
	defer c.unresponsiveMu.Unlock()
	return append([]UnresponsiveEngine(nil), c.unresponsive...)
}

// Timings returns the per engine timings.
func (c *Container) Timings() []Timing {
	c.timingsMu.Lock()
	defer c.timingsMu.Unlock()
	return append([]Timing(nil), c.timings...)
}

// ReplaceResults swaps the stored result set for the given slice. The given
// order becomes authoritative: later reads return it as is instead of
// re-scoring and re-sorting, so filters and post search passes can reorder.
func (c *Container) ReplaceResults(results []Result) {
	c.resultsMu.Lock()
	defer c.resultsMu.Unlock()

	c.frozen = true
	c.results = make(map[uint64]*Result, len(results))
	c.order = c.order[:0]
	for i := range results {
		key := xxhash.Sum64String(DedupKey(results[i].URL))
		if _, ok := c.results[key]; ok {
			continue
		}
		cp := results[i]
		c.results[key] = &cp
		c.order = append(c.order, key)
	}
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
