package frontend

import (
	"encoding/csv"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-kit/log/level"

	"github.com/fathomsearch/fathom/modules/plugin"
	"github.com/fathomsearch/fathom/modules/query"
	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
	"github.com/fathomsearch/fathom/pkg/locales"
)

const (
	formatHTML = "html"
	formatJSON = "json"
	formatCSV  = "csv"
)

var validTimeRanges = map[string]bool{
	"day": true, "week": true, "month": true, "year": true,
}

// searchResponse is the wire shape of one search, shared by the JSON
// format and the HTML template.
type searchResponse struct {
	Query               string                      `json:"query"`
	NumberOfResults     int                         `json:"number_of_results"`
	Results             []result.Result             `json:"results"`
	Answers             []result.Answer             `json:"answers"`
	Suggestions         []result.Suggestion         `json:"suggestions"`
	Corrections         []result.Correction         `json:"corrections"`
	Infoboxes           []result.Infobox            `json:"infoboxes"`
	UnresponsiveEngines []result.UnresponsiveEngine `json:"unresponsive_engines"`
	Timings             []result.Timing             `json:"timings"`
	PageNo              int                         `json:"pageno"`
}

// SearchHandler serves /search for GET and POST identically.
func (f *Frontend) SearchHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.FormValue("q")
	if strings.TrimSpace(raw) == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	format := strings.ToLower(r.FormValue("format"))
	if format == "" {
		format = formatHTML
	}
	if format != formatHTML && format != formatJSON && format != formatCSV {
		http.Error(w, "unknown format", http.StatusBadRequest)
		return
	}

	prefs := f.loadPreferences(r)
	parsed := f.parser.Parse(raw)
	q := f.buildQuery(r, prefs, parsed)

	// an instant answer is the whole response, the engines never run
	pre := f.pipeline.PreSearch(q)
	switch pre.Verdict {
	case plugin.VerdictAnswer, plugin.VerdictSkip:
		container := result.NewContainer(nil)
		if pre.Answer != nil {
			container.AddAnswer(*pre.Answer)
		}
		f.stats.record(container)
		f.respond(w, format, f.buildResponse(q, container))
		return
	case plugin.VerdictModifyQuery:
		q.CleanQuery = pre.NewQuery
	}

	cacheable := q.ExternalBang == "" && !q.RedirectToFirst
	key := searchCacheKey(q)
	if cacheable {
		if buf, ok := f.store.Get(r.Context(), key); ok {
			var cached searchResponse
			if err := json.Unmarshal(buf, &cached); err == nil {
				f.respond(w, format, &cached)
				return
			}
		}
	}

	container := f.searcher.Execute(r.Context(), q)

	if redirect := container.Redirect(); redirect != "" {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}

	container.ReplaceResults(f.pipeline.FilterResults(q, container.OrderedResults()))
	f.pipeline.PostSearch(q, container)

	f.stats.record(container)

	if q.RedirectToFirst {
		if first := container.Page(1, 1); len(first) > 0 {
			http.Redirect(w, r, first[0].URL, http.StatusFound)
			return
		}
	}

	resp := f.buildResponse(q, container)
	if cacheable {
		if buf, err := json.Marshal(resp); err == nil {
			f.store.Set(r.Context(), key, buf)
		}
	}

	f.respond(w, format, resp)
}

// buildQuery resolves the parsed query, request parameters and cookie
// preferences into an executable query. Query syntax wins over request
// parameters, which win over preferences.
func (f *Frontend) buildQuery(r *http.Request, prefs preferences, parsed query.ParsedQuery) *search.Query {
	q := &search.Query{
		CleanQuery:      parsed.CleanQuery,
		ExternalBang:    parsed.ExternalBang,
		RedirectToFirst: parsed.RedirectToFirst,
		TimeoutLimit:    parsed.TimeoutLimit,
	}

	q.Lang = prefs.Language
	if lang := r.FormValue("language"); lang == "all" || locales.IsSupported(lang) {
		q.Lang = lang
	}
	if len(parsed.Languages) > 0 {
		q.Lang = parsed.Languages[0]
	}

	q.SafeSearch = prefs.SafeSearch
	if n, err := strconv.Atoi(r.FormValue("safesearch")); err == nil && n >= 0 && n <= 2 {
		q.SafeSearch = n
	}
	if parsed.SafeSearch >= 0 {
		q.SafeSearch = parsed.SafeSearch
	}

	if tr := r.FormValue("time_range"); validTimeRanges[tr] {
		q.TimeRange = tr
	}
	if parsed.TimeRange != "" {
		q.TimeRange = parsed.TimeRange
	}

	q.PageNo = 1
	if n, err := strconv.Atoi(r.FormValue("pageno")); err == nil && n > 0 {
		q.PageNo = n
	}

	q.EngineRefs = f.resolveEngineRefs(r, prefs, parsed)
	return q
}

// resolveEngineRefs picks the engines to query: explicit engine bangs, an
// engines parameter, or category selection, in that order.
func (f *Frontend) resolveEngineRefs(r *http.Request, prefs preferences, parsed query.ParsedQuery) []search.EngineRef {
	if len(parsed.Engines) > 0 {
		return f.refsForEngines(parsed.Engines)
	}
	if engines := r.FormValue("engines"); engines != "" {
		return f.refsForEngines(splitCSV(engines))
	}

	categories := parsed.Categories
	if len(categories) == 0 {
		if cats := r.FormValue("categories"); cats != "" {
			categories = splitCSV(cats)
		}
	}
	if len(categories) == 0 {
		categories = prefs.Categories
	}
	if len(categories) == 0 {
		categories = []string{f.cfg.DefaultCategory}
	}

	var refs []search.EngineRef
	seen := map[search.EngineRef]bool{}
	for _, category := range categories {
		for _, name := range f.registry.ByCategory(category) {
			ref := search.EngineRef{Name: name, Category: category}
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// refsForEngines resolves explicit engine names or shortcuts; unknown ones
// are dropped.
func (f *Frontend) refsForEngines(names []string) []search.EngineRef {
	var refs []search.EngineRef
	for _, raw := range names {
		name, ok := f.registry.Resolve(raw)
		if !ok {
			level.Debug(f.logger).Log("msg", "ignoring unknown engine", "engine", raw)
			continue
		}

		category := f.cfg.DefaultCategory
		if eng, ok := f.registry.Get(name); ok && len(eng.Categories()) > 0 {
			category = eng.Categories()[0]
		}
		if cfg, ok := f.registry.Config(name); ok && len(cfg.Categories) > 0 {
			category = cfg.Categories[0]
		}
		refs = append(refs, search.EngineRef{Name: name, Category: category})
	}
	return refs
}

func (f *Frontend) buildResponse(q *search.Query, container *result.Container) *searchResponse {
	resp := &searchResponse{
		Query:               q.CleanQuery,
		NumberOfResults:     container.Len(),
		Results:             container.Page(q.PageNo, f.cfg.ResultsPerPage),
		Answers:             container.Answers(),
		Suggestions:         container.Suggestions(),
		Corrections:         container.Corrections(),
		Infoboxes:           container.Infoboxes(),
		UnresponsiveEngines: container.Unresponsive(),
		Timings:             container.Timings(),
		PageNo:              q.PageNo,
	}
	if resp.PageNo < 1 {
		resp.PageNo = 1
	}
	return resp
}

// searchCacheKey is stable across identical searches, including paging.
func searchCacheKey(q *search.Query) string {
	engines := make([]string, 0, len(q.EngineRefs))
	for _, ref := range q.EngineRefs {
		engines = append(engines, ref.Name+"/"+ref.Category)
	}
	sort.Strings(engines)

	var sb strings.Builder
	sb.WriteString("search:")
	sb.WriteString(q.CleanQuery)
	sb.WriteByte('\x00')
	sb.WriteString(q.Lang)
	sb.WriteByte('\x00')
	sb.WriteString(strconv.Itoa(q.SafeSearch))
	sb.WriteByte('\x00')
	sb.WriteString(q.TimeRange)
	sb.WriteByte('\x00')
	sb.WriteString(strconv.Itoa(q.PageNo))
	sb.WriteByte('\x00')
	sb.WriteString(strings.Join(engines, ","))
	return sb.String()
}

func (f *Frontend) respond(w http.ResponseWriter, format string, resp *searchResponse) {
	switch format {
	case formatJSON:
		f.writeJSON(w, resp)
	case formatCSV:
		f.writeCSV(w, resp)
	default:
		f.renderTemplate(w, resultsTemplate, map[string]any{
			"InstanceName": f.cfg.InstanceName,
			"Response":     resp,
			"Start":        (resp.PageNo-1)*f.cfg.ResultsPerPage + 1,
		})
	}
}

func (f *Frontend) writeCSV(w http.ResponseWriter, resp *searchResponse) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"title", "url", "content", "engine"})
	for _, r := range resp.Results {
		_ = cw.Write([]string{r.Title, r.URL, r.Content, r.Engine})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		level.Error(f.logger).Log("msg", "writing csv response", "err", err)
	}
}
