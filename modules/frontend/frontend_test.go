package frontend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomsearch/fathom/modules/cache"
	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/plugin"
	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

type fakeEngine struct {
	engine.Defaults
	name string
	cats []string
}

func (f *fakeEngine) Name() string { return f.name }

func (f *fakeEngine) Categories() []string {
	if len(f.cats) > 0 {
		return f.cats
	}
	return []string{"general"}
}

func (f *fakeEngine) BuildRequest(engine.RequestParams) (*engine.Request, error) {
	return engine.NewGet("https://" + f.name + ".test"), nil
}

func (f *fakeEngine) ParseResponse(*engine.Response) (*result.EngineResults, error) {
	return &result.EngineResults{}, nil
}

// fakeSearcher records queries and plays back canned results.
type fakeSearcher struct {
	calls   int
	lastQ   *search.Query
	results []result.Result
}

func (f *fakeSearcher) Execute(_ context.Context, q *search.Query) *result.Container {
	f.calls++
	f.lastQ = q

	c := result.NewContainer(nil)
	if q.ExternalBang != "" {
		if u := search.ExternalBangURL(q.ExternalBang, q.CleanQuery); u != "" {
			c.SetRedirect(u)
		}
		return c
	}
	for _, r := range f.results {
		c.AddResult(r)
	}
	return c
}

type fakeCompleter struct {
	suggestions []string
}

func (f *fakeCompleter) Complete(context.Context, string, string) ([]string, error) {
	return f.suggestions, nil
}

func testFrontend(t *testing.T, searcher Searcher) (*Frontend, *mux.Router) {
	t.Helper()

	reg := engine.NewRegistry()
	reg.Add(&fakeEngine{name: "alpha"}, engine.Config{Name: "alpha", Shortcut: "al"})
	reg.Add(&fakeEngine{name: "beta", cats: []string{"images"}}, engine.Config{Name: "beta", Categories: []string{"images"}})

	pipeline, err := plugin.NewPipeline(plugin.Config{})
	require.NoError(t, err)

	store, err := cache.New(cache.Config{Backend: cache.BackendMemory, MaxEntries: 16, TTL: 0}, log.NewNopLogger())
	require.NoError(t, err)

	cfg := Config{}
	cfg.RegisterFlagsAndApplyDefaults("", nil)

	f := New(cfg, reg, searcher, &fakeCompleter{suggestions: []string{"golang", "goland"}}, pipeline, store, log.NewNopLogger())
	r := mux.NewRouter()
	f.RegisterRoutes(r)
	return f, r
}

func get(r *mux.Router, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestSearchEmptyQueryRedirects(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/search?q=")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSearchJSON(t *testing.T) {
	searcher := &fakeSearcher{results: []result.Result{
		{URL: "https://example.com/a", Title: "A", Engine: "alpha", Engines: []string{"alpha"}, Positions: []int{1}},
	}}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q=golang&format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "golang", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://example.com/a", resp.Results[0].URL)
	assert.Equal(t, 1, resp.PageNo)

	// general category resolves through the registry
	require.NotNil(t, searcher.lastQ)
	require.Len(t, searcher.lastQ.EngineRefs, 1)
	assert.Equal(t, search.EngineRef{Name: "alpha", Category: "general"}, searcher.lastQ.EngineRefs[0])
}

func TestSearchCSV(t *testing.T) {
	searcher := &fakeSearcher{results: []result.Result{
		{URL: "https://example.com/a", Title: "A", Content: "snippet", Engine: "alpha", Engines: []string{"alpha"}, Positions: []int{1}},
	}}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q=golang&format=csv")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "title,url,content,engine", lines[0])
	assert.Equal(t, "A,https://example.com/a,snippet,alpha", lines[1])
}

func TestSearchUnknownFormat(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/search?q=golang&format=xml")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchExternalBangRedirects(t *testing.T) {
	searcher := &fakeSearcher{}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q="+url.QueryEscape("!g foo bar"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://www.google.com/search?q=foo%20bar", rec.Header().Get("Location"))
}

func TestSearchRedirectToFirst(t *testing.T) {
	searcher := &fakeSearcher{results: []result.Result{
		{URL: "https://example.com/first", Title: "First", Engine: "alpha", Engines: []string{"alpha"}, Positions: []int{1}},
	}}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q="+url.QueryEscape("!! golang"))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/first", rec.Header().Get("Location"))
}

func TestSearchCacheSkipsSecondExecution(t *testing.T) {
	searcher := &fakeSearcher{results: []result.Result{
		{URL: "https://example.com/a", Title: "A", Engine: "alpha", Engines: []string{"alpha"}, Positions: []int{1}},
	}}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q=golang&format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = get(r, "/search?q=golang&format=json")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1, searcher.calls)

	// a different page is a different cache entry
	rec = get(r, "/search?q=golang&format=json&pageno=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, searcher.calls)
}

func TestSearchEngineBangOverridesCategories(t *testing.T) {
	searcher := &fakeSearcher{}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q="+url.QueryEscape("!al golang")+"&format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, searcher.lastQ.EngineRefs, 1)
	assert.Equal(t, "alpha", searcher.lastQ.EngineRefs[0].Name)
}

func TestSearchCategoriesParam(t *testing.T) {
	searcher := &fakeSearcher{}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q=golang&categories=images&format=json")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, searcher.lastQ.EngineRefs, 1)
	assert.Equal(t, search.EngineRef{Name: "beta", Category: "images"}, searcher.lastQ.EngineRefs[0])
}

func TestSearchInstantAnswerSkipsEngines(t *testing.T) {
	searcher := &fakeSearcher{}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q="+url.QueryEscape("md5 hello")+"&format=json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Answers, 1)
	assert.Contains(t, resp.Answers[0].Text, "5d41402abc4b2a76b9719d911017c592")
	assert.Zero(t, searcher.calls)
}

func TestSearchCalculatorAnswerSkipsEngines(t *testing.T) {
	searcher := &fakeSearcher{}
	_, r := testFrontend(t, searcher)

	rec := get(r, "/search?q="+url.QueryEscape("=2+2*3")+"&format=json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "2+2*3 = 8", resp.Answers[0].Text)
	assert.Zero(t, searcher.calls)
}

func TestAutocompleteShape(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/autocomplete?q=gola")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload []any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload, 2)
	assert.Equal(t, "gola", payload[0])
	assert.Equal(t, []any{"golang", "goland"}, payload[1])
}

func TestHealth(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestStatsCountsSearches(t *testing.T) {
	searcher := &fakeSearcher{results: []result.Result{
		{URL: "https://example.com/a", Title: "A", Engine: "alpha", Engines: []string{"alpha"}, Positions: []int{1}},
	}}
	_, r := testFrontend(t, searcher)

	get(r, "/search?q=one&format=json")
	get(r, "/search?q=two&format=json")

	rec := get(r, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(2), payload["searches"])
}

func TestPreferencesRoundTrip(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	form := url.Values{}
	form.Set("language", "de")
	form.Set("safesearch", "2")
	form.Add("categories", "images")

	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// searches pick the stored preferences up as defaults
	searcher := &fakeSearcher{}
	f, _ := testFrontend(t, searcher)
	req = httptest.NewRequest(http.MethodGet, "/search?q=golang&format=json", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	f.SearchHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "de", searcher.lastQ.Lang)
	assert.Equal(t, 2, searcher.lastQ.SafeSearch)
	require.Len(t, searcher.lastQ.EngineRefs, 1)
	assert.Equal(t, "images", searcher.lastQ.EngineRefs[0].Category)
}

func TestIndexAndAboutRender(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fathom")

	rec = get(r, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alpha")
}

func TestOpenSearchDescriptor(t *testing.T) {
	_, r := testFrontend(t, &fakeSearcher{})

	rec := get(r, "/opensearch.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "{searchTerms}")
}
