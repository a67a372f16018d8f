package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapResolver map[string]string

func (m mapResolver) ResolveShortcut(s string) (string, bool) {
	name, ok := m[s]
	return name, ok
}

var testResolver = mapResolver{
	"ddg":           "duckduckgo",
	"duckduckgo":    "duckduckgo",
	"bi":            "bing",
	"bing":          "bing",
	"br":            "brave",
	"brave":         "brave",
	"wp":            "wikipedia",
	"gh":            "github",
	"so":            "stackoverflow",
	"arx":           "arxiv",
	"google":        "google",
	"youtube":       "youtube",
	"stackoverflow": "stackoverflow",
}

func parse(t *testing.T, raw string) ParsedQuery {
	t.Helper()
	return NewParser(testResolver).Parse(raw)
}

func TestPlainQueryUntouched(t *testing.T) {
	pq := parse(t, "  rust   programming ")
	assert.Equal(t, "rust programming", pq.CleanQuery)
	assert.Equal(t, "  rust   programming ", pq.RawQuery)
	assert.Empty(t, pq.Languages)
	assert.Empty(t, pq.Engines)
	assert.Equal(t, -1, pq.SafeSearch)
	assert.Equal(t, 1, pq.PageNo)
}

func TestLanguageTags(t *testing.T) {
	pq := parse(t, ":en :de foo")
	assert.Equal(t, []string{"en", "de"}, pq.Languages)
	assert.Equal(t, "foo", pq.CleanQuery)

	pq = parse(t, "foo :en-US")
	assert.Equal(t, []string{"en-US"}, pq.Languages)
	assert.Equal(t, "foo", pq.CleanQuery)
}

func TestTimeout(t *testing.T) {
	pq := parse(t, "<3 foo")
	assert.Equal(t, 3.0, pq.TimeoutLimit)
	assert.Equal(t, "foo", pq.CleanQuery)

	pq = parse(t, "<500ms foo")
	assert.Equal(t, 0.5, pq.TimeoutLimit)
	assert.Equal(t, "foo", pq.CleanQuery)
}

func TestSafeSearchToggles(t *testing.T) {
	pq := parse(t, "!safesearch foo")
	assert.Equal(t, 2, pq.SafeSearch)
	assert.Equal(t, "foo", pq.CleanQuery)

	pq = parse(t, "!nosafesearch foo")
	assert.Equal(t, 0, pq.SafeSearch)
	assert.Equal(t, "foo", pq.CleanQuery)
}

func TestTimeRangeFirstWins(t *testing.T) {
	pq := parse(t, "!week foo !month")
	assert.Equal(t, "week", pq.TimeRange)
	assert.Equal(t, "foo", pq.CleanQuery)
}

func TestRedirectToFirst(t *testing.T) {
	pq := parse(t, "!!foo")
	assert.True(t, pq.RedirectToFirst)
	assert.Equal(t, "foo", pq.CleanQuery)

	pq = parse(t, "! foo")
	assert.True(t, pq.RedirectToFirst)
	assert.Equal(t, "foo", pq.CleanQuery)
}

func TestCategoryBangs(t *testing.T) {
	pq := parse(t, "!images !news cats")
	assert.Equal(t, []string{"images", "news"}, pq.Categories)
	assert.Equal(t, "cats", pq.CleanQuery)
}

func TestEngineBangs(t *testing.T) {
	pq := parse(t, "!ddg !bi rust")
	assert.Equal(t, []string{"duckduckgo", "bing"}, pq.Engines)
	assert.Equal(t, "rust", pq.CleanQuery)
}

func TestExternalBangOverridesEngine(t *testing.T) {
	pq := parse(t, "!g foo bar")
	assert.Equal(t, "g", pq.ExternalBang)
	assert.Empty(t, pq.Engines)
	assert.Equal(t, "foo bar", pq.CleanQuery)
}

func TestShortcutsOutsideExternalSetSelectEngines(t *testing.T) {
	pq := parse(t, "!ddg cats")
	assert.Empty(t, pq.ExternalBang)
	assert.Equal(t, []string{"duckduckgo"}, pq.Engines)
	assert.Equal(t, "cats", pq.CleanQuery)

	pq = parse(t, "!wp !gh !so compilers")
	assert.Empty(t, pq.ExternalBang)
	assert.Equal(t, []string{"wikipedia", "github", "stackoverflow"}, pq.Engines)
	assert.Equal(t, "compilers", pq.CleanQuery)
}

func TestUnknownBangPreserved(t *testing.T) {
	pq := parse(t, "!doesnotexist foo")
	assert.Equal(t, "!doesnotexist foo", pq.CleanQuery)
	assert.Empty(t, pq.Engines)
	assert.Empty(t, pq.Categories)
}

func TestEmptyAfterStripping(t *testing.T) {
	pq := parse(t, "!images")
	assert.Equal(t, "", pq.CleanQuery)
	assert.Equal(t, []string{"images"}, pq.Categories)
}

func TestEverythingAtOnce(t *testing.T) {
	pq := parse(t, ":en <2 !safesearch !week !ddg rust async")
	assert.Equal(t, []string{"en"}, pq.Languages)
	assert.Equal(t, 2.0, pq.TimeoutLimit)
	assert.Equal(t, 2, pq.SafeSearch)
	assert.Equal(t, "week", pq.TimeRange)
	assert.Equal(t, []string{"duckduckgo"}, pq.Engines)
	assert.Equal(t, "rust async", pq.CleanQuery)
}
