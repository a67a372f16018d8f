package engines

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func okResponse(body string) *engine.Response {
	return &engine.Response{StatusCode: 200, Body: body}
}

func TestGoogleRequest(t *testing.T) {
	g := &Google{}
	req, err := g.BuildRequest(engine.RequestParams{
		Query: "rust async", Lang: "de", PageNo: 3, SafeSearch: 2, TimeRange: "week",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.google.com/search", req.URL)
	assert.Equal(t, "rust async", req.QueryParams.Get("q"))
	assert.Equal(t, "de", req.QueryParams.Get("hl"))
	assert.Equal(t, "20", req.QueryParams.Get("start"))
	assert.Equal(t, "active", req.QueryParams.Get("safe"))
	assert.Equal(t, "qdr:w", req.QueryParams.Get("tbs"))
}

func TestGoogleParse(t *testing.T) {
	body := `<html><body>
	<div class="g"><a href="https://rust-lang.org"><h3>Rust</h3></a>
	  <div class="VwiC3b">A language empowering everyone</div></div>
	<div class="g"><a href="https://docs.rs"><h3>Docs.rs</h3></a>
	  <span class="aCOpRe">Crate documentation</span></div>
	<div class="g"><a href="/relative"><h3>skipped</h3></a></div>
	</body></html>`

	er, err := (&Google{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 2)

	assert.Equal(t, "https://rust-lang.org", er.Results[0].URL)
	assert.Equal(t, "Rust", er.Results[0].Title)
	assert.Equal(t, "A language empowering everyone", er.Results[0].Content)
	assert.Equal(t, []int{1}, er.Results[0].Positions)
	assert.Equal(t, "Crate documentation", er.Results[1].Content)
	assert.Equal(t, []int{2}, er.Results[1].Positions)
}

func TestGoogleCaptchaSurfaced(t *testing.T) {
	resp := okResponse("<html>Our systems have detected unusual traffic</html>")
	_, err := (&Google{}).ParseResponse(resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CAPTCHA")
}

func TestBingRedirectDecode(t *testing.T) {
	target := "https://example.com/page"
	enc := base64.RawURLEncoding.EncodeToString([]byte(target))
	href := "https://www.bing.com/ck/a?!&&p=abc&u=a1" + enc + "&ntb=1"

	assert.Equal(t, target, decodeBingRedirect(href))
	// non tracking links pass through
	assert.Equal(t, "https://example.com/x", decodeBingRedirect("https://example.com/x"))
}

func TestBingParse(t *testing.T) {
	body := `<html><body><ol id="b_results">
	<li class="b_algo"><h2><a href="https://example.com/a">Example A</a></h2><p>first snippet</p></li>
	<li class="b_algo"><h2><a href="https://example.com/b">Example B</a></h2><p>second snippet</p></li>
	</ol></body></html>`

	er, err := (&Bing{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 2)
	assert.Equal(t, "Example A", er.Results[0].Title)
	assert.Equal(t, "first snippet", er.Results[0].Content)
}

func TestBingSafeSearchCookie(t *testing.T) {
	req, err := (&Bing{}).BuildRequest(engine.RequestParams{Query: "x", SafeSearch: 2})
	require.NoError(t, err)
	require.Len(t, req.Cookies, 1)
	assert.Equal(t, "SRCHHPGUSR", req.Cookies[0].Name)
	assert.Equal(t, "ADLT=STRICT", req.Cookies[0].Value)
}

func TestBingImagesParse(t *testing.T) {
	body := `<html><body>
	<a class="iusc" m='{"purl":"https://example.com/cat","murl":"https://img.example.com/cat.jpg","t":"A cat"}'></a>
	<a class="iusc" m='not json'></a>
	</body></html>`

	er, err := (&BingImages{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)

	r := er.Results[0]
	assert.Equal(t, "https://example.com/cat", r.URL)
	assert.Equal(t, "A cat", r.Title)
	assert.Equal(t, result.TypeImage, r.Type)
	assert.Equal(t, "https://img.example.com/cat.jpg", r.Metadata.ImgSrc)
}

func TestDuckDuckGoRequestIsForm(t *testing.T) {
	req, err := (&DuckDuckGo{}).BuildRequest(engine.RequestParams{Query: "x", PageNo: 2, SafeSearch: 1})
	require.NoError(t, err)

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, engine.BodyForm, req.BodyKind)
	assert.Equal(t, "x", req.Form.Get("q"))
	assert.Equal(t, "30", req.Form.Get("s"))
	assert.Equal(t, "-1", req.Form.Get("kp"))
}

func TestDuckDuckGoParseSkipsInternalLinks(t *testing.T) {
	body := `<html><body>
	<div class="result"><a class="result__a" href="https://example.com/a">Example</a>
	  <a class="result__snippet" href="#">the snippet</a></div>
	<div class="result"><a class="result__a" href="https://duckduckgo.com/ad">Ad</a></div>
	</body></html>`

	er, err := (&DuckDuckGo{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)
	assert.Equal(t, "https://example.com/a", er.Results[0].URL)
	assert.Equal(t, "the snippet", er.Results[0].Content)
}

func TestDuckDuckGoInstantParse(t *testing.T) {
	body := `{
	  "AbstractText": "Rust is a systems language.",
	  "AbstractURL": "https://en.wikipedia.org/wiki/Rust",
	  "RelatedTopics": [{"Text": "rust lang"}, {"Text": "rust game"}],
	  "Results": [{"FirstURL": "https://rust-lang.org", "Text": "Official site"}]
	}`

	er, err := (&DuckDuckGoInstant{}).ParseResponse(okResponse(body))
	require.NoError(t, err)

	require.Len(t, er.Answers, 1)
	assert.Equal(t, "Rust is a systems language.", er.Answers[0].Text)
	assert.Len(t, er.Suggestions, 2)
	require.Len(t, er.Results, 1)
	assert.Equal(t, "https://rust-lang.org", er.Results[0].URL)
}

func TestWikipediaLanguageURL(t *testing.T) {
	w := &Wikipedia{defaultLang: "en"}
	assert.Contains(t, w.apiURL("de"), "de.wikipedia.org")
	assert.Contains(t, w.apiURL("en-US"), "en.wikipedia.org")
	assert.Contains(t, w.apiURL("all"), "en.wikipedia.org")
	assert.Contains(t, w.apiURL(""), "en.wikipedia.org")
}

func TestWikipediaParseOrdersByIndex(t *testing.T) {
	body := `{"query": {"pages": {
	  "222": {"index": 2, "title": "Rust (fungus)", "fullurl": "https://en.wikipedia.org/wiki/Rust_(fungus)", "extract": "A plant disease"},
	  "111": {"index": 1, "title": "Rust", "fullurl": "https://en.wikipedia.org/wiki/Rust", "extract": "Iron oxide", "thumbnail": {"source": "https://img/wiki.jpg"}}
	}}}`

	er, err := (&Wikipedia{defaultLang: "en"}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 2)

	assert.Equal(t, "Rust", er.Results[0].Title)
	assert.Equal(t, []int{1}, er.Results[0].Positions)
	assert.Equal(t, "https://img/wiki.jpg", er.Results[0].Metadata.Thumbnail)
	assert.Equal(t, "Rust (fungus)", er.Results[1].Title)
}

func TestGitHubParse(t *testing.T) {
	body := `{"total_count": 2, "items": [
	  {"full_name": "rust-lang/rust", "html_url": "https://github.com/rust-lang/rust", "description": "The Rust compiler", "language": "Rust", "stargazers_count": 90000},
	  {"full_name": "tokio-rs/tokio", "html_url": "https://github.com/tokio-rs/tokio", "description": "Async runtime", "language": "Rust", "stargazers_count": 25000}
	]}`

	er, err := (&GitHub{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 2)

	assert.Equal(t, 2, er.TotalEstimate)
	assert.Equal(t, "rust-lang/rust", er.Results[0].Title)
	assert.Equal(t, result.TypeCode, er.Results[0].Type)
	assert.Contains(t, er.Results[0].Content, "90000 stars")
}

func TestStackOverflowParse(t *testing.T) {
	body := `{"items": [
	  {"title": "How do I convert a &amp;str to String?", "link": "https://stackoverflow.com/q/1", "score": 42, "answer_count": 3, "is_answered": true}
	]}`

	er, err := (&StackOverflow{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)

	assert.Equal(t, "How do I convert a &str to String?", er.Results[0].Title)
	assert.Contains(t, er.Results[0].Content, "score 42")
	assert.Contains(t, er.Results[0].Content, "answered")
}

func TestArxivParse(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
	<feed xmlns="http://www.w3.org/2005/Atom">
	  <entry>
	    <id>http://arxiv.org/abs/1234.5678</id>
	    <title>Attention Is All
	      You Need</title>
	    <summary>We propose a new architecture.</summary>
	    <published>2017-06-12T00:00:00Z</published>
	    <author><name>A. Vaswani</name></author>
	    <author><name>N. Shazeer</name></author>
	  </entry>
	</feed>`

	er, err := (&ArXiv{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)

	r := er.Results[0]
	assert.Equal(t, "http://arxiv.org/abs/1234.5678", r.URL)
	assert.Equal(t, "Attention Is All You Need", r.Title)
	assert.Equal(t, result.TypePaper, r.Type)
	assert.Equal(t, "A. Vaswani, N. Shazeer", r.Metadata.Author)
}

func TestYouTubeParse(t *testing.T) {
	body := `<html><script>var ytInitialData = {"contents":{"twoColumnSearchResultsRenderer":{"primaryContents":{"sectionListRenderer":{"contents":[{"itemSectionRenderer":{"contents":[{"videoRenderer":{"videoId":"abc123","title":{"runs":[{"text":"Rust in 100 Seconds"}]},"ownerText":{"runs":[{"text":"Fireship"}]},"lengthText":{"simpleText":"2:26"},"viewCountText":{"simpleText":"1M views"}}},{"shelfRenderer":{}}]}}]}}}}};</script></html>`

	er, err := (&YouTube{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)

	r := er.Results[0]
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", r.URL)
	assert.Equal(t, "Rust in 100 Seconds", r.Title)
	assert.Equal(t, result.TypeVideo, r.Type)
	assert.Equal(t, "Fireship", r.Metadata.Author)
	assert.Equal(t, "2:26", r.Metadata.Duration)
	assert.Equal(t, "https://i.ytimg.com/vi/abc123/hqdefault.jpg", r.Metadata.Thumbnail)
	assert.Equal(t, "https://www.youtube-nocookie.com/embed/abc123", r.Metadata.IframeSrc)
}

func TestBraveParse(t *testing.T) {
	body := `<html><body>
	<div class="snippet"><a href="https://example.com/a"><div class="title">Example A</div></a>
	  <p class="snippet-description">brave snippet</p></div>
	</body></html>`

	er, err := (&Brave{}).ParseResponse(okResponse(body))
	require.NoError(t, err)
	require.Len(t, er.Results, 1)
	assert.Equal(t, "Example A", er.Results[0].Title)
	assert.Equal(t, "brave snippet", er.Results[0].Content)
}

func TestFactoriesRegistered(t *testing.T) {
	for _, cfg := range engine.DefaultEngineConfigs() {
		_, err := engine.Load(engine.RegistryConfig{Engines: []engine.Config{cfg}})
		assert.NoError(t, err, "engine %s", cfg.Name)
	}
}
