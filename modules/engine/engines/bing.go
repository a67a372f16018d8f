package engines

import (
	"encoding/base64"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("bing", func(engine.Config) (engine.Engine, error) {
		return &Bing{}, nil
	})
}

// Bing scrapes the regular web results page.
type Bing struct {
	engine.Defaults
}

func (b *Bing) Name() string { return "bing" }

func (b *Bing) About() engine.About {
	return engine.About{
		Website:       "https://www.bing.com",
		ResultsFormat: "HTML",
	}
}

func (b *Bing) SupportsTimeRange() bool  { return true }
func (b *Bing) SupportsSafeSearch() bool { return true }

var bingTimeRanges = map[string]string{
	"day":   `ex1:"ez1"`,
	"week":  `ex1:"ez2"`,
	"month": `ex1:"ez3"`,
	"year":  `ex1:"ez5"`,
}

func (b *Bing) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.bing.com/search")
	req.QueryParams.Set("q", params.Query)

	if params.Lang != "" && params.Lang != "all" {
		req.QueryParams.Set("setlang", params.Lang)
	}
	if params.PageNo > 1 {
		req.QueryParams.Set("first", strconv.Itoa((params.PageNo-1)*10+1))
	}
	if f, ok := bingTimeRanges[params.TimeRange]; ok {
		req.QueryParams.Set("filters", f)
	}

	adlt := "OFF"
	switch params.SafeSearch {
	case 2:
		adlt = "STRICT"
	case 1:
		adlt = "MODERATE"
	}
	req.Cookies = append(req.Cookies, &http.Cookie{Name: "SRCHHPGUSR", Value: "ADLT=" + adlt})

	return req, nil
}

func (b *Bing) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing bing response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("#b_results li.b_algo").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("h2 a").First()
		title := cleanText(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}
		href = decodeBingRedirect(href)
		if !strings.HasPrefix(href, "http") {
			return
		}

		snippet := cleanText(sel.Find("p").First().Text())

		r := result.New(href, title, b.Name()).
			WithContent(truncate(snippet)).
			WithPosition(position)
		position++
		er.Add(r)
	})

	return er, nil
}

// decodeBingRedirect unwraps bing's /ck/a click tracking links, whose u
// parameter is "a1" plus the target base64url encoded. Anything that does
// not match is returned as is.
func decodeBingRedirect(href string) string {
	if !strings.Contains(href, "/ck/a") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	enc := u.Query().Get("u")
	if !strings.HasPrefix(enc, "a1") {
		return href
	}
	decoded, err := base64.RawURLEncoding.DecodeString(enc[2:])
	if err != nil {
		return href
	}
	return string(decoded)
}
