package engines

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("google", func(engine.Config) (engine.Engine, error) {
		return &Google{}, nil
	})
}

// Google scrapes the regular web results page.
type Google struct {
	engine.Defaults
}

func (g *Google) Name() string { return "google" }

func (g *Google) About() engine.About {
	return engine.About{
		Website:       "https://www.google.com",
		OfficialAPI:   false,
		ResultsFormat: "HTML",
	}
}

func (g *Google) SupportsTimeRange() bool  { return true }
func (g *Google) SupportsSafeSearch() bool { return true }

var googleTimeRanges = map[string]string{
	"day":   "qdr:d",
	"week":  "qdr:w",
	"month": "qdr:m",
	"year":  "qdr:y",
}

func (g *Google) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.google.com/search")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("num", "10")

	if params.Lang != "" && params.Lang != "all" {
		req.QueryParams.Set("hl", params.Lang)
	}
	if params.PageNo > 1 {
		req.QueryParams.Set("start", strconv.Itoa((params.PageNo-1)*10))
	}
	switch params.SafeSearch {
	case 2:
		req.QueryParams.Set("safe", "active")
	case 1:
		req.QueryParams.Set("safe", "medium")
	}
	if tbs, ok := googleTimeRanges[params.TimeRange]; ok {
		req.QueryParams.Set("tbs", tbs)
	}

	return req, nil
}

func (g *Google) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing google response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("div.g").Each(func(_ int, sel *goquery.Selection) {
		title := cleanText(sel.Find("h3").First().Text())
		href, _ := sel.Find("a").First().Attr("href")
		if title == "" || href == "" || !strings.HasPrefix(href, "http") {
			return
		}

		snippet := cleanText(sel.Find("div.VwiC3b").First().Text())
		if snippet == "" {
			snippet = cleanText(sel.Find("span.aCOpRe").First().Text())
		}

		r := result.New(href, title, g.Name()).
			WithContent(truncate(snippet)).
			WithPosition(position)
		position++
		er.Add(r)
	})

	return er, nil
}
