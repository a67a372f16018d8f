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
	engine.RegisterFactory("google_news", func(engine.Config) (engine.Engine, error) {
		return &GoogleNews{}, nil
	})
}

// GoogleNews scrapes the news vertical (tbm=nws).
type GoogleNews struct {
	engine.Defaults
}

func (g *GoogleNews) Name() string { return "google_news" }

func (g *GoogleNews) About() engine.About {
	return engine.About{
		Website:       "https://news.google.com",
		ResultsFormat: "HTML",
	}
}

func (g *GoogleNews) Categories() []string   { return []string{"news"} }
func (g *GoogleNews) SupportsTimeRange() bool { return true }

func (g *GoogleNews) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.google.com/search")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("tbm", "nws")

	if params.Lang != "" && params.Lang != "all" {
		req.QueryParams.Set("hl", params.Lang)
	}
	if params.PageNo > 1 {
		req.QueryParams.Set("start", strconv.Itoa((params.PageNo-1)*10))
	}
	if tbs, ok := googleTimeRanges[params.TimeRange]; ok {
		req.QueryParams.Set("tbs", tbs)
	}

	return req, nil
}

func (g *GoogleNews) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing google news response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("div.SoaBEf, div.xuvV6b").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		href, _ := link.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}
		title := cleanText(sel.Find("div[role=heading]").First().Text())
		if title == "" {
			title = cleanText(link.Text())
		}
		if title == "" {
			return
		}

		r := result.New(href, title, g.Name()).
			WithContent(truncate(cleanText(sel.Find("div.GI74Re").First().Text()))).
			WithPosition(position)
		r.Type = result.TypeNews
		position++
		er.Add(r)
	})

	return er, nil
}
