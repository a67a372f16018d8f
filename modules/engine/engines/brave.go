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
	engine.RegisterFactory("brave", func(engine.Config) (engine.Engine, error) {
		return &Brave{}, nil
	})
}

// Brave scrapes search.brave.com.
type Brave struct {
	engine.Defaults
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) About() engine.About {
	return engine.About{
		Website:       "https://search.brave.com",
		ResultsFormat: "HTML",
	}
}

func (b *Brave) SupportsTimeRange() bool  { return true }
func (b *Brave) SupportsSafeSearch() bool { return true }

var braveTimeRanges = map[string]string{
	"day":   "pd",
	"week":  "pw",
	"month": "pm",
	"year":  "py",
}

func (b *Brave) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://search.brave.com/search")
	req.QueryParams.Set("q", params.Query)

	if params.PageNo > 1 {
		req.QueryParams.Set("offset", strconv.Itoa(params.PageNo-1))
	}
	if tf, ok := braveTimeRanges[params.TimeRange]; ok {
		req.QueryParams.Set("tf", tf)
	}
	switch params.SafeSearch {
	case 2:
		req.QueryParams.Set("safesearch", "strict")
	case 1:
		req.QueryParams.Set("safesearch", "moderate")
	default:
		req.QueryParams.Set("safesearch", "off")
	}

	return req, nil
}

func (b *Brave) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing brave response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("div.snippet").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a").First()
		href, _ := link.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}
		title := cleanText(sel.Find(".title").First().Text())
		if title == "" {
			title = cleanText(link.Text())
		}
		if title == "" {
			return
		}

		snippet := cleanText(sel.Find("p.snippet-description").First().Text())

		r := result.New(href, title, b.Name()).
			WithContent(truncate(snippet)).
			WithPosition(position)
		position++
		er.Add(r)
	})

	return er, nil
}
