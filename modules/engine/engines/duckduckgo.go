package engines

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("duckduckgo", func(engine.Config) (engine.Engine, error) {
		return &DuckDuckGo{}, nil
	})
	engine.RegisterFactory("duckduckgo_instant", func(engine.Config) (engine.Engine, error) {
		return &DuckDuckGoInstant{}, nil
	})
}

// DuckDuckGo scrapes the lite HTML endpoint, which takes its parameters as
// a POST form.
type DuckDuckGo struct {
	engine.Defaults
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) About() engine.About {
	return engine.About{
		Website:       "https://duckduckgo.com",
		ResultsFormat: "HTML",
	}
}

func (d *DuckDuckGo) SupportsSafeSearch() bool { return true }

func (d *DuckDuckGo) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	form := url.Values{}
	form.Set("q", params.Query)
	form.Set("b", "")
	if params.Lang != "" && params.Lang != "all" {
		form.Set("kl", params.Lang)
	}
	if params.PageNo > 1 {
		form.Set("s", strconv.Itoa((params.PageNo-1)*30))
	}
	switch params.SafeSearch {
	case 2:
		form.Set("kp", "1")
	case 1:
		form.Set("kp", "-1")
	default:
		form.Set("kp", "-2")
	}

	return engine.NewPost("https://html.duckduckgo.com/html/", form), nil
}

func (d *DuckDuckGo) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing duckduckgo response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("div.result").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.result__a").First()
		title := cleanText(link.Text())
		href, _ := link.Attr("href")
		// internal links carry no result
		if title == "" || href == "" || strings.Contains(href, "duckduckgo.com") {
			return
		}

		snippet := cleanText(sel.Find("a.result__snippet").First().Text())

		r := result.New(href, title, d.Name()).
			WithContent(truncate(snippet)).
			WithPosition(position)
		position++
		er.Add(r)
	})

	return er, nil
}

// DuckDuckGoInstant queries the instant answer API for answers and related
// topic suggestions. No paging.
type DuckDuckGoInstant struct {
	engine.Defaults
}

func (d *DuckDuckGoInstant) Name() string { return "duckduckgo_instant" }

func (d *DuckDuckGoInstant) About() engine.About {
	return engine.About{
		Website:       "https://duckduckgo.com",
		OfficialAPI:   true,
		ResultsFormat: "JSON",
	}
}

func (d *DuckDuckGoInstant) SupportsPaging() bool { return false }

func (d *DuckDuckGoInstant) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://api.duckduckgo.com/")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("format", "json")
	req.QueryParams.Set("no_redirect", "1")
	req.QueryParams.Set("no_html", "1")
	return req, nil
}

type ddgInstantResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
	Results []struct {
		FirstURL string `json:"FirstURL"`
		Text     string `json:"Text"`
	} `json:"Results"`
}

func (d *DuckDuckGoInstant) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	var body ddgInstantResponse
	if err := json.UnmarshalFromString(resp.Body, &body); err != nil {
		return nil, errors.Wrap(err, "parsing duckduckgo instant response")
	}

	er := &result.EngineResults{}

	if body.AbstractText != "" {
		er.AddAnswer(result.Answer{
			Text:   body.AbstractText,
			Engine: d.Name(),
			URL:    body.AbstractURL,
		})
	}

	for i, topic := range body.RelatedTopics {
		if i >= 5 {
			break
		}
		if topic.Text != "" {
			er.AddSuggestion(result.Suggestion{Text: topic.Text, Engine: d.Name()})
		}
	}

	for i, res := range body.Results {
		if res.FirstURL == "" || res.Text == "" {
			continue
		}
		er.Add(result.New(res.FirstURL, res.Text, d.Name()).WithPosition(i + 1))
	}

	return er, nil
}
