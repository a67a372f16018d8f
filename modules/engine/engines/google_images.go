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
	engine.RegisterFactory("google_images", func(engine.Config) (engine.Engine, error) {
		return &GoogleImages{}, nil
	})
}

// GoogleImages scrapes the image vertical (tbm=isch).
type GoogleImages struct {
	engine.Defaults
}

func (g *GoogleImages) Name() string { return "google_images" }

func (g *GoogleImages) About() engine.About {
	return engine.About{
		Website:       "https://images.google.com",
		ResultsFormat: "HTML",
	}
}

func (g *GoogleImages) Categories() []string    { return []string{"images"} }
func (g *GoogleImages) SupportsSafeSearch() bool { return true }

func (g *GoogleImages) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.google.com/search")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("tbm", "isch")

	if params.Lang != "" && params.Lang != "all" {
		req.QueryParams.Set("hl", params.Lang)
	}
	if params.PageNo > 1 {
		req.QueryParams.Set("start", strconv.Itoa((params.PageNo-1)*20))
	}
	if params.SafeSearch == 2 {
		req.QueryParams.Set("safe", "active")
	}

	return req, nil
}

func (g *GoogleImages) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing google images response")
	}

	er := &result.EngineResults{}
	position := 1

	// the image grid carries one anchor per hit with the image inside
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		img := sel.Find("img").First()
		if img.Length() == 0 {
			return
		}
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return
		}

		src, ok := img.Attr("data-src")
		if !ok {
			src, _ = img.Attr("src")
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		title, _ := img.Attr("alt")
		if title == "" {
			title = cleanText(sel.Text())
		}
		if title == "" {
			return
		}

		r := result.New(href, title, g.Name()).WithPosition(position)
		r.Type = result.TypeImage
		r.Metadata.ImgSrc = src
		r.Metadata.Thumbnail = src
		position++
		er.Add(r)
	})

	return er, nil
}
