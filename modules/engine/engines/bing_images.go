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
	engine.RegisterFactory("bing_images", func(engine.Config) (engine.Engine, error) {
		return &BingImages{}, nil
	})
}

// BingImages scrapes the image vertical. Each tile carries its payload as
// JSON in the m attribute of an a.iusc anchor.
type BingImages struct {
	engine.Defaults
}

func (b *BingImages) Name() string { return "bing_images" }

func (b *BingImages) About() engine.About {
	return engine.About{
		Website:       "https://www.bing.com/images",
		ResultsFormat: "HTML",
	}
}

func (b *BingImages) Categories() []string { return []string{"images"} }

func (b *BingImages) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.bing.com/images/search")
	req.QueryParams.Set("q", params.Query)

	if params.PageNo > 1 {
		req.QueryParams.Set("first", strconv.Itoa((params.PageNo-1)*35+1))
	}

	return req, nil
}

type bingImageTile struct {
	PageURL  string `json:"purl"`
	MediaURL string `json:"murl"`
	Title    string `json:"t"`
}

func (b *BingImages) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		return nil, errors.Wrap(err, "parsing bing images response")
	}

	er := &result.EngineResults{}
	position := 1

	doc.Find("a.iusc").Each(func(_ int, sel *goquery.Selection) {
		raw, ok := sel.Attr("m")
		if !ok {
			return
		}
		var tile bingImageTile
		if err := json.UnmarshalFromString(raw, &tile); err != nil {
			return
		}
		if tile.PageURL == "" || tile.MediaURL == "" {
			return
		}
		title := tile.Title
		if title == "" {
			title = tile.PageURL
		}

		r := result.New(tile.PageURL, title, b.Name()).WithPosition(position)
		r.Type = result.TypeImage
		r.Metadata.ImgSrc = tile.MediaURL
		r.Metadata.Thumbnail = tile.MediaURL
		position++
		er.Add(r)
	})

	return er, nil
}
