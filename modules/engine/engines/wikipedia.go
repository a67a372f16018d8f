package engines

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("wikipedia", func(engine.Config) (engine.Engine, error) {
		return &Wikipedia{defaultLang: "en"}, nil
	})
}

// Wikipedia queries the MediaWiki API of the language edition matching the
// search language.
type Wikipedia struct {
	engine.Defaults

	defaultLang string
}

func (w *Wikipedia) Name() string { return "wikipedia" }

func (w *Wikipedia) About() engine.About {
	return engine.About{
		Website:       "https://www.wikipedia.org",
		OfficialAPI:   true,
		ResultsFormat: "JSON",
	}
}

func (w *Wikipedia) apiURL(lang string) string {
	if lang == "" || lang == "all" {
		lang = w.defaultLang
	} else {
		lang = strings.SplitN(lang, "-", 2)[0]
	}
	return "https://" + lang + ".wikipedia.org/w/api.php"
}

func (w *Wikipedia) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet(w.apiURL(params.Lang))
	req.QueryParams.Set("action", "query")
	req.QueryParams.Set("format", "json")
	req.QueryParams.Set("generator", "search")
	req.QueryParams.Set("gsrsearch", params.Query)
	req.QueryParams.Set("gsrlimit", "10")
	req.QueryParams.Set("prop", "extracts|pageimages|info")
	req.QueryParams.Set("exintro", "1")
	req.QueryParams.Set("explaintext", "1")
	req.QueryParams.Set("exlimit", "10")
	req.QueryParams.Set("inprop", "url")
	req.QueryParams.Set("pithumbsize", "300")

	if params.PageNo > 1 {
		req.QueryParams.Set("gsroffset", strconv.Itoa((params.PageNo-1)*10))
	}

	return req, nil
}

type wikipediaPage struct {
	Index     int    `json:"index"`
	Title     string `json:"title"`
	FullURL   string `json:"fullurl"`
	Extract   string `json:"extract"`
	Thumbnail struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

type wikipediaResponse struct {
	Query struct {
		Pages map[string]wikipediaPage `json:"pages"`
	} `json:"query"`
}

func (w *Wikipedia) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	var body wikipediaResponse
	if err := json.UnmarshalFromString(resp.Body, &body); err != nil {
		return nil, errors.Wrap(err, "parsing wikipedia response")
	}

	// pages arrive keyed by page id; index restores relevance order
	pages := make([]wikipediaPage, 0, len(body.Query.Pages))
	for _, p := range body.Query.Pages {
		pages = append(pages, p)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	er := &result.EngineResults{}
	position := 1

	for _, p := range pages {
		if p.Title == "" || p.FullURL == "" {
			continue
		}

		r := result.New(p.FullURL, p.Title, w.Name()).
			WithContent(truncate(p.Extract)).
			WithPosition(position)
		r.Metadata.Thumbnail = p.Thumbnail.Source
		position++
		er.Add(r)
	}

	return er, nil
}
