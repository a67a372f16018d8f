package engines

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("arxiv", func(engine.Config) (engine.Engine, error) {
		return &ArXiv{}, nil
	})
}

// ArXiv queries the export API, which answers with an Atom feed.
type ArXiv struct {
	engine.Defaults
}

func (a *ArXiv) Name() string { return "arxiv" }

func (a *ArXiv) About() engine.About {
	return engine.About{
		Website:       "https://arxiv.org",
		OfficialAPI:   true,
		ResultsFormat: "XML",
	}
}

func (a *ArXiv) Categories() []string { return []string{"science"} }

func (a *ArXiv) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://export.arxiv.org/api/query")
	req.QueryParams.Set("search_query", "all:"+params.Query)
	req.QueryParams.Set("max_results", "10")
	if params.PageNo > 1 {
		req.QueryParams.Set("start", strconv.Itoa((params.PageNo-1)*10))
	}
	return req, nil
}

type arxivFeed struct {
	Entries []struct {
		ID        string `xml:"id"`
		Title     string `xml:"title"`
		Summary   string `xml:"summary"`
		Published string `xml:"published"`
		Authors   []struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

func (a *ArXiv) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.Unmarshal([]byte(resp.Body), &feed); err != nil {
		return nil, errors.Wrap(err, "parsing arxiv feed")
	}

	er := &result.EngineResults{}

	for i, entry := range feed.Entries {
		if entry.ID == "" || entry.Title == "" {
			continue
		}

		r := result.New(entry.ID, cleanText(entry.Title), a.Name()).
			WithContent(truncate(cleanText(entry.Summary))).
			WithPosition(i + 1)
		r.Type = result.TypePaper

		names := make([]string, 0, len(entry.Authors))
		for _, au := range entry.Authors {
			names = append(names, au.Name)
		}
		r.Metadata.Author = strings.Join(names, ", ")
		r.Metadata.PublishedDate = entry.Published
		er.Add(r)
	}

	return er, nil
}
