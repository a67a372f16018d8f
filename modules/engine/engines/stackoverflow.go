package engines

import (
	"fmt"
	"html"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("stackoverflow", func(engine.Config) (engine.Engine, error) {
		return &StackOverflow{}, nil
	})
}

// StackOverflow searches questions through the Stack Exchange API.
type StackOverflow struct {
	engine.Defaults
}

func (s *StackOverflow) Name() string { return "stackoverflow" }

func (s *StackOverflow) About() engine.About {
	return engine.About{
		Website:       "https://stackoverflow.com",
		OfficialAPI:   true,
		ResultsFormat: "JSON",
	}
}

func (s *StackOverflow) Categories() []string { return []string{"it"} }

func (s *StackOverflow) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://api.stackexchange.com/2.3/search/advanced")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("site", "stackoverflow")
	req.QueryParams.Set("order", "desc")
	req.QueryParams.Set("sort", "relevance")
	req.QueryParams.Set("pagesize", "10")
	if params.PageNo > 1 {
		req.QueryParams.Set("page", strconv.Itoa(params.PageNo))
	}
	return req, nil
}

type stackOverflowResponse struct {
	Items []struct {
		Title       string   `json:"title"`
		Link        string   `json:"link"`
		Score       int      `json:"score"`
		AnswerCount int      `json:"answer_count"`
		IsAnswered  bool     `json:"is_answered"`
		Tags        []string `json:"tags"`
	} `json:"items"`
}

func (s *StackOverflow) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	var body stackOverflowResponse
	if err := json.UnmarshalFromString(resp.Body, &body); err != nil {
		return nil, errors.Wrap(err, "parsing stackoverflow response")
	}

	er := &result.EngineResults{}

	for i, item := range body.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		answered := "unanswered"
		if item.IsAnswered {
			answered = "answered"
		}
		content := fmt.Sprintf("score %d, %d answers, %s", item.Score, item.AnswerCount, answered)

		r := result.New(item.Link, html.UnescapeString(item.Title), s.Name()).
			WithContent(content).
			WithPosition(i + 1)
		r.Type = result.TypeCode
		er.Add(r)
	}

	return er, nil
}
