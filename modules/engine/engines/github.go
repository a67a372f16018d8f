package engines

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("github", func(cfg engine.Config) (engine.Engine, error) {
		return &GitHub{apiToken: cfg.APIKey}, nil
	})
}

// GitHub searches repositories through the public REST API. An api_key in
// the engine config raises the rate limit but is not required.
type GitHub struct {
	engine.Defaults

	apiToken string
}

func (g *GitHub) Name() string { return "github" }

func (g *GitHub) About() engine.About {
	return engine.About{
		Website:       "https://github.com",
		OfficialAPI:   true,
		ResultsFormat: "JSON",
	}
}

func (g *GitHub) Categories() []string { return []string{"it"} }

func (g *GitHub) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://api.github.com/search/repositories")
	req.QueryParams.Set("q", params.Query)
	req.QueryParams.Set("per_page", "10")
	if params.PageNo > 1 {
		req.QueryParams.Set("page", strconv.Itoa(params.PageNo))
	}
	req.Headers.Set("Accept", "application/vnd.github+json")
	if g.apiToken != "" {
		req.Headers.Set("Authorization", "Bearer "+g.apiToken)
	}
	return req, nil
}

type githubSearchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Language    string `json:"language"`
		Stars       int    `json:"stargazers_count"`
	} `json:"items"`
}

func (g *GitHub) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	var body githubSearchResponse
	if err := json.UnmarshalFromString(resp.Body, &body); err != nil {
		return nil, errors.Wrap(err, "parsing github response")
	}

	er := &result.EngineResults{TotalEstimate: body.TotalCount}

	for i, item := range body.Items {
		if item.HTMLURL == "" || item.FullName == "" {
			continue
		}

		content := item.Description
		if item.Language != "" {
			content = fmt.Sprintf("%s [%s, %d stars]", content, item.Language, item.Stars)
		}

		r := result.New(item.HTMLURL, item.FullName, g.Name()).
			WithContent(truncate(content)).
			WithPosition(i + 1)
		r.Type = result.TypeCode
		er.Add(r)
	}

	return er, nil
}
