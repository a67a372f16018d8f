package engines

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
)

func init() {
	engine.RegisterFactory("youtube", func(engine.Config) (engine.Engine, error) {
		return &YouTube{}, nil
	})
}

// YouTube scrapes the results page by extracting the embedded ytInitialData
// JSON blob.
type YouTube struct {
	engine.Defaults
}

func (y *YouTube) Name() string { return "youtube" }

func (y *YouTube) About() engine.About {
	return engine.About{
		Website:       "https://www.youtube.com",
		ResultsFormat: "HTML",
	}
}

func (y *YouTube) Categories() []string   { return []string{"videos"} }
func (y *YouTube) SupportsPaging() bool   { return false }
func (y *YouTube) SupportsTimeRange() bool { return true }

var youtubeTimeRanges = map[string]string{
	"day":   "EgIIAg==",
	"week":  "EgIIAw==",
	"month": "EgIIBA==",
	"year":  "EgIIBQ==",
}

func (y *YouTube) BuildRequest(params engine.RequestParams) (*engine.Request, error) {
	req := engine.NewGet("https://www.youtube.com/results")
	req.QueryParams.Set("search_query", params.Query)
	if sp, ok := youtubeTimeRanges[params.TimeRange]; ok {
		req.QueryParams.Set("sp", sp)
	}
	// skip the consent interstitial
	req.Cookies = append(req.Cookies, &http.Cookie{Name: "CONSENT", Value: "YES+"})
	return req, nil
}

var ytInitialDataRe = regexp.MustCompile(`var ytInitialData\s*=\s*(\{.+?\});\s*</script>`)

type ytText struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t ytText) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type ytVideoRenderer struct {
	VideoID       string `json:"videoId"`
	Title         ytText `json:"title"`
	OwnerText     ytText `json:"ownerText"`
	LengthText    ytText `json:"lengthText"`
	ViewCountText ytText `json:"viewCountText"`
	PublishedText ytText `json:"publishedTimeText"`
}

type ytInitialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []struct {
								VideoRenderer *ytVideoRenderer `json:"videoRenderer"`
							} `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

func (y *YouTube) ParseResponse(resp *engine.Response) (*result.EngineResults, error) {
	if resp.IsCaptcha() {
		return nil, errors.New("CAPTCHA challenge returned")
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("http status %d", resp.StatusCode)
	}

	m := ytInitialDataRe.FindStringSubmatch(resp.Body)
	if m == nil {
		return nil, errors.New("ytInitialData blob not found")
	}

	var data ytInitialData
	if err := json.UnmarshalFromString(m[1], &data); err != nil {
		return nil, errors.Wrap(err, "parsing ytInitialData")
	}

	er := &result.EngineResults{}
	position := 1

	for _, section := range data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents {
		for _, item := range section.ItemSectionRenderer.Contents {
			v := item.VideoRenderer
			if v == nil || v.VideoID == "" {
				continue
			}

			title := v.Title.String()
			if title == "" {
				continue
			}

			r := result.New("https://www.youtube.com/watch?v="+v.VideoID, title, y.Name()).
				WithPosition(position)
			r.Type = result.TypeVideo
			r.Metadata.Author = v.OwnerText.String()
			r.Metadata.Duration = v.LengthText.String()
			r.Metadata.Views = v.ViewCountText.String()
			r.Metadata.PublishedDate = v.PublishedText.String()
			r.Metadata.Thumbnail = "https://i.ytimg.com/vi/" + v.VideoID + "/hqdefault.jpg"
			r.Metadata.IframeSrc = "https://www.youtube-nocookie.com/embed/" + v.VideoID
			position++
			er.Add(r)
		}
	}

	return er, nil
}
