// Package result holds the shared result model and the thread safe
// container that merges, scores and pages results from many engines.
package result

import (
	"net/url"
	"strings"
)

// Type classifies how a result should be rendered.
type Type string

const (
	TypeDefault Type = "default"
	TypeImage   Type = "image"
	TypeVideo   Type = "video"
	TypeMap     Type = "map"
	TypeNews    Type = "news"
	TypePaper   Type = "paper"
	TypeFile    Type = "file"
	TypeCode    Type = "code"
	TypeAnswer  Type = "answer"
	TypeInfobox Type = "infobox"
)

// Metadata carries optional presentation fields of a result. Engines fill
// what they know; merge never overwrites a populated field.
type Metadata struct {
	Thumbnail     string `json:"thumbnail,omitempty"`
	ImgSrc        string `json:"img_src,omitempty"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Duration      string `json:"duration,omitempty"`
	Views         string `json:"views,omitempty"`
	IframeSrc     string `json:"iframe_src,omitempty"`
	AudioSrc      string `json:"audio_src,omitempty"`
	IsOfficial    bool   `json:"is_official,omitempty"`
	FileType      string `json:"file_type,omitempty"`
	FileSize      string `json:"file_size,omitempty"`
	Template      string `json:"template,omitempty"`
}

// Result is a single hit returned by one or more engines.
type Result struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Content  string   `json:"content,omitempty"`
	Category string   `json:"category,omitempty"`
	Engine   string   `json:"engine"`
	Engines  []string `json:"engines"`
	// Positions holds the 1-indexed rank at which each contributing engine
	// returned this result, appended in merge order.
	Positions []int    `json:"positions,omitempty"`
	Score     float64  `json:"score"`
	Type      Type     `json:"type,omitempty"`
	Metadata  Metadata `json:"metadata,omitempty"`
}

// New builds a Result originating from one engine.
func New(rawURL, title, engine string) Result {
	return Result{
		URL:     rawURL,
		Title:   title,
		Engine:  engine,
		Engines: []string{engine},
		Type:    TypeDefault,
	}
}

// WithContent sets the snippet text.
func (r Result) WithContent(content string) Result {
	r.Content = content
	return r
}

// WithPosition records the 1-indexed rank the source returned this hit at.
func (r Result) WithPosition(pos int) Result {
	r.Positions = append(r.Positions, pos)
	return r
}

// Host returns the parsed host of the result URL, or "" if it does not
// parse.
func (r Result) Host() string {
	u, err := url.Parse(r.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// DedupKey normalizes a URL so trivial variants served by different engines
// collapse to the same entry: lowercase, scheme stripped, leading "www."
// stripped, one trailing slash stripped. Deliberately lossy.
func DedupKey(rawURL string) string {
	key := strings.ToLower(strings.TrimSpace(rawURL))
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimPrefix(key, "www.")
	key = strings.TrimSuffix(key, "/")
	return key
}

// Answer is an instant answer shown above the results.
type Answer struct {
	Text   string `json:"answer"`
	Engine string `json:"engine"`
	URL    string `json:"url,omitempty"`
}

// Suggestion is an alternative query proposed by an engine.
type Suggestion struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// Correction is a spelling correction proposed by an engine.
type Correction struct {
	Text   string `json:"text"`
	Engine string `json:"engine"`
}

// InfoboxURL is a link inside an infobox.
type InfoboxURL struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// InfoboxAttribute is a labelled value inside an infobox.
type InfoboxAttribute struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Infobox is a structured side panel, typically from an encyclopedic
// engine.
type Infobox struct {
	ID         string             `json:"id"`
	Title      string             `json:"infobox"`
	Content    string             `json:"content,omitempty"`
	ImgSrc     string             `json:"img_src,omitempty"`
	URL        string             `json:"url,omitempty"`
	Engine     string             `json:"engine"`
	Attributes []InfoboxAttribute `json:"attributes,omitempty"`
	URLs       []InfoboxURL       `json:"urls,omitempty"`
}

// Timing records how long one engine took and how much it contributed.
type Timing struct {
	Engine      string  `json:"engine"`
	ElapsedMs   float64 `json:"elapsed_ms"`
	ResultCount int     `json:"result_count"`
}

// EngineResults is what a single engine hands back from one parse.
type EngineResults struct {
	Results     []Result
	Answers     []Answer
	Suggestions []Suggestion
	Corrections []Correction
	Infoboxes   []Infobox
	// TotalEstimate is the engine's own estimate of the total hit count, 0
	// when unknown.
	TotalEstimate int
}

// Add appends a result.
func (er *EngineResults) Add(r Result) {
	er.Results = append(er.Results, r)
}

// AddAnswer appends an instant answer.
func (er *EngineResults) AddAnswer(a Answer) {
	er.Answers = append(er.Answers, a)
}

// AddSuggestion appends a suggestion.
func (er *EngineResults) AddSuggestion(s Suggestion) {
	er.Suggestions = append(er.Suggestions, s)
}

// AddCorrection appends a correction.
func (er *EngineResults) AddCorrection(c Correction) {
	er.Corrections = append(er.Corrections, c)
}

// AddInfobox appends an infobox.
func (er *EngineResults) AddInfobox(ib Infobox) {
	er.Infoboxes = append(er.Infoboxes, ib)
}
