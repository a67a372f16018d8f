// Package engine defines the contract every search source implements and
// the registry that resolves names, shortcuts and categories to engines.
package engine

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/fathomsearch/fathom/modules/result"
)

// About is human readable engine metadata.
type About struct {
	Website       string
	OfficialAPI   bool
	RequireAPIKey bool
	ResultsFormat string
}

// RequestParams is everything an engine needs to build one outbound
// request. Read-only to the engine.
type RequestParams struct {
	Query      string
	PageNo     int
	Lang       string
	SafeSearch int
	TimeRange  string
	Category   string
	// EngineData is opaque per engine state carried between pages of the
	// same query.
	EngineData map[string]string
}

// BodyKind says how Request.Body is to be encoded.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyForm
	BodyJSON
	BodyRaw
)

// Request is a language neutral description of the HTTP call an engine
// wants made.
type Request struct {
	URL         string
	Method      string
	Headers     http.Header
	QueryParams url.Values
	Cookies     []*http.Cookie
	BodyKind    BodyKind
	Form        url.Values
	JSON        any
	Raw         []byte
}

// NewGet builds a GET request for the given URL.
func NewGet(u string) *Request {
	return &Request{
		URL:         u,
		Method:      http.MethodGet,
		Headers:     http.Header{},
		QueryParams: url.Values{},
	}
}

// NewPost builds a POST request carrying a form body.
func NewPost(u string, form url.Values) *Request {
	return &Request{
		URL:         u,
		Method:      http.MethodPost,
		Headers:     http.Header{},
		QueryParams: url.Values{},
		BodyKind:    BodyForm,
		Form:        form,
	}
}

// Response is the outcome of an engine request.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       string
	// FinalURL is the URL after redirects.
	FinalURL string
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

var captchaMarkers = []string{"captcha", "unusual traffic", "automated requests"}

// IsCaptcha sniffs the body for the usual bot interstitial markers.
func (r *Response) IsCaptcha() bool {
	body := strings.ToLower(r.Body)
	for _, m := range captchaMarkers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// Engine is a source of results. Implementations are stateless across
// calls: BuildRequest and ParseResponse are pure, any per query state
// travels in RequestParams.EngineData.
type Engine interface {
	Name() string
	About() About
	Categories() []string
	SupportsPaging() bool
	SupportsTimeRange() bool
	SupportsSafeSearch() bool
	Weight() float64
	TimeoutSeconds() float64
	ResultsPerPage() int

	// BuildRequest declares the HTTP call to make. May fail if the params
	// are unsatisfiable.
	BuildRequest(params RequestParams) (*Request, error)
	// ParseResponse turns the HTTP response into results. Must inspect the
	// status and body.
	ParseResponse(resp *Response) (*result.EngineResults, error)
}

// Initializer is implemented by engines that need startup configuration,
// for example an API key.
type Initializer interface {
	Init(cfg Config) error
}

// Validator is implemented by engines that can check their configuration
// at load time.
type Validator interface {
	Validate(cfg Config) error
}

// Defaults carries the contract's default metadata; concrete engines embed
// it and override what differs.
type Defaults struct{}

func (Defaults) About() About               { return About{} }
func (Defaults) Categories() []string       { return []string{"general"} }
func (Defaults) SupportsPaging() bool       { return true }
func (Defaults) SupportsTimeRange() bool    { return false }
func (Defaults) SupportsSafeSearch() bool   { return false }
func (Defaults) Weight() float64            { return 1.0 }
func (Defaults) TimeoutSeconds() float64    { return 5.0 }
func (Defaults) ResultsPerPage() int        { return 10 }
