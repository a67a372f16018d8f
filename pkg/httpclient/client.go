// Package httpclient builds the outgoing HTTP client used for every
// upstream engine and autocomplete request: pooled connections, optional
// request hedging, per host rate limiting and privacy conscious default
// headers.
package httpclient

import (
	"crypto/tls"
	"flag"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cristalhq/hedgedhttp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/fathomsearch/fathom/pkg/hedgedmetrics"
	"github.com/fathomsearch/fathom/pkg/useragent"
)

var metricHedgedRequests = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fathom",
	Name:      "outgoing_hedged_requests_total",
	Help:      "Number of extra round trips issued by request hedging.",
})

// Config tunes the outgoing client.
type Config struct {
	// Timeout is the hard cap on one round trip, on top of any per engine
	// deadline.
	Timeout time.Duration `yaml:"timeout"`

	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`

	VerifySSL bool   `yaml:"verify_ssl"`
	Proxy     string `yaml:"proxy"`

	// HedgeRequestsAt issues a second identical request when the first has
	// not answered within this duration. Zero disables hedging.
	HedgeRequestsAt   time.Duration `yaml:"hedge_requests_at"`
	HedgeRequestsUpTo int           `yaml:"hedge_requests_up_to"`

	// RateLimitPerHost caps requests per second to a single upstream host.
	// Zero means unlimited.
	RateLimitPerHost float64 `yaml:"rate_limit_per_host"`
	RateLimitBurst   int     `yaml:"rate_limit_burst"`
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(string, *flag.FlagSet) {
	cfg.Timeout = 30 * time.Second
	cfg.MaxIdleConns = 100
	cfg.MaxIdleConnsPerHost = 10
	cfg.IdleConnTimeout = 90 * time.Second
	cfg.VerifySSL = true
	cfg.HedgeRequestsUpTo = 2
	cfg.RateLimitBurst = 10
}

// Client wraps an http.Client with per host rate limiting and default
// headers. It satisfies the Doer interfaces in the search and autocomplete
// packages.
type Client struct {
	cfg   Config
	inner *http.Client

	limitersMu sync.Mutex
	limiters   map[string]*rate.Limiter
}

// New builds the client from config.
func New(cfg Config) (*Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, errors.Wrap(err, "parsing proxy url")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	var rt http.RoundTripper = transport
	if cfg.HedgeRequestsAt > 0 {
		var (
			stats *hedgedhttp.Stats
			err   error
		)
		rt, stats, err = hedgedhttp.NewRoundTripperAndStats(cfg.HedgeRequestsAt, cfg.HedgeRequestsUpTo, rt)
		if err != nil {
			return nil, errors.Wrap(err, "configuring hedging")
		}
		hedgedmetrics.Publish(stats, metricHedgedRequests)
	}

	return &Client{
		cfg: cfg,
		inner: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
		limiters: map[string]*rate.Limiter{},
	}, nil
}

// limiter returns the host's rate limiter, or nil when limiting is off.
func (c *Client) limiter(host string) *rate.Limiter {
	if c.cfg.RateLimitPerHost <= 0 {
		return nil
	}

	c.limitersMu.Lock()
	defer c.limitersMu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.RateLimitPerHost), c.cfg.RateLimitBurst)
		c.limiters[host] = l
	}
	return l
}

// Do performs the request after applying default headers and the host's
// rate limit. The wait respects the request context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if l := c.limiter(req.URL.Host); l != nil {
		if err := l.Wait(req.Context()); err != nil {
			return nil, err
		}
	}

	applyDefaultHeaders(req)
	return c.inner.Do(req)
}

// applyDefaultHeaders fills in browser like headers without overriding
// anything an engine set explicitly.
func applyDefaultHeaders(req *http.Request) {
	h := req.Header
	if h.Get("User-Agent") == "" {
		h.Set("User-Agent", useragent.Random())
	}
	if h.Get("Accept") == "" {
		h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	if h.Get("Accept-Language") == "" {
		h.Set("Accept-Language", "en-US,en;q=0.5")
	}
	// advertise tracking opt outs on every upstream call
	h.Set("DNT", "1")
	h.Set("Sec-GPC", "1")
}
