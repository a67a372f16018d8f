package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-kit/log/level"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"

	"github.com/fathomsearch/fathom/modules/engine"
	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/pkg/util/log"
)

const maxResponseBody = 10 << 20

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	metricSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fathom",
		Name:      "searches_total",
		Help:      "Total number of searches executed.",
	})
	metricEngineRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fathom",
		Name:      "engine_requests_total",
		Help:      "Engine requests by outcome.",
	}, []string{"engine", "outcome"})
	metricEngineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "fathom",
		Name:      "engine_request_duration_seconds",
		Help:      "Time taken per engine request.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"engine"})
)

// Doer performs an HTTP request. Satisfied by *http.Client and by the
// outgoing client in pkg/httpclient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// engineFailure carries a classified engine error through the circuit
// breaker.
type engineFailure struct {
	kind result.ErrorKind
	code int
}

func (f *engineFailure) Error() string {
	if f.code != 0 {
		return fmt.Sprintf("%s (%d)", f.kind, f.code)
	}
	return string(f.kind)
}

// Executor fans one query out to all referenced engines concurrently and
// joins the results in a container. Failures are per engine and never fail
// the search.
type Executor struct {
	cfg      Config
	registry *engine.Registry
	client   Doer

	breakersMu sync.Mutex
	breakers   map[string]*gobreaker.CircuitBreaker
}

// NewExecutor builds an executor over the given registry and HTTP client.
func NewExecutor(cfg Config, registry *engine.Registry, client Doer) *Executor {
	return &Executor{
		cfg:      cfg,
		registry: registry,
		client:   client,
		breakers: map[string]*gobreaker.CircuitBreaker{},
	}
}

// breaker returns the engine's circuit breaker, creating it on first use.
// Two consecutive suspendable failures open it for BanTimeOnFail seconds.
func (e *Executor) breaker(name string) *gobreaker.CircuitBreaker {
	e.breakersMu.Lock()
	defer e.breakersMu.Unlock()

	if br, ok := e.breakers[name]; ok {
		return br
	}

	ban := e.cfg.BanTimeOnFail
	if e.cfg.MaxBanTimeOnFail > 0 && ban > e.cfg.MaxBanTimeOnFail {
		ban = e.cfg.MaxBanTimeOnFail
	}

	br := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Duration(ban * float64(time.Second)),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 2
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var ef *engineFailure
			if errors.As(err, &ef) {
				return !suspendable(ef.kind)
			}
			return false
		},
	})
	e.breakers[name] = br
	return br
}

// Execute runs the search. It returns only after every engine has
// completed, failed or timed out, so readers of the container need no
// further synchronization.
func (e *Executor) Execute(ctx context.Context, q *Query) *result.Container {
	weights := make(map[string]float64, len(q.EngineRefs))
	for _, ref := range q.EngineRefs {
		weights[ref.Name] = e.registry.EffectiveWeight(ref.Name)
	}
	container := result.NewContainer(weights)

	metricSearchesTotal.Inc()

	if q.ExternalBang != "" {
		if u := ExternalBangURL(q.ExternalBang, q.CleanQuery); u != "" {
			container.SetRedirect(u)
		}
		return container
	}

	if strings.TrimSpace(q.CleanQuery) == "" {
		return container
	}

	var wg sync.WaitGroup
	for _, ref := range q.EngineRefs {
		eng, ok := e.registry.Get(ref.Name)
		if !ok {
			// requested but not loaded, legal to skip
			continue
		}

		wg.Add(1)
		go func(ref EngineRef, eng engine.Engine) {
			defer wg.Done()
			e.searchEngine(ctx, q, ref, eng, container)
		}(ref, eng)
	}
	wg.Wait()

	return container
}

// SearchCategory assembles refs for a single category with defaults and
// executes.
func (e *Executor) SearchCategory(ctx context.Context, query, category string, pageNo int) *result.Container {
	names := e.registry.ByCategory(category)
	refs := make([]EngineRef, 0, len(names))
	for _, name := range names {
		refs = append(refs, EngineRef{Name: name, Category: category})
	}
	if pageNo < 1 {
		pageNo = 1
	}
	return e.Execute(ctx, &Query{
		CleanQuery: query,
		EngineRefs: refs,
		Lang:       "all",
		PageNo:     pageNo,
	})
}

// engineTimeout computes one engine's deadline: the query's limit if set,
// otherwise the registry's effective timeout, both capped by the
// configured maximum.
func (e *Executor) engineTimeout(q *Query, name string) time.Duration {
	seconds := q.TimeoutLimit
	if seconds <= 0 {
		seconds = e.registry.EffectiveTimeout(name, e.cfg.RequestTimeout)
	}
	if e.cfg.MaxRequestTimeout > 0 && seconds > e.cfg.MaxRequestTimeout {
		seconds = e.cfg.MaxRequestTimeout
	}
	return time.Duration(seconds * float64(time.Second))
}

func (e *Executor) searchEngine(ctx context.Context, q *Query, ref EngineRef, eng engine.Engine, container *result.Container) {
	start := time.Now()

	res, err := e.breaker(ref.Name).Execute(func() (any, error) {
		return e.callEngine(ctx, q, ref, eng)
	})

	elapsed := time.Since(start)
	metricEngineDuration.WithLabelValues(ref.Name).Observe(elapsed.Seconds())

	if err != nil {
		ue := result.UnresponsiveEngine{Name: ref.Name, Err: result.ErrUnknown}
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			ue.Err = result.ErrSuspended
		default:
			var ef *engineFailure
			if errors.As(err, &ef) {
				ue.Err = ef.kind
				ue.Code = ef.code
			}
		}

		metricEngineRequests.WithLabelValues(ref.Name, string(ue.Err)).Inc()
		level.Warn(log.Logger).Log("msg", "engine failed", "engine", ref.Name, "error", ue.Err, "elapsed", elapsed)

		container.AddUnresponsive(ue)
		container.AddTiming(result.Timing{
			Engine:    ref.Name,
			ElapsedMs: float64(elapsed.Milliseconds()),
		})
		return
	}

	er := res.(*result.EngineResults)
	for i := range er.Results {
		er.Results[i].Category = ref.Category
	}
	container.Extend(er)

	metricEngineRequests.WithLabelValues(ref.Name, "success").Inc()
	container.AddTiming(result.Timing{
		Engine:      ref.Name,
		ElapsedMs:   float64(elapsed.Milliseconds()),
		ResultCount: len(er.Results),
	})
}

// callEngine runs one engine's full lifecycle: build the request, perform
// it under the engine's own deadline, classify any failure, parse.
func (e *Executor) callEngine(ctx context.Context, q *Query, ref EngineRef, eng engine.Engine) (*result.EngineResults, error) {
	params := engine.RequestParams{
		Query:      q.CleanQuery,
		PageNo:     q.PageNo,
		Lang:       q.Lang,
		SafeSearch: q.SafeSearch,
		TimeRange:  q.TimeRange,
		Category:   ref.Category,
		EngineData: q.EngineData[ref.Name],
	}

	req, err := eng.BuildRequest(params)
	if err != nil {
		return nil, &engineFailure{kind: result.ErrUnknown}
	}

	ctx, cancel := context.WithTimeout(ctx, e.engineTimeout(q, ref.Name))
	defer cancel()

	httpReq, err := buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, &engineFailure{kind: result.ErrUnknown}
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &engineFailure{kind: classifyTransportError(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &engineFailure{kind: classifyTransportError(err)}
	}

	if kind := classifyStatus(resp.StatusCode); kind != "" {
		return nil, &engineFailure{kind: kind, code: resp.StatusCode}
	}

	finalURL := httpReq.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	er, err := eng.ParseResponse(&engine.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       string(body),
		FinalURL:   finalURL,
	})
	if err != nil {
		return nil, &engineFailure{kind: classifyParseError(err)}
	}
	return er, nil
}

// buildHTTPRequest converts the engine's request description into an
// *http.Request bound to ctx.
func buildHTTPRequest(ctx context.Context, req *engine.Request) (*http.Request, error) {
	u := req.URL
	if len(req.QueryParams) > 0 {
		sep := "?"
		if strings.Contains(u, "?") {
			sep = "&"
		}
		u += sep + req.QueryParams.Encode()
	}

	var body io.Reader
	contentType := ""
	switch req.BodyKind {
	case engine.BodyForm:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case engine.BodyJSON:
		buf, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	case engine.BodyRaw:
		body = bytes.NewReader(req.Raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, err
	}

	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for _, c := range req.Cookies {
		httpReq.AddCookie(c)
	}

	return httpReq, nil
}
