package connpass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBaseURL = "https://connpass.com/api/v2/"
	userAgent      = "go-connpass/v0.1.0"
	mediaTypeJSON  = "application/json"
	headerAPIKey   = "X-API-Key"

	defaultTimeout        = 30 * time.Second
	defaultRateLimitDelay = time.Second
	defaultPagePause      = time.Second

	tracerName = "github.com/lujin3/go-connpass/connpass"
)

// Client manages communication with the connpass API.
type Client struct {
	client *http.Client

	// Base URL for API requests. BaseURL should always be specified with a
	// trailing slash.
	BaseURL *url.URL

	// User agent used when communicating with the connpass API.
	UserAgent string

	apiKey string

	rateLimitEnabled bool
	rateLimitDelay   time.Duration
	dispatcher       *Dispatcher

	pagePause     time.Duration
	presentations PresentationCache
	nicknames     *nicknameResolver
	logger        *slog.Logger
	tracer        trace.Tracer

	rateMu     sync.Mutex
	rateLimits map[string]Rate

	// Reuse a single struct instead of allocating one for each service.
	common service

	Events *EventsService
	Groups *GroupsService
	Users  *UsersService
}

type service struct {
	client *Client
}

// Response wraps the standard http.Response and carries the rate limit
// headers connpass returned with it.
type Response struct {
	*http.Response

	Rate Rate
}

// Rate represents the rate limit headers reported by the API. Fields are
// zero when the server did not send them.
type Rate struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Option represents a function that can configure a Client.
type Option func(*Client) error

// WithBaseURL returns an Option that sets the base URL for the client.
// The URL must be a valid HTTP or HTTPS URL. If the URL doesn't end with
// a trailing slash, one will be added automatically.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return fmt.Errorf("base URL cannot be empty")
		}

		parsedURL, err := url.Parse(baseURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("base URL must use HTTP or HTTPS scheme, got: %s", parsedURL.Scheme)
		}

		// Ensure trailing slash for consistent URL joining
		if !strings.HasSuffix(parsedURL.Path, "/") {
			parsedURL.Path += "/"
		}

		c.BaseURL = parsedURL
		return nil
	}
}

// WithAPIKey sets the key sent in the X-API-Key header of every request.
func WithAPIKey(key string) Option {
	return func(c *Client) error {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("API key cannot be empty")
		}
		c.apiKey = key
		return nil
	}
}

// WithTimeout sets the per-request timeout. The http.Client passed to
// NewClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("timeout cannot be negative, got: %v", d)
		}
		hc := *c.client
		hc.Timeout = d
		c.client = &hc
		return nil
	}
}

// WithRateLimit configures request pacing. When enabled, requests are
// dispatched one at a time in FIFO order with at least delay between the end
// of one request and the start of the next. Disabling pacing, or a delay of
// zero, dispatches requests immediately, still one at a time.
func WithRateLimit(enabled bool, delay time.Duration) Option {
	return func(c *Client) error {
		if delay < 0 {
			return fmt.Errorf("rate limit delay cannot be negative, got: %v", delay)
		}
		c.rateLimitEnabled = enabled
		c.rateLimitDelay = delay
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.UserAgent = ua
		return nil
	}
}

// WithPresentationCache sets the cache consulted by EventsService.Presentations.
// A nil cache disables caching.
func WithPresentationCache(cache PresentationCache) Option {
	return func(c *Client) error {
		if cache == nil {
			cache = NopCache{}
		}
		c.presentations = cache
		return nil
	}
}

// WithPagePause sets the pause between consecutive pages fetched by the
// SearchAll methods.
func WithPagePause(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("page pause cannot be negative, got: %v", d)
		}
		c.pagePause = d
		return nil
	}
}

// WithLogger sets the logger used for cache warnings and request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithTracerProvider sets the provider used to create request spans. The
// global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) error {
		if tp == nil {
			return fmt.Errorf("tracer provider cannot be nil")
		}
		c.tracer = tp.Tracer(tracerName)
		return nil
	}
}

// NewClient returns a new connpass API client. If a nil httpClient is
// provided, a new http.Client will be used.
//
// An API key must be supplied with WithAPIKey. Requests are paced one second
// apart and presentation lookups are not cached unless options say otherwise.
func NewClient(httpClient *http.Client, opts ...Option) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultTimeout,
		}
	}

	baseURL, err := url.Parse(defaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default base URL: %w", err)
	}

	c := &Client{
		client:           httpClient,
		BaseURL:          baseURL,
		UserAgent:        userAgent,
		rateLimitEnabled: true,
		rateLimitDelay:   defaultRateLimitDelay,
		pagePause:        defaultPagePause,
		presentations:    NopCache{},
		logger:           slog.New(slog.DiscardHandler),
		tracer:           otel.GetTracerProvider().Tracer(tracerName),
		rateLimits:       make(map[string]Rate),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	delay := c.rateLimitDelay
	if !c.rateLimitEnabled {
		delay = 0
	}
	c.dispatcher = NewDispatcher(delay)

	c.common.client = c
	c.Events = (*EventsService)(&c.common)
	c.Groups = (*GroupsService)(&c.common)
	c.Users = (*UsersService)(&c.common)
	c.nicknames = newNicknameResolver(c.Users)

	return c, nil
}

// Close stops the request dispatcher after the requests already queued have
// run. Requests made after Close fail with ErrDispatcherClosed.
func (c *Client) Close() error {
	return c.dispatcher.Close()
}

// Dispatcher returns the dispatcher that paces this client's requests.
func (c *Client) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// RateFor returns the rate limit headers last seen for the given API path.
func (c *Client) RateFor(path string) (Rate, bool) {
	c.rateMu.Lock()
	defer c.rateMu.Unlock()
	r, ok := c.rateLimits[path]
	return r, ok
}

// NewRequest creates an API request. A relative URL can be provided in urlStr,
// in which case it is resolved relative to the BaseURL of the Client.
// Relative URLs should always be specified without a preceding slash. If
// specified, the value pointed to by body is JSON encoded and included as the
// request body.
func (c *Client) NewRequest(method, urlStr string, body any) (*http.Request, error) {
	if !strings.HasSuffix(c.BaseURL.Path, "/") {
		return nil, fmt.Errorf("BaseURL must have a trailing slash, but %q does not", c.BaseURL)
	}

	u, err := c.BaseURL.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	var buf io.ReadWriter
	if body != nil {
		buf = &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequest(method, u.String(), buf)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", mediaTypeJSON)
	}
	req.Header.Set("Accept", mediaTypeJSON)
	req.Header.Set(headerAPIKey, c.apiKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	return req, nil
}

// newResponse creates a new Response for the provided http.Response.
func newResponse(r *http.Response) *Response {
	response := &Response{Response: r}
	response.Rate = parseRate(r)
	return response
}

// parseRate parses rate limit headers from the response. Reset accepts both
// RFC 3339 timestamps and Unix seconds.
func parseRate(r *http.Response) Rate {
	var rate Rate
	if limit := r.Header.Get("X-RateLimit-Limit"); limit != "" {
		rate.Limit, _ = strconv.Atoi(limit)
	}
	if remaining := r.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		rate.Remaining, _ = strconv.Atoi(remaining)
	}
	if reset := r.Header.Get("X-RateLimit-Reset"); reset != "" {
		if v, _ := time.Parse(time.RFC3339, reset); !v.IsZero() {
			rate.Reset = v
		} else if secs, err := strconv.ParseInt(reset, 10, 64); err == nil {
			rate.Reset = time.Unix(secs, 0)
		}
	}
	return rate
}

// Do sends an API request and returns the API response. The API response is
// JSON decoded and stored in the value pointed to by v, or returned as an
// error if an API error has occurred. If v implements the io.Writer interface,
// the raw response body will be written to v, without attempting to first
// decode it.
//
// Requests are handed to the client's Dispatcher and sent one at a time.
// The provided ctx must be non-nil. If it ends before the request has
// finished, ctx.Err() is returned at once, but the request keeps its place
// in the queue and is still sent: it runs detached from ctx's cancellation,
// bounded by the http.Client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request, v any) (*Response, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context must be non-nil")
	}

	type result struct {
		resp *Response
		err  error
	}
	out := make(chan result, 1)

	detached := context.WithoutCancel(ctx)
	err := c.dispatcher.Submit(ctx, func(context.Context) error {
		resp, err := c.send(detached, req, v)
		out <- result{resp, err}
		return err
	})

	select {
	case r := <-out:
		return r.resp, r.err
	default:
		return nil, err
	}
}

func (c *Client) send(ctx context.Context, req *http.Request, v any) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "connpass.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		))
	defer span.End()

	req = req.WithContext(ctx)

	resp, err := c.client.Do(req)
	if err != nil {
		err = classifyTransportError(ctx, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.DebugContext(ctx, "connpass request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	response := newResponse(resp)

	c.rateMu.Lock()
	c.rateLimits[req.URL.Path] = response.Rate
	c.rateMu.Unlock()

	if err := CheckResponse(resp); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return response, err
	}

	if v != nil {
		if w, ok := v.(io.Writer); ok {
			_, err = io.Copy(w, resp.Body)
		} else {
			decErr := json.NewDecoder(resp.Body).Decode(v)
			if decErr == io.EOF {
				decErr = nil // ignore EOF errors caused by empty response body
			}
			if decErr != nil {
				err = decErr
			}
		}
	}

	return response, err
}

// classifyTransportError maps an error from http.Client.Do onto the
// library's error types. Cancellation by the caller is passed through.
func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &NetworkError{Err: err}
}

// addOptions adds the parameters in opts as URL query parameters to s.
// opts must be a struct whose fields may contain "url" tags. Slice fields
// encode as one query pair per element.
func addOptions(s string, opts any) (string, error) {
	v, err := query.Values(opts)
	if err != nil {
		return s, err
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	if q := v.Encode(); q != "" {
		if u.RawQuery != "" {
			u.RawQuery = u.RawQuery + "&" + q
		} else {
			u.RawQuery = q
		}
	}

	return u.String(), nil
}
