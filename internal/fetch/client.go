package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const maxBodySize = 10 << 20

var (
	ErrTransient  = errors.New("transient fetch failure")
	ErrBlocked    = errors.New("request blocked by remote")
	ErrBadRequest = errors.New("bad request")
	ErrStatus     = errors.New("unexpected status")
	ErrExhausted  = errors.New("retries exhausted")
)

// StatusError carries the HTTP status that produced one of the sentinel
// errors above.
type StatusError struct {
	StatusCode int
	URL        string
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d from %s", e.Err, e.StatusCode, e.URL)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// Classify maps an HTTP status onto the error taxonomy. It returns nil for
// non-error statuses.
func Classify(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return ErrBadRequest
	case status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return ErrBlocked
	case status >= 500:
		return ErrTransient
	case status >= 400:
		return ErrStatus
	}
	return nil
}

type Config struct {
	BaseDelay         time.Duration
	MaxRetries        int
	JitterMin         float64
	JitterMax         float64
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	UserAgent         string
}

// Observer receives one call per attempt with its outcome.
type Observer interface {
	FetchAttempt(outcome string)
}

type Request struct {
	Method string
	URL    string
	Params url.Values
	Header http.Header
	Body   []byte

	// Structured requests expect JSON. An HTML body on a structured request
	// is a captcha or login wall.
	Structured bool
}

type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	URL        string
}

type Client struct {
	http     *http.Client
	limiter  *rate.Limiter
	cfg      Config
	logger   *slog.Logger
	observer Observer
	sleep    func(ctx context.Context, d time.Duration) error
	rand     func() float64
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithObserver(o Observer) Option {
	return func(cl *Client) { cl.observer = o }
}

// WithSleep replaces the context-aware sleep used between attempts and for
// politeness delays.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(cl *Client) { cl.sleep = fn }
}

func WithRand(fn func() float64) Option {
	return func(cl *Client) { cl.rand = fn }
}

func New(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.JitterMin <= 0 || cfg.JitterMax < cfg.JitterMin {
		cfg.JitterMin, cfg.JitterMax = 1, 1
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(limit, burst),
		cfg:     cfg,
		logger:  logger,
		sleep:   sleepCtx,
		rand:    rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do executes req with pacing and retries. Only transient failures are
// retried; every other error is returned on the attempt that produced it.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var resp *Response
	err := c.retry(ctx, req.URL, true, func(ctx context.Context) error {
		var err error
		resp, err = c.do(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON performs a structured GET and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, req Request, v any) error {
	req.Structured = true
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Retry runs fn on the same backoff schedule as Do. fn signals a retryable
// failure by returning an error wrapping ErrTransient.
func (c *Client) Retry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	return c.retry(ctx, op, false, fn)
}

// Sleep waits for d unless ctx is done first.
func (c *Client) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return c.sleep(ctx, d)
}

// Backoff returns the delay before the attempt following attempt.
func (c *Client) Backoff(attempt int) time.Duration {
	factor := c.cfg.JitterMin + c.rand()*(c.cfg.JitterMax-c.cfg.JitterMin)
	delay := float64(c.cfg.BaseDelay) * float64(uint64(1)<<uint(attempt-1)) * factor
	return time.Duration(math.Round(delay))
}

func (c *Client) retry(ctx context.Context, op string, paced bool, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxRetries; attempt++ {
		if paced {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		lastErr = fn(ctx)
		c.observe(lastErr)
		if lastErr == nil {
			return nil
		}

		if !errors.Is(lastErr, ErrTransient) {
			return lastErr
		}

		if attempt == c.cfg.MaxRetries {
			break
		}

		backoff := c.Backoff(attempt)
		c.logger.Warn("request failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", lastErr,
		)

		if err := c.sleep(ctx, backoff); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, c.cfg.MaxRetries, lastErr)
}

func (c *Client) do(ctx context.Context, req Request) (*Response, error) {
	target, err := buildURL(req.URL, req.Params)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get("User-Agent") == "" && c.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if req.Structured && httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: execute request: %w", ErrTransient, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransient, err)
	}

	if class := Classify(resp.StatusCode); class != nil {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target, Err: class}
	}

	if req.Structured {
		if looksLikeHTML(data) {
			return nil, &StatusError{StatusCode: resp.StatusCode, URL: target, Err: ErrBlocked}
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: invalid json from %s", ErrTransient, target)
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
		Header:     resp.Header,
		URL:        target,
	}, nil
}

func (c *Client) observe(err error) {
	if c.observer == nil {
		return
	}
	c.observer.FetchAttempt(Outcome(err))
}

// Outcome names the class of err for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrTransient):
		return "transient"
	case errors.Is(err, ErrStatus):
		return "status"
	}
	return "error"
}

func buildURL(raw string, params url.Values) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func looksLikeHTML(body []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<!doctype html")) ||
		bytes.HasPrefix(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<head"))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
