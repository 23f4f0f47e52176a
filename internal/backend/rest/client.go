// Package rest talks to the hosted data/auth service over HTTP: PostgREST for
// data under /rest/v1 and GoTrue for auth under /auth/v1.
package rest

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
	"strings"
	"time"

	"orcs/internal/backend"
	"orcs/internal/platform/tracer"
	"orcs/pkg/platform/circuit"
	"orcs/pkg/platform/sentinel"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives request outcomes. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveBackendRequest(operation, outcome string, seconds float64)
	SetBreakerOpen(open bool)
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	PublishableKey string
	Timeout        time.Duration
	HTTPClient     HTTPDoer
	Breaker        *circuit.Breaker
	Tracer         tracer.Tracer
	Observer       Observer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Client is shared by every visitor connection. It owns the HTTP client and
// the circuit breaker guarding the hosted service.
type Client struct {
	baseURL  string
	apiKey   string
	http     HTTPDoer
	breaker  *circuit.Breaker
	tracer   tracer.Tracer
	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

var _ backend.Connector = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend url %q", cfg.BaseURL)
	}
	if cfg.PublishableKey == "" {
		return nil, errors.New("backend publishable key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.PublishableKey,
		http:     cfg.HTTPClient,
		breaker:  cfg.Breaker,
		tracer:   cfg.Tracer,
		observer: cfg.Observer,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.breaker == nil {
		c.breaker = circuit.New("backend")
	}
	if c.tracer == nil {
		c.tracer = tracer.NewNoop()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Connect opens a signed-out connection. No request is made.
func (c *Client) Connect(_ context.Context) (backend.Conn, error) {
	return newConn(c), nil
}

// Ping checks the auth service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "ping", method: http.MethodGet, path: "/auth/v1/health"})
	return err
}

// call describes one HTTP exchange with the service.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	token  string
	prefer string
	accept string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// do runs a call through the breaker. Transport failures and 5xx answers
// count as outages; 4xx answers are the caller's problem and count as success.
func (c *Client) do(ctx context.Context, cl call) (*response, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, err
	}
	done, err := c.breaker.Allow()
	if err != nil {
		c.observe(cl.op, "breaker_open", 0)
		return nil, fmt.Errorf("backend %s: %w: %w", cl.op, sentinel.ErrUnavailable, err)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	elapsed := c.now().Sub(start).Seconds()
	if err != nil {
		c.settle(done, false)
		if ctx.Err() != nil {
			c.observe(cl.op, "timeout", elapsed)
			return nil, fmt.Errorf("backend %s: %w", cl.op, ctx.Err())
		}
		c.observe(cl.op, "network_error", elapsed)
		return nil, fmt.Errorf("backend %s: %w: %w", cl.op, sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.settle(done, false)
		c.observe(cl.op, "network_error", elapsed)
		return nil, fmt.Errorf("backend %s: reading body: %w: %w", cl.op, sentinel.ErrUnavailable, err)
	}

	c.settle(done, resp.StatusCode < http.StatusInternalServerError)
	if resp.StatusCode >= http.StatusBadRequest {
		c.observe(cl.op, "error", elapsed)
		return nil, parseError(resp.StatusCode, body)
	}
	c.observe(cl.op, "ok", elapsed)
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("backend %s: encoding body: %w", cl.op, err)
		}
		body = bytes.NewReader(raw)
	}
	u := c.baseURL + cl.path
	if len(cl.query) > 0 {
		u += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("backend %s: building request: %w", cl.op, err)
	}

	token := cl.token
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if cl.accept != "" {
		req.Header.Set("Accept", cl.accept)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.prefer != "" {
		req.Header.Set("Prefer", cl.prefer)
	}
	return req, nil
}

func (c *Client) settle(done circuit.Done, ok bool) {
	t := done(ok)
	if !t.Changed() {
		return
	}
	level := slog.LevelInfo
	if t.To == circuit.StateOpen {
		level = slog.LevelWarn
	}
	c.logger.Log(context.Background(), level, "backend circuit changed state",
		"breaker", c.breaker.Name(), "from", t.From.String(), "to", t.To.String())
	if c.observer != nil {
		c.observer.SetBreakerOpen(t.To == circuit.StateOpen)
	}
}

func (c *Client) observe(op, outcome string, seconds float64) {
	if c.observer != nil {
		c.observer.ObserveBackendRequest(op, outcome, seconds)
	}
}

// errorBody covers both PostgREST ({code, message}) and GoTrue
// ({error_code, msg} or the older {error, error_description}) payloads.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
}

var legacyAuthCodes = map[string]string{
	"Invalid login credentials": backend.CodeInvalidCredentials,
	"Email not confirmed":       backend.CodeEmailNotConfirmed,
	"User already registered":   backend.CodeUserExists,
}

func parseError(status int, body []byte) error {
	e := &backend.Error{Status: status, Message: http.StatusText(status)}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		if s := strings.TrimSpace(string(body)); s != "" {
			e.Message = s
		}
		return e
	}

	var code string
	if json.Unmarshal(eb.Code, &code) != nil {
		code = ""
	}
	switch {
	case eb.ErrorCode != "":
		e.Code = eb.ErrorCode
	case code != "":
		e.Code = code
	}
	for _, m := range []string{eb.Msg, eb.Message, eb.ErrorDescription, eb.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Code == "" {
		e.Code = legacyAuthCodes[e.Message]
	}
	return e
}
