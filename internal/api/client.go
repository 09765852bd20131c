// Package api provides the REST client for the lost-and-found service.
// Each exported method maps to one endpoint and returns domain types;
// non-2xx responses come back as *APIError carrying the raw body.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/robby/lostfound/internal/auth"
	"github.com/robby/lostfound/internal/logging"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://public-api.delcom.org/api/v1/"
	defaultUserAgent = "lostfound/0.1"
	defaultTimeout   = 15 * time.Second

	// RequestIDHeader carries a per-request uuid for log correlation.
	RequestIDHeader = "X-Request-ID"
)

// Options configure a Client. Zero values pick defaults.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables pacing
	Tokens            auth.TokenProvider
	Logger            *log.Logger
	HTTPClient        *http.Client // overrides Timeout when set
}

// Client talks to the lost-and-found REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	tokens    auth.TokenProvider
	log       *log.Logger
	userAgent string
}

// New creates a client for opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.WithPrefix("api")
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		limiter:   limiter,
		tokens:    opts.Tokens,
		log:       logger,
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized base URL the client resolves paths against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
}

// ServerMessage decodes the envelope in the error body and returns its message.
// ok is false when the body is empty, not JSON, or carries no message.
func (e *APIError) ServerMessage() (msg string, ok bool) {
	if len(e.Body) == 0 {
		return "", false
	}
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Body, &env); err != nil {
		return "", false
	}
	msg = strings.TrimSpace(env.Message)
	return msg, msg != ""
}

// do executes one request. form, when non-nil, is sent url-encoded.
func (c *Client) do(ctx context.Context, method, path string, query, form url.Values, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.tokens != nil {
		if token, err := c.tokens.GetToken(); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", "method", method, "path", path, "request_id", requestID, "err", err)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.log.Debug("request done",
		"method", method,
		"path", rel.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       rel.String(),
			Body:       raw,
		}
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
