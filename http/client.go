package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/randalmurphal/jirarest/promise"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "jirarest-go/1.0"

// Client issues raw HTTP requests on behalf of the resource clients.
// Each call performs exactly one round trip and never retries.
// A Client is safe for concurrent use; connection pooling is left to the
// underlying *http.Client.
type Client struct {
	client      *http.Client
	serviceName string
	userAgent   string
	logger      *slog.Logger

	// beforeRequest is called before each request (for auth headers, etc.)
	beforeRequest func(req *http.Request) error
}

// ClientConfig holds configuration for Client.
type ClientConfig struct {
	Client        *http.Client
	ServiceName   string
	UserAgent     string
	Logger        *slog.Logger
	BeforeRequest func(req *http.Request) error
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		client:        cfg.Client,
		serviceName:   cfg.ServiceName,
		userAgent:     cfg.UserAgent,
		logger:        cfg.Logger,
		beforeRequest: cfg.BeforeRequest,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: DefaultTimeout}
	}
	if c.serviceName == "" {
		c.serviceName = "http"
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        *url.URL
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, uri *url.URL) *promise.Promise[*Response] {
	return c.Do(ctx, http.MethodGet, uri, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, uri *url.URL, body []byte) *promise.Promise[*Response] {
	return c.Do(ctx, http.MethodPost, uri, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, uri *url.URL, body []byte) *promise.Promise[*Response] {
	return c.Do(ctx, http.MethodPut, uri, body)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, uri *url.URL) *promise.Promise[*Response] {
	return c.Do(ctx, http.MethodDelete, uri, nil)
}

// Do issues a single request. The promise resolves with the response for any
// status code; only failures to complete the round trip reject it, with a
// *TransportError.
func (c *Client) Do(ctx context.Context, method string, uri *url.URL, body []byte) *promise.Promise[*Response] {
	if uri == nil {
		return promise.Reject[*Response](c.transportErr(method, "", fmt.Errorf("nil uri")))
	}
	target := uri.String()
	return promise.Go(func() (*Response, error) {
		return c.roundTrip(ctx, method, target, body)
	})
}

func (c *Client) roundTrip(ctx context.Context, method, target string, body []byte) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, c.transportErr(method, target, fmt.Errorf("create request: %w", err))
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	if c.beforeRequest != nil {
		if hookErr := c.beforeRequest(req); hookErr != nil {
			return nil, fmt.Errorf("%s %s %s: %w: %w", c.serviceName, method, target, ErrAuthenticate, hookErr)
		}
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.DebugContext(ctx, c.serviceName+" request failed",
			slog.String("method", method),
			slog.String("url", target),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, c.transportErr(method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportErr(method, target, fmt.Errorf("read response: %w", err))
	}

	c.logger.DebugContext(ctx, c.serviceName+" request",
		slog.String("method", method),
		slog.String("url", target),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Any("headers", SanitizeHeaders(req.Header)),
	)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		URL:        resp.Request.URL,
	}, nil
}

func (c *Client) transportErr(method, target string, err error) *TransportError {
	return &TransportError{
		Service: c.serviceName,
		Method:  method,
		URL:     target,
		Err:     err,
	}
}

// Close releases idle connections held by the underlying HTTP client.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}

// SanitizeHeaders returns a copy of h with credentials redacted.
func SanitizeHeaders(h http.Header) http.Header {
	clean := http.Header{}
	for k, vals := range h {
		switch strings.ToLower(k) {
		case "authorization", "cookie":
			clean[k] = []string{"<redacted>"}
		default:
			clean[k] = append([]string{}, vals...)
		}
	}
	return clean
}
