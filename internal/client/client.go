// Package client talks to the user directory HTTP API.
package client

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

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/userdir/userdir/internal/logging"
	"github.com/userdir/userdir/internal/users"
)

var (
	// ErrTimeout is returned when a request exceeds its deadline or is cancelled.
	ErrTimeout = errors.New("request timed out")
	// ErrUnavailable is returned when the API cannot be reached at all.
	ErrUnavailable = errors.New("api unavailable")
)

const (
	headerRequestID      = "X-Request-ID"
	headerIdempotencyKey = "Idempotency-Key"
	maxErrorBody         = 64 << 10
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Client calls the user directory endpoints under a fixed base address.
type Client struct {
	base         *url.URL
	hc           *http.Client
	readTimeout  time.Duration
	writeTimeout time.Duration
	logger       *slog.Logger
	tracer       trace.TracerProvider
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. Its transport is used
// as is, without tracing.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeouts sets per-request deadlines for reads (GET) and writes (POST).
// Zero disables the deadline.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *Client) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

// WithTracerProvider sets the provider for client spans. The global provider
// is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) { c.tracer = tp }
}

// WithLogger sets the logger used for failed requests.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New builds a client for the API rooted at baseURL, e.g. http://localhost:4000/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url must be http or https, got %q", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("api url has no host: %q", baseURL)
	}

	c := &Client{
		base:   u,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hc == nil {
		tracing := []otelhttp.Option{otelhttp.WithPropagators(propagation.TraceContext{})}
		if c.tracer != nil {
			tracing = append(tracing, otelhttp.WithTracerProvider(c.tracer))
		}
		c.hc = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport, tracing...)}
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Create posts one candidate and returns the stored record.
func (c *Client) Create(ctx context.Context, candidate users.Candidate) (users.User, error) {
	payload, err := json.Marshal(candidate)
	if err != nil {
		return users.User{}, err
	}
	var user users.User
	headers := map[string]string{
		"Content-Type":       "application/json",
		headerIdempotencyKey: uuid.NewString(),
	}
	if err := c.do(ctx, http.MethodPost, "/users", bytes.NewReader(payload), headers, &user); err != nil {
		return users.User{}, err
	}
	return user, nil
}

// List fetches every stored record.
func (c *Client) List(ctx context.Context) ([]users.User, error) {
	var list []users.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []users.User{}
	}
	return list, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string, out any) error {
	timeout := c.readTimeout
	if method != http.MethodGet && method != http.MethodHead {
		timeout = c.writeTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := c.base.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	log := c.logger.With(
		slog.String("method", method),
		slog.String("url", endpoint),
		slog.String("request_id", req.Header.Get(headerRequestID)),
	)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Warn("api request failed", slog.Any("error", err), slog.Duration("duration", time.Since(start)))
		return mapError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var msg struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		log.Warn("api request rejected",
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
			slog.Duration("duration", time.Since(start)),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	log.Debug("api request completed", slog.Int("status", resp.StatusCode), slog.Duration("duration", time.Since(start)))
	return nil
}

// mapError converts low-level transport errors to ErrTimeout or ErrUnavailable,
// keeping the original error in the chain.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
