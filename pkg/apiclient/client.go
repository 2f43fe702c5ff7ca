// Package apiclient is the single entry point for calls to the remote
// storefront API. Every request passes through the registered interceptors
// before it is sent; failures come back as *TransportError or *APIError.
// The client never retries.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ModuleName     = "APICLIENT"
	defaultTimeout = 15 * time.Second
	tracerName     = "storefront-admin/apiclient"
)

// Interceptor prepares an outgoing request, e.g. by attaching credentials.
type Interceptor func(ctx context.Context, req *http.Request) error

type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}

type Client struct {
	BaseURL      string
	HTTPClient   *http.Client
	interceptors []Interceptor
	logger       Logger
	tracer       trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

func WithInterceptor(i Interceptor) Option {
	return func(c *Client) { c.interceptors = append(c.interceptors, i) }
}

func WithLogger(l Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
		logger:     nopLogger{},
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do sends body as JSON to path (relative to BaseURL) and decodes a
// successful response into out. out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.BaseURL + "/" + strings.TrimLeft(path, "/")

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.full", url),
	)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for _, intercept := range c.interceptors {
		if err := intercept(ctx, req); err != nil {
			return fmt.Errorf("intercept request: %w", err)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		tErr := &TransportError{Method: method, URL: url, Err: err}
		span.RecordError(tErr)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn(ModuleName, "Request failed without response", map[string]interface{}{
			"method":  method,
			"path":    path,
			"error":   err.Error(),
			"timeout": tErr.Timeout(),
		})
		return tErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: method, URL: url, Err: fmt.Errorf("read response: %w", err)}
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	c.logger.Debug(ModuleName, "Request completed", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		span.SetStatus(codes.Error, apiErr.Message)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts {"message": "..."} from a failed response.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Message) == "" {
		return FallbackMessage
	}
	return payload.Message
}
