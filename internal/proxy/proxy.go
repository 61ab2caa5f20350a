// Package proxy implements the forwarding core shared by all route handlers.
// Every inbound API request maps to exactly one outbound call against the
// configured backend origin: fire-once, no retries, no caching.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/vocoweb/gateway/internal/metrics"
)

// maxResponseBody caps how much of a backend response is read into memory.
const maxResponseBody = 10 << 20 // 10MB

// userAgent identifies the gateway on outbound calls.
const userAgent = "Vocoweb-Gateway/1.0"

// Request describes a single outbound backend call.
type Request struct {
	// Method is the HTTP method for the outbound call.
	Method string
	// Path is appended to the backend origin (e.g. "/api/websites").
	Path string
	// Route labels the call for logging and metrics. Defaults to Path.
	Route string
	// Token, when non-empty, is attached as "Authorization: Bearer <Token>".
	Token string
	// Body, when non-nil, is marshaled to JSON and sent as the request body.
	Body any
	// RawBody is forwarded unmodified. Ignored when Body is set.
	RawBody []byte
	// Header holds extra headers to forward (e.g. X-Forwarded-For).
	Header http.Header
}

// Result is a completed backend response.
type Result struct {
	Status int
	Body   json.RawMessage
}

// OK reports whether the backend returned a 2xx status.
func (r *Result) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client forwards requests to the backend origin.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// New creates a proxy Client for the given backend origin.
// baseURL must not end with a slash (config.Load guarantees this).
func New(baseURL string, httpClient *http.Client, logger *slog.Logger, recorder metrics.Recorder) *Client {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		logger:  logger,
		metrics: recorder,
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs one outbound call and returns the backend's status and body.
// A non-2xx backend status is not an error: the caller relays it. An error
// means the call itself failed (network, timeout, or a non-JSON body) and
// the caller must substitute its per-route fallback.
func (c *Client) Do(ctx context.Context, preq Request) (*Result, error) {
	route := preq.Route
	if route == "" {
		route = preq.Path
	}

	var body io.Reader
	switch {
	case preq.Body != nil:
		encoded, err := json.Marshal(preq.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	case preq.RawBody != nil:
		body = bytes.NewReader(preq.RawBody)
	}

	req, err := http.NewRequestWithContext(ctx, preq.Method, c.baseURL+preq.Path, body)
	if err != nil {
		return nil, fmt.Errorf("build backend request: %w", err)
	}

	for name, values := range preq.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}
	if preq.Token != "" {
		req.Header.Set("Authorization", "Bearer "+preq.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveBackendDuration(route, time.Since(start))
	if err != nil {
		c.metrics.IncBackendError(route, "transport")
		c.logger.Error("backend call failed",
			slog.String("route", route),
			slog.String("method", preq.Method),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("backend call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.metrics.IncBackendError(route, "transport")
		c.logger.Error("backend response read failed",
			slog.String("route", route),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if len(raw) > 0 && !json.Valid(raw) {
		c.metrics.IncBackendError(route, "decode")
		c.logger.Error("backend returned non-JSON body",
			slog.String("route", route),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("backend returned non-JSON body (status %d)", resp.StatusCode)
	}

	return &Result{Status: resp.StatusCode, Body: raw}, nil
}

// backendError mirrors the backend's error envelope ({"detail": "..."}).
type backendError struct {
	Detail json.RawMessage `json:"detail"`
}

// ErrorMessage extracts the backend's detail message from an error body.
// Falls back to the route's generic message when the body has no usable
// string detail (e.g. structured validation errors).
func ErrorMessage(body json.RawMessage, fallback string) string {
	if len(body) == 0 {
		return fallback
	}

	var be backendError
	if err := json.Unmarshal(body, &be); err != nil || len(be.Detail) == 0 {
		return fallback
	}

	var msg string
	if err := json.Unmarshal(be.Detail, &msg); err != nil || msg == "" {
		return fallback
	}
	return msg
}

// Ping checks that the backend origin answers its health endpoint.
// Used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   "/health",
		Route:  "readyz",
	})
	if err != nil {
		return err
	}
	if !res.OK() {
		return fmt.Errorf("backend health returned %d", res.Status)
	}
	return nil
}
