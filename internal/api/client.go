package api

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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TenantHeader carries the company id on every resource request.
const TenantHeader = "company_id"

const maxResponseBytes = 4 << 20

var (
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "console_upstream_requests_total",
		Help: "Requests sent to the LinkEats REST API, by operation and status.",
	}, []string{"operation", "status"})
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "console_upstream_request_duration_seconds",
		Help:    "Latency of requests sent to the LinkEats REST API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// Client is the single gateway to the REST backend. Every request is JSON and
// every non-2xx response is normalised into *Error.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewClientWithHTTP(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request describes one call to the backend.
type Request struct {
	// Operation labels metrics and logs.
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Body      interface{}
	Token     string
	TenantID  string
	// DefaultMessage is used when the error body parses but carries no message.
	DefaultMessage string
}

func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	start := time.Now()
	status, err := c.do(ctx, req, out)
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	upstreamRequests.WithLabelValues(req.Operation, label).Inc()
	upstreamDuration.WithLabelValues(req.Operation).Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "upstream request failed",
			slog.String("operation", req.Operation),
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return err
}

func (c *Client) do(ctx context.Context, req Request, out interface{}) (int, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return 0, fmt.Errorf("encode %s request: %w", req.Operation, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return 0, fmt.Errorf("build %s request: %w", req.Operation, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.TenantID != "" {
		httpReq.Header.Set(TenantHeader, req.TenantID)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, &Error{Message: MsgConnection, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, &Error{Status: resp.StatusCode, Message: MsgConnection, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newError(resp.StatusCode, raw, req.DefaultMessage)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return resp.StatusCode, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode %s response: %w", req.Operation, err)
	}
	return resp.StatusCode, nil
}

// Unwrap decodes raw into out, preferring the value under key when the
// backend wraps the entity in an envelope such as {"client": {...}}.
func Unwrap(raw json.RawMessage, key string, out interface{}) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if inner, ok := envelope[key]; ok && !isNull(inner) {
			return json.Unmarshal(inner, out)
		}
	}
	return json.Unmarshal(raw, out)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

var errEmptyPath = errors.New("empty path segment")

// PathEscape escapes a single path segment, rejecting empty ones.
func PathEscape(segment string) (string, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "", errEmptyPath
	}
	return url.PathEscape(segment), nil
}
