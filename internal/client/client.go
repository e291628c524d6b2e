// Package client talks to the remote task store over HTTP. Each method maps one
// intent to one request and translates every failure into a typed *Error.
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
	"github.com/tidwall/gjson"

	"github.com/imkarma/taskboard/internal/export"
	"github.com/imkarma/taskboard/internal/task"
)

// maxErrorBody caps how much of a failed response is kept in the error.
const maxErrorBody = 200

// Client is a thin request/response mapper over the store's HTTP API.
// It keeps no state between calls.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the store at baseURL. A zero timeout means requests
// are bounded only by their context.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid store URL %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the store address this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTasks returns the tasks matching the filter. Unset dimensions are left
// out of the query string.
func (c *Client) ListTasks(ctx context.Context, f task.Filter) ([]task.Task, error) {
	data, err := c.do(ctx, KindFetchFailed, http.MethodGet, "/tasks", task.BuildQuery(f), nil)
	if err != nil {
		return nil, err
	}
	tasks := []task.Task{}
	if err := decodeList(data, &tasks); err != nil {
		return nil, &Error{Kind: KindFetchFailed, Op: "GET /tasks", Cause: err}
	}
	return tasks, nil
}

// GetStats returns the store's aggregate counters.
func (c *Client) GetStats(ctx context.Context) (*task.Stats, error) {
	data, err := c.do(ctx, KindStatsUnavailable, http.MethodGet, "/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	var stats task.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, &Error{Kind: KindStatsUnavailable, Op: "GET /stats", Cause: fmt.Errorf("decode stats: %w", err)}
	}
	return &stats, nil
}

// GetCategories returns the distinct categories in use across all tasks.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, KindCategoriesUnavailable, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	categories := []string{}
	if err := decodeList(data, &categories); err != nil {
		return nil, &Error{Kind: KindCategoriesUnavailable, Op: "GET /categories", Cause: err}
	}
	return categories, nil
}

// CreateTask submits a draft and returns the stored task with its new ID.
func (c *Client) CreateTask(ctx context.Context, d task.Draft) (*task.Task, error) {
	if err := d.Validate(); err != nil {
		return nil, &Error{Kind: KindCreateFailed, Op: "POST /tasks", Cause: err}
	}
	data, err := c.do(ctx, KindCreateFailed, http.MethodPost, "/tasks", nil, d)
	if err != nil {
		return nil, err
	}
	var created task.Task
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, &Error{Kind: KindCreateFailed, Op: "POST /tasks", Cause: fmt.Errorf("decode task: %w", err)}
	}
	return &created, nil
}

// DeleteTask removes a task. The request is always sent; the store decides
// whether an unknown ID is an error.
func (c *Client) DeleteTask(ctx context.Context, id task.ID) error {
	if id == "" {
		return &Error{Kind: KindDeleteFailed, Op: "DELETE /tasks", Cause: errors.New("task id is required")}
	}
	_, err := c.do(ctx, KindDeleteFailed, http.MethodDelete, "/tasks/"+url.PathEscape(string(id)), nil, nil)
	return err
}

// PredictCategory asks the store to suggest a category for a draft.
func (c *Client) PredictCategory(ctx context.Context, title, description string) (string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" {
		return "", &Error{Kind: KindPredictionFailed, Op: "POST /predict_category", Cause: errors.New("title and description are required")}
	}
	body := map[string]string{"title": title, "description": description}
	data, err := c.do(ctx, KindPredictionFailed, http.MethodPost, "/predict_category", nil, body)
	if err != nil {
		return "", err
	}
	result := gjson.GetBytes(data, "predicted_category")
	if !result.Exists() {
		return "", &Error{Kind: KindPredictionFailed, Op: "POST /predict_category", Cause: errors.New("response has no predicted_category")}
	}
	return result.String(), nil
}

// Export downloads every task in the given format. Filters are never applied.
func (c *Client) Export(ctx context.Context, format export.Format) ([]byte, error) {
	if !format.Valid() {
		return nil, &Error{Kind: KindExportFailed, Op: "GET /export", Cause: fmt.Errorf("unsupported format %q", format)}
	}
	q := url.Values{}
	q.Set("format", string(format))
	return c.do(ctx, KindExportFailed, http.MethodGet, "/export", q, nil)
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, kind Kind, method, path string, query url.Values, body any) ([]byte, error) {
	op := method + " " + path
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: kind, Op: op, Cause: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &Error{Kind: kind, Op: op, Cause: fmt.Errorf("create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json, text/csv")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("store request failed", "op", op, "request_id", requestID, "error", err)
		return nil, &Error{Kind: kind, Op: op, Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: kind, Op: op, Status: resp.StatusCode, Cause: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug("store request",
		"op", op,
		"query", query.Encode(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: kind, Op: op, Status: resp.StatusCode, Body: truncate(string(data), maxErrorBody)}
	}
	return data, nil
}

// decodeList decodes a JSON array into out. A well-formed body that is not an
// array leaves out untouched, so callers see an empty list.
func decodeList(data []byte, out any) error {
	if !gjson.ValidBytes(data) {
		return errors.New("response is not valid JSON")
	}
	if !gjson.ParseBytes(data).IsArray() {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode list: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
