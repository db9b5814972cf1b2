// Package bitbucket is a minimal Bitbucket Cloud Code Insights client.
package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ppiankov/lintinsights/internal/insights"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 30 * time.Second

// Client talks to the reports API of one commit.
type Client struct {
	baseURL    string
	token      string
	workspace  string
	repoSlug   string
	commit     string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Workspace string
	RepoSlug  string
	Commit    string
	Timeout   time.Duration
	// HTTPClient overrides the default client, mainly for tests.
	HTTPClient *http.Client
}

// New creates an API client bound to one commit.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		token:      opts.Token,
		workspace:  opts.Workspace,
		repoSlug:   opts.RepoSlug,
		commit:     opts.Commit,
		httpClient: httpClient,
	}
}

// APIError is a non-2xx response. Body holds the raw response body.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

// ReportPath returns the API path of a report, relative to the base URL.
func (c *Client) ReportPath(reportID string) string {
	return fmt.Sprintf("repositories/%s/%s/commit/%s/reports/%s",
		url.PathEscape(c.workspace),
		url.PathEscape(c.repoSlug),
		url.PathEscape(c.commit),
		url.PathEscape(reportID))
}

// DeleteReport removes the report. A missing report is reported as an
// *APIError with StatusCode 404 like any other failure.
func (c *Client) DeleteReport(ctx context.Context, reportID string) error {
	if err := c.do(ctx, http.MethodDelete, c.ReportPath(reportID), nil); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// CreateReport creates or replaces the report.
func (c *Client) CreateReport(ctx context.Context, reportID string, report insights.ReportSummary) error {
	if err := c.do(ctx, http.MethodPut, c.ReportPath(reportID), report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// CreateAnnotations uploads one batch of annotations. Callers keep batches
// within the API limit of 100.
func (c *Client) CreateAnnotations(ctx context.Context, reportID string, annotations []insights.Annotation) error {
	if err := c.do(ctx, http.MethodPost, c.ReportPath(reportID)+"/annotations", annotations); err != nil {
		return fmt.Errorf("create annotations: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	endpoint := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{
			Method:     method,
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
