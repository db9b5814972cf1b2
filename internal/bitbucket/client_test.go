package bitbucket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/lintinsights/internal/insights"
)

const reportPath = "/2.0/repositories/acme/web-app/commit/919db18/reports/eslint-919db18"

func newTestClient(url string) *Client {
	return New(Options{
		BaseURL:   url + "/2.0",
		Token:     "tok_123",
		Workspace: "acme",
		RepoSlug:  "web-app",
		Commit:    "919db18",
	})
}

func checkHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if r.Header.Get("Authorization") != "Bearer tok_123" {
		t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
	}
	if r.Header.Get("Accept") != "application/json" {
		t.Errorf("unexpected accept header: %s", r.Header.Get("Accept"))
	}
}

func TestReportPath(t *testing.T) {
	c := New(Options{Workspace: "acme", RepoSlug: "web app", Commit: "abc"})
	want := "repositories/acme/web%20app/commit/abc/reports/eslint-abc"
	if got := c.ReportPath("eslint-abc"); got != want {
		t.Errorf("ReportPath = %q, want %q", got, want)
	}
}

func TestDeleteReportSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE, got %s", r.Method)
		}
		if r.URL.Path != reportPath {
			t.Errorf("expected %s, got %s", reportPath, r.URL.Path)
		}
		checkHeaders(t, r)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	if err := c.DeleteReport(context.Background(), "eslint-919db18"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteReportNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"type":"error","error":{"message":"Resource not found"}}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	err := c.DeleteReport(context.Background(), "eslint-919db18")
	if err == nil {
		t.Fatal("expected error for 404")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apiErr.StatusCode)
	}
	if !strings.Contains(apiErr.Body, "Resource not found") {
		t.Errorf("expected body to be captured, got %q", apiErr.Body)
	}
}

func TestCreateReportSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != reportPath {
			t.Errorf("expected %s, got %s", reportPath, r.URL.Path)
		}
		checkHeaders(t, r)
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}

		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["report_type"] != "TEST" {
			t.Errorf("expected report_type=TEST, got %s", body["report_type"])
		}
		if body["result"] != "FAILED" {
			t.Errorf("expected result=FAILED, got %s", body["result"])
		}
		if body["details"] != "1 problem (1 error, 0 warnings)" {
			t.Errorf("unexpected details: %s", body["details"])
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"uuid":"{1}"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	report := insights.ReportSummary{
		Title:      insights.ReportTitle,
		Reporter:   insights.ReportReporter,
		ReportType: insights.ReportType,
		Details:    "1 problem (1 error, 0 warnings)",
		Result:     insights.ResultFailed,
	}
	if err := c.CreateReport(context.Background(), "eslint-919db18", report); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCreateReportBadRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad field"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	err := c.CreateReport(context.Background(), "eslint-919db18", insights.ReportSummary{})
	if err == nil {
		t.Fatal("expected error for 400")
	}
	if !strings.Contains(err.Error(), "create report") {
		t.Errorf("expected stage prefix in error, got %q", err.Error())
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Body != `{"error":"bad field"}` {
		t.Errorf("expected body to be captured, got %v", err)
	}
}

func TestCreateAnnotationsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != reportPath+"/annotations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		checkHeaders(t, r)

		var body []map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body) != 2 {
			t.Fatalf("expected 2 annotations, got %d", len(body))
		}
		for _, key := range []string{"external_id", "line", "path", "summary", "annotation_type", "severity"} {
			if _, ok := body[0][key]; !ok {
				t.Errorf("expected key %q in annotation", key)
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	annotations := []insights.Annotation{
		{ExternalID: "a", Line: 1, Path: "a.js", Summary: " (semi)", AnnotationType: "BUG", Severity: insights.SeverityHigh},
		{ExternalID: "b", Line: 2, Path: "a.js", Summary: " (quotes)", AnnotationType: "BUG", Severity: insights.SeverityMedium},
	}
	if err := c.CreateAnnotations(context.Background(), "eslint-919db18", annotations); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := newTestClient(url)
	err := c.DeleteReport(context.Background(), "eslint-919db18")
	if err == nil {
		t.Fatal("expected transport error")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("transport errors should not be APIErrors")
	}
}

func TestContextCanceled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(ts.URL)
	if err := c.DeleteReport(ctx, "eslint-919db18"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
