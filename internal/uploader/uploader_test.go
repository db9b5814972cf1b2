package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/lintinsights/internal/bitbucket"
	"github.com/ppiankov/lintinsights/internal/eslint"
	"github.com/ppiankov/lintinsights/internal/insights"
	"github.com/ppiankov/lintinsights/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls in order and fails the named stage.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	batches  []int
	report   insights.ReportSummary
	failOn   string
	failWith error
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return f.failWith
	}
	return nil
}

func (f *fakeAPI) DeleteReport(ctx context.Context, reportID string) error {
	return f.record("delete")
}

func (f *fakeAPI) CreateReport(ctx context.Context, reportID string, report insights.ReportSummary) error {
	f.report = report
	return f.record("create")
}

func (f *fakeAPI) CreateAnnotations(ctx context.Context, reportID string, annotations []insights.Annotation) error {
	f.batches = append(f.batches, len(annotations))
	return f.record("annotate")
}

// resultsWithMessages builds one result holding n error messages.
func resultsWithMessages(n int) []eslint.LintResult {
	msgs := make([]eslint.LintMessage, n)
	for i := range msgs {
		msgs[i] = eslint.LintMessage{Line: i + 1, Message: fmt.Sprintf("problem %d", i), Severity: 2, RuleID: eslint.Rule("semi")}
	}
	return []eslint.LintResult{{FilePath: "/repo/src/app.js", ErrorCount: n, Messages: msgs}}
}

func TestProcessSequence(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "919db18", "/repo", logging.Discard())

	require.NoError(t, u.Process(context.Background(), resultsWithMessages(3)))
	assert.Equal(t, []string{"delete", "create", "annotate"}, api.calls)
	assert.Equal(t, []int{3}, api.batches)
	assert.Equal(t, insights.ResultFailed, api.report.Result)
	assert.Equal(t, "eslint-919db18", u.ReportID())
}

func TestProcessNoAnnotations(t *testing.T) {
	var buf bytes.Buffer
	api := &fakeAPI{}
	u := New(api, "919db18", "/repo", logging.New(logging.Options{Verbose: true, Output: &buf}))

	require.NoError(t, u.Process(context.Background(), []eslint.LintResult{{FilePath: "/repo/a.js"}}))
	assert.Equal(t, []string{"delete", "create"}, api.calls)
	assert.Contains(t, buf.String(), "no annotations found!")
	assert.Equal(t, insights.ResultPassed, api.report.Result)
}

func TestProcessDeleteFailureAborts(t *testing.T) {
	api := &fakeAPI{failOn: "delete", failWith: &bitbucket.APIError{StatusCode: 404, Status: "404 Not Found", Body: `{"error":"not found"}`}}
	var buf bytes.Buffer
	u := New(api, "919db18", "/repo", logging.New(logging.Options{Verbose: true, Output: &buf}))

	err := u.Process(context.Background(), resultsWithMessages(1))
	require.Error(t, err)
	assert.Equal(t, []string{"delete"}, api.calls)

	var apiErr *bitbucket.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)

	out := buf.String()
	assert.Contains(t, out, "Report deletion failed!")
	assert.Contains(t, out, "not found")
}

func TestProcessCreateFailureAborts(t *testing.T) {
	api := &fakeAPI{failOn: "create", failWith: errors.New("connection reset")}
	u := New(api, "919db18", "/repo", logging.Discard())

	err := u.Process(context.Background(), resultsWithMessages(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create stage")
	assert.Equal(t, []string{"delete", "create"}, api.calls)
}

func TestProcessAnnotateFailure(t *testing.T) {
	api := &fakeAPI{failOn: "annotate", failWith: errors.New("boom")}
	u := New(api, "919db18", "/repo", logging.Discard())

	err := u.Process(context.Background(), resultsWithMessages(250))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "annotate stage")
	// the first batch fails, so no further batches are sent
	assert.Equal(t, []int{100}, api.batches)
}

func TestProcessChunksAnnotations(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "919db18", "/repo", logging.Discard())

	require.NoError(t, u.Process(context.Background(), resultsWithMessages(250)))
	assert.Equal(t, []int{100, 100, 50}, api.batches)
}

func TestProcessCapsTotalAnnotations(t *testing.T) {
	api := &fakeAPI{}
	u := New(api, "919db18", "/repo", logging.Discard())

	results := resultsWithMessages(1234)
	assert.Len(t, insights.GenerateAnnotations(results, "eslint-919db18", "/repo"), 1234)

	require.NoError(t, u.Process(context.Background(), results))
	require.Len(t, api.batches, 10)
	total := 0
	for _, n := range api.batches {
		assert.Equal(t, MaxAnnotationsPerRequest, n)
		total += n
	}
	assert.Equal(t, MaxTotalAnnotations, total)
}

func TestChunk(t *testing.T) {
	annotationsOf := func(n int) []insights.Annotation { return make([]insights.Annotation, n) }

	assert.Empty(t, Chunk(nil, 100))
	assert.Len(t, Chunk(annotationsOf(100), 100), 1)
	assert.Len(t, Chunk(annotationsOf(101), 100), 2)

	batches := Chunk(annotationsOf(250), 100)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 100)
	assert.Len(t, batches[2], 50)

	assert.Len(t, Chunk(annotationsOf(5), 0), 1)
}

func TestChunkPreservesOrder(t *testing.T) {
	annotations := make([]insights.Annotation, 205)
	for i := range annotations {
		annotations[i].ExternalID = fmt.Sprintf("id-%d", i)
	}

	var flat []string
	for _, batch := range Chunk(annotations, 100) {
		for _, a := range batch {
			flat = append(flat, a.ExternalID)
		}
	}
	require.Len(t, flat, 205)
	for i, id := range flat {
		assert.Equal(t, fmt.Sprintf("id-%d", i), id)
	}
}

func TestProcessAgainstHTTPServer(t *testing.T) {
	var mu sync.Mutex
	var requests []string
	var sizes []int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests = append(requests, r.Method)

		if strings.HasSuffix(r.URL.Path, "/annotations") {
			var body []insights.Annotation
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode annotations: %v", err)
			}
			sizes = append(sizes, len(body))
		}

		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer ts.Close()

	client := bitbucket.New(bitbucket.Options{
		BaseURL:   ts.URL,
		Token:     "tok",
		Workspace: "acme",
		RepoSlug:  "web-app",
		Commit:    "919db18",
	})
	u := New(client, "919db18", "/repo", logging.Discard())

	require.NoError(t, u.Process(context.Background(), resultsWithMessages(150)))
	assert.Equal(t, []string{http.MethodDelete, http.MethodPut, http.MethodPost, http.MethodPost}, requests)
	assert.Equal(t, []int{100, 50}, sizes)
}
