package render

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/clipforge/clipforge-agent/internal/edit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testJob() Job {
	cfg := edit.Config{
		Segments: []edit.Segment{
			{ID: "a", SourceStart: 0, SourceEnd: 10, Transition: edit.TransitionNone},
			{ID: "b", SourceStart: 12, SourceEnd: 20, Transition: edit.TransitionHard},
		},
	}
	return NewJob("proj-1", "/media/clip.mp4", 30, 60, cfg, nil)
}

func TestHTTPClient_Submit_Success(t *testing.T) {
	var receivedJob Job
	var receivedAuth string
	var requestID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/render/jobs" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		receivedAuth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-Id")

		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &receivedJob)

		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(Submission{JobID: "job-42"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", testLogger())
	sub, err := client.Submit(context.Background(), testJob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sub.JobID != "job-42" {
		t.Errorf("job_id = %q, want %q", sub.JobID, "job-42")
	}
	if receivedAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if requestID == "" {
		t.Error("expected X-Request-Id header")
	}
	if receivedJob.ProjectID != "proj-1" {
		t.Errorf("project_id = %q, want %q", receivedJob.ProjectID, "proj-1")
	}
	if len(receivedJob.Config.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(receivedJob.Config.Segments))
	}
	if receivedJob.ExpectedDuration != 18 {
		t.Errorf("expected_duration = %v, want 18", receivedJob.ExpectedDuration)
	}
}

func TestHTTPClient_Submit_ReturnsSubmitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"missing media"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "t", testLogger())
	_, err := client.Submit(context.Background(), testJob())
	if err == nil {
		t.Fatal("expected error for 400 response")
	}

	var submitErr *SubmitError
	if !errors.As(err, &submitErr) {
		t.Fatalf("expected SubmitError, got %T", err)
	}
	if submitErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status_code = %d, want 400", submitErr.StatusCode)
	}
	if !strings.Contains(submitErr.Body, "missing media") {
		t.Errorf("body = %q, want to contain missing media", submitErr.Body)
	}
	if submitErr.IsRetryable() {
		t.Error("4xx submit error should be permanent")
	}
}

func TestSubmitError_IsRetryable(t *testing.T) {
	if !(&SubmitError{StatusCode: http.StatusBadGateway}).IsRetryable() {
		t.Error("expected 5xx to be retryable")
	}
	if (&SubmitError{StatusCode: http.StatusUnprocessableEntity}).IsRetryable() {
		t.Error("expected 4xx to be permanent")
	}
}

func TestHTTPClient_Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/render/jobs/job-42" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(JobStatus{JobID: "job-42", State: "rendering", Progress: 0.4})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "", testLogger())
	status, err := client.Status(context.Background(), "job-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != "rendering" || status.Progress != 0.4 {
		t.Errorf("status = %+v", status)
	}
}

func TestHTTPClient_Submit_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Submission{JobID: "job-1"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "t", testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Submit(ctx, testJob()); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestNewJob_TransitionAwareDuration(t *testing.T) {
	cfg := edit.Config{
		Segments: []edit.Segment{
			{ID: "a", SourceStart: 0, SourceEnd: 10, Transition: edit.TransitionNone},
			{ID: "b", SourceStart: 12, SourceEnd: 20, Transition: edit.TransitionCrossfade, TransitionDuration: 0.5},
		},
	}
	job := NewJob("p", "/m.mp4", 0, 20, cfg, nil)

	// The crossfade overlaps the boundary, shortening the rendered output.
	if math.Abs(job.ExpectedDuration-17.5) > 1e-9 {
		t.Errorf("expected_duration = %v, want 17.5", job.ExpectedDuration)
	}
}

func TestClientInterfaces(t *testing.T) {
	var _ Client = (*HTTPClient)(nil)
	var _ Client = (*StubClient)(nil)
}

func TestStubClient_Submit(t *testing.T) {
	stub := NewStubClient(testLogger())
	sub, err := stub.Submit(context.Background(), testJob())
	if err != nil {
		t.Fatalf("stub should not error: %v", err)
	}
	if sub.JobID == "" {
		t.Error("stub submission missing job ID")
	}
}
