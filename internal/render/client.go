// Package render submits finished edit configurations to the offline
// render service. The agent never renders locally; it hands the service
// the configuration plus transcript and polls for completion.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// SubmitError is a non-2xx response from the render service.
type SubmitError struct {
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("render submit failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable reports whether the submit may be retried. Server errors
// are transient; client errors mean the payload is wrong.
func (e *SubmitError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Client is the render-service contract.
type Client interface {
	Submit(ctx context.Context, job Job) (*Submission, error)
	Status(ctx context.Context, jobID string) (*JobStatus, error)
}

// Submission acknowledges an accepted render job.
type Submission struct {
	JobID string `json:"jobId"`
}

// JobStatus is the render service's view of a submitted job.
type JobStatus struct {
	JobID     string  `json:"jobId"`
	State     string  `json:"state"`
	Progress  float64 `json:"progress"`
	OutputURL string  `json:"outputUrl,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// HTTPClient talks to a real render service over HTTP.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) Submit(ctx context.Context, job Job) (*Submission, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal render job: %w", err)
	}

	url := c.baseURL + "/api/render/jobs"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Info("submitting render job",
		"url", url,
		"project_id", job.ProjectID,
		"segment_count", len(job.Config.Segments),
		"expected_duration", job.ExpectedDuration,
		"body_bytes", len(body),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmitError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var sub Submission
	if err := json.Unmarshal(respBody, &sub); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	c.logger.Info("render job accepted", "job_id", sub.JobID)
	return &sub, nil
}

func (c *HTTPClient) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	url := fmt.Sprintf("%s/api/render/jobs/%s", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SubmitError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var status JobStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	return &status, nil
}

// StubClient accepts every job without rendering anything, for development
// hosts with no render service configured.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) Submit(ctx context.Context, job Job) (*Submission, error) {
	c.logger.Info("render stub: submit requested", "project_id", job.ProjectID)
	return &Submission{JobID: "stub-" + uuid.NewString()[:8]}, nil
}

func (c *StubClient) Status(ctx context.Context, jobID string) (*JobStatus, error) {
	return &JobStatus{JobID: jobID, State: "queued"}, nil
}
