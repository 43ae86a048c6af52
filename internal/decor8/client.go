package decor8

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type submitResponse struct {
	Data struct {
		JobID string `json:"job_id"`
	} `json:"data"`
}

type jobStatusResponse struct {
	Data struct {
		Status    string `json:"status"`
		ResultURL string `json:"result_url"`
	} `json:"data"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) Submit(submitReq SubmitRequest) (string, error) {
	jsonData, err := json.Marshal(submitReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/generate_designs"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d, body: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var result submitResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v, body: %s", ErrInvalidResponse, err, string(body))
	}

	if result.Data.JobID == "" {
		return "", fmt.Errorf("%w: job_id is empty, body: %s", ErrInvalidResponse, string(body))
	}

	return result.Data.JobID, nil
}

func (c *Client) JobStatus(jobID string) (Job, error) {
	url := strings.TrimSuffix(c.baseURL, "/") + "/jobs/" + jobID
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return Job{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Job{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Job{}, fmt.Errorf("%w: status %d, body: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var result jobStatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return Job{}, fmt.Errorf("%w: %v, body: %s", ErrInvalidResponse, err, string(body))
	}

	job := Job{
		State:     normalizeState(result.Data.Status),
		ResultURL: result.Data.ResultURL,
	}

	if job.State == "" {
		return Job{}, fmt.Errorf("%w: unknown status %q, body: %s", ErrInvalidResponse, result.Data.Status, string(body))
	}
	if job.State == StateDone && job.ResultURL == "" {
		return Job{}, fmt.Errorf("%w: done without result_url, body: %s", ErrInvalidResponse, string(body))
	}

	return job, nil
}

// normalizeState maps the provider's spelling variants onto the four
// canonical states, in one place at the boundary.
func normalizeState(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "queued", "pending":
		return StateQueued
	case "running", "in progress", "in_progress", "processing":
		return StateRunning
	case "done", "completed", "succeeded":
		return StateDone
	case "failed", "error":
		return StateFailed
	default:
		return ""
	}
}
