// Package llm generates DIY plan text through an OpenAI-compatible chat
// completions endpoint, with a deterministic stub for keyless environments.
package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrProviderUnavailable = errors.New("llm: provider unavailable")
	ErrInvalidResponse     = errors.New("llm: invalid provider response")
)

type PlanInput struct {
	RoomType    string
	DesignStyle string
	Brief       string
}

// PlanGenerator produces the step-by-step plan text for a project.
type PlanGenerator interface {
	GeneratePlan(input PlanInput) (string, error)
}

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) GeneratePlan(input PlanInput) (string, error) {
	chatReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a practical home-improvement planner. Produce a numbered DIY plan with materials, tools, and steps."},
			{Role: "user", Content: planPrompt(input)},
		},
	}

	jsonData, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/chat/completions"
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: %v, body: %s", ErrInvalidResponse, err, string(body))
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: no completion in body: %s", ErrInvalidResponse, string(body))
	}

	return result.Choices[0].Message.Content, nil
}

func planPrompt(input PlanInput) string {
	var b strings.Builder
	b.WriteString("Create a DIY improvement plan")
	if input.RoomType != "" {
		b.WriteString(" for a " + input.RoomType)
	}
	if input.DesignStyle != "" {
		b.WriteString(" in " + input.DesignStyle + " style")
	}
	b.WriteString(".")
	if input.Brief != "" {
		b.WriteString(" Notes from the homeowner: " + input.Brief)
	}
	return b.String()
}
