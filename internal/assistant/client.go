// Package assistant is an HTTP client for the OpenAI Assistants v2 API,
// covering the thread, message and run operations the orchestrator needs.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/soothe-labs/advicebot/internal/config"
)

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.AssistantRequestTimeout},
	}
}

// APIError is a non-2xx response from the assistant service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("assistant api: status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// RunParams configure one run submission.
type RunParams struct {
	AssistantID string
	Temperature float64
	MaxTokens   int
	// TimeoutSec bounds the run on the remote side, in seconds.
	TimeoutSec int
	// FunctionName, when non-empty, constrains the run to a single
	// function tool of that name.
	FunctionName string
}

// CreateThread creates an empty remote thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &resp); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return resp.ID, nil
}

// AddMessage appends a message to a thread.
func (c *Client) AddMessage(ctx context.Context, threadID, role, content string) error {
	body := struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: role, Content: content}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil); err != nil {
		return fmt.Errorf("add message: %w", err)
	}
	return nil
}

// CreateRun submits a run against the thread's current state.
func (c *Client) CreateRun(ctx context.Context, threadID string, params RunParams) (*Run, error) {
	body := map[string]any{
		"assistant_id":          params.AssistantID,
		"temperature":           params.Temperature,
		"max_completion_tokens": params.MaxTokens,
	}
	if params.TimeoutSec > 0 {
		body["timeout"] = params.TimeoutSec
	}
	if params.FunctionName != "" {
		body["tools"] = []map[string]any{
			{
				"type":     "function",
				"function": map[string]any{"name": params.FunctionName},
			},
		}
	}

	run := &Run{}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// GetRun fetches the current state of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (*Run, error) {
	run := &Run{}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, run); err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListMessages returns up to limit messages from a thread. Order is
// "asc" or "desc" by creation time.
func (c *Client) ListMessages(ctx context.Context, threadID string, limit int, order string) ([]Message, error) {
	var resp struct {
		Data []Message `json:"data"`
	}
	path := fmt.Sprintf("/threads/%s/messages?limit=%d&order=%s", threadID, limit, order)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return resp.Data, nil
}

// DeleteMessage removes a single message from a thread.
func (c *Client) DeleteMessage(ctx context.Context, threadID, messageID string) error {
	if err := c.do(ctx, http.MethodDelete, "/threads/"+threadID+"/messages/"+messageID, nil, nil); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SubmitToolOutputs acknowledges a run's pending tool calls so it can
// resume toward a terminal state.
func (c *Client) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Run, error) {
	body := struct {
		ToolOutputs []ToolOutput `json:"tool_outputs"`
	}{ToolOutputs: outputs}

	run := &Run{}
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	if err := c.do(ctx, http.MethodPost, path, body, run); err != nil {
		return nil, fmt.Errorf("submit tool outputs: %w", err)
	}
	return run, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(status int, data []byte) *APIError {
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
