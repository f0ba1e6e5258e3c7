package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// BackboardClient talks to a Backboard-style assistant service over HTTP.
type BackboardClient struct {
	APIKey  string
	BaseURL string
}

func (c *BackboardClient) CreateAssistant(ctx context.Context, name, description string, tools []ToolDefinition) (string, error) {
	body := map[string]any{
		"name":        name,
		"description": description,
		"tools":       tools,
	}
	var resp struct {
		AssistantID string `json:"assistant_id"`
	}
	if err := c.postJSON(ctx, c.endpoint("/v1/assistants"), body, &resp); err != nil {
		return "", err
	}
	if resp.AssistantID == "" {
		return "", fmt.Errorf("backboard: empty assistant_id")
	}
	return resp.AssistantID, nil
}

func (c *BackboardClient) CreateThread(ctx context.Context, assistantID string) (string, error) {
	var resp struct {
		ThreadID string `json:"thread_id"`
	}
	if err := c.postJSON(ctx, c.endpoint("/v1/assistants/"+assistantID+"/threads"), map[string]any{}, &resp); err != nil {
		return "", err
	}
	if resp.ThreadID == "" {
		return "", fmt.Errorf("backboard: empty thread_id")
	}
	return resp.ThreadID, nil
}

func (c *BackboardClient) AddMessage(ctx context.Context, threadID, content, model string) (*Response, error) {
	body := map[string]any{
		"content":    content,
		"model_name": model,
		"stream":     false,
		"memory":     "off",
	}
	var resp Response
	if err := c.postJSON(ctx, c.endpoint("/v1/threads/"+threadID+"/messages"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackboardClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Response, error) {
	body := map[string]any{"tool_outputs": outputs}
	var resp Response
	if err := c.postJSON(ctx, c.endpoint("/v1/threads/"+threadID+"/runs/"+runID+"/tool_outputs"), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *BackboardClient) postJSON(ctx context.Context, url string, body any, out any) error {
	b, _ := json.Marshal(body)
	httpClient := &http.Client{Timeout: clientTimeout()}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		// fresh request per attempt so the body reader is never reused
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
		req.Header.Set("Content-Type", "application/json")
		res, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			if isTimeout(err) {
				time.Sleep(backoff(attempt))
				continue
			}
			return err
		}
		if res.StatusCode >= 200 && res.StatusCode < 300 {
			err := json.NewDecoder(res.Body).Decode(out)
			res.Body.Close()
			return err
		}
		var eresp map[string]any
		_ = json.NewDecoder(res.Body).Decode(&eresp)
		res.Body.Close()
		lastErr = fmt.Errorf("backboard status %d: %v", res.StatusCode, eresp)
		if res.StatusCode == 408 || res.StatusCode == 429 || (res.StatusCode >= 500 && res.StatusCode <= 599) {
			time.Sleep(backoff(attempt))
			continue
		}
		return lastErr
	}
	return lastErr
}

func (c *BackboardClient) endpoint(path string) string {
	base := c.BaseURL
	if base == "" {
		base = os.Getenv("BACKBOARD_API_BASE")
	}
	if base == "" {
		base = "https://api.backboard.io"
	}
	return base + path
}

func clientTimeout() time.Duration {
	if v := os.Getenv("LLM_HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := time.ParseDuration(v + "ms"); err == nil {
			return ms
		}
	}
	return 45 * time.Second
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	if te, ok := err.(timeout); ok {
		return te.Timeout()
	}
	return false
}

func backoff(i int) time.Duration {
	return time.Duration(500*(1<<i)) * time.Millisecond
}
