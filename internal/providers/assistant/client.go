package assistant

import (
	"context"
	"encoding/json"
	"strings"
)

// Response statuses reported by the remote assistant service.
const (
	StatusRequiresAction = "REQUIRES_ACTION"
	StatusCompleted      = "COMPLETED"
)

// ToolDefinition declares a callable function to the remote assistant.
type ToolDefinition struct {
	Type     string         `json:"type"`
	Function FunctionSchema `json:"function"`
}

type FunctionSchema struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolCall is one tool invocation requested by the assistant. Depending on the
// remote SDK the arguments arrive either pre-parsed or as a raw JSON string;
// Args is the single normalization point for both representations.
type ToolCall struct {
	ID       string       `json:"id"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name            string         `json:"name"`
	Arguments       string         `json:"arguments"`
	ParsedArguments map[string]any `json:"parsed_arguments,omitempty"`
}

// Args returns the canonical structured arguments for the call.
func (tc ToolCall) Args() (map[string]any, error) {
	if tc.Function.ParsedArguments != nil {
		return tc.Function.ParsedArguments, nil
	}
	raw := strings.TrimSpace(tc.Function.Arguments)
	if raw == "" {
		raw = "{}"
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ToolOutput correlates a serialized tool result back to its originating call.
type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

// Response is the assistant's reply to a message or a batch of tool outputs.
type Response struct {
	Status    string     `json:"status"`
	RunID     string     `json:"run_id,omitempty"`
	Content   string     `json:"content,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

func (r *Response) RequiresAction() bool {
	return r != nil && r.Status == StatusRequiresAction && len(r.ToolCalls) > 0
}

// Client is the remote assistant/thread/run collaborator. Implementations must
// be safe for concurrent use by independent requests.
type Client interface {
	CreateAssistant(ctx context.Context, name, description string, tools []ToolDefinition) (string, error)
	CreateThread(ctx context.Context, assistantID string) (string, error)
	AddMessage(ctx context.Context, threadID, content, model string) (*Response, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Response, error)
}
