package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GeminiClient adapts the Gemini SDK to the assistant protocol. Assistants and
// threads are emulated locally: an assistant is a stored definition, a thread
// is a chat session with the assistant's instructions and declared functions,
// and tool calls map onto native function calling.
type GeminiClient struct {
	client *genai.Client
	model  string

	mu         sync.Mutex
	assistants map[string]geminiAssistant
	threads    map[string]*geminiThread
}

type geminiAssistant struct {
	description string
	tools       []ToolDefinition
}

type geminiThread struct {
	mu      sync.Mutex
	session *genai.ChatSession
	// call id -> function name, for correlating submitted outputs back to
	// the pending FunctionCall parts of the current run.
	pending map[string]string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	cli, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{
		client:     cli,
		model:      model,
		assistants: map[string]geminiAssistant{},
		threads:    map[string]*geminiThread{},
	}, nil
}

func (g *GeminiClient) CreateAssistant(ctx context.Context, name, description string, tools []ToolDefinition) (string, error) {
	id := "asst_" + uuid.NewString()
	g.mu.Lock()
	g.assistants[id] = geminiAssistant{description: description, tools: tools}
	g.mu.Unlock()
	return id, nil
}

func (g *GeminiClient) CreateThread(ctx context.Context, assistantID string) (string, error) {
	g.mu.Lock()
	a, ok := g.assistants[assistantID]
	g.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("gemini: unknown assistant %q", assistantID)
	}
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.description)}}
	if tools := toGenaiTools(a.tools); len(tools) > 0 {
		model.Tools = tools
	}
	id := "thread_" + uuid.NewString()
	g.mu.Lock()
	g.threads[id] = &geminiThread{session: model.StartChat(), pending: map[string]string{}}
	g.mu.Unlock()
	return id, nil
}

func (g *GeminiClient) AddMessage(ctx context.Context, threadID, content, model string) (*Response, error) {
	t, err := g.thread(threadID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	resp, err := t.session.SendMessage(ctx, genai.Text(content))
	if err != nil {
		return nil, err
	}
	return t.toResponse(resp), nil
}

func (g *GeminiClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Response, error) {
	t, err := g.thread(threadID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	parts := make([]genai.Part, 0, len(outputs))
	for _, out := range outputs {
		name := t.pending[out.ToolCallID]
		if name == "" {
			return nil, fmt.Errorf("gemini: unknown tool call id %q", out.ToolCallID)
		}
		delete(t.pending, out.ToolCallID)
		var payload map[string]any
		if err := json.Unmarshal([]byte(out.Output), &payload); err != nil {
			payload = map[string]any{"output": out.Output}
		}
		parts = append(parts, genai.FunctionResponse{Name: name, Response: payload})
	}
	resp, err := t.session.SendMessage(ctx, parts...)
	if err != nil {
		return nil, err
	}
	return t.toResponse(resp), nil
}

func (g *GeminiClient) thread(id string) (*geminiThread, error) {
	g.mu.Lock()
	t, ok := g.threads[id]
	g.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("gemini: unknown thread %q", id)
	}
	return t, nil
}

// toResponse translates a model turn: function-call parts become a
// REQUIRES_ACTION response with synthesized call ids, text parts a COMPLETED
// one. Caller holds the thread lock.
func (t *geminiThread) toResponse(resp *genai.GenerateContentResponse) *Response {
	var calls []ToolCall
	var text strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			switch p := part.(type) {
			case genai.FunctionCall:
				id := "call_" + uuid.NewString()
				t.pending[id] = p.Name
				calls = append(calls, ToolCall{
					ID:       id,
					Function: FunctionCall{Name: p.Name, ParsedArguments: p.Args},
				})
			case genai.Text:
				text.WriteString(string(p))
			}
		}
	}
	if len(calls) > 0 {
		return &Response{Status: StatusRequiresAction, RunID: "run_" + uuid.NewString(), ToolCalls: calls}
	}
	return &Response{Status: StatusCompleted, Content: text.String()}
}

func toGenaiTools(defs []ToolDefinition) []*genai.Tool {
	var decls []*genai.FunctionDeclaration
	for _, d := range defs {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        d.Function.Name,
			Description: d.Function.Description,
			Parameters:  toGenaiSchema(d.Function.Parameters),
		})
	}
	if len(decls) == 0 {
		return nil
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func toGenaiSchema(m map[string]any) *genai.Schema {
	if m == nil {
		return nil
	}
	s := &genai.Schema{}
	switch t, _ := m["type"].(string); t {
	case "object":
		s.Type = genai.TypeObject
	case "array":
		s.Type = genai.TypeArray
	case "integer":
		s.Type = genai.TypeInteger
	case "number":
		s.Type = genai.TypeNumber
	case "boolean":
		s.Type = genai.TypeBoolean
	default:
		s.Type = genai.TypeString
	}
	if d, ok := m["description"].(string); ok {
		s.Description = d
	}
	if props, ok := m["properties"].(map[string]any); ok {
		s.Properties = map[string]*genai.Schema{}
		for k, v := range props {
			if pm, ok := v.(map[string]any); ok {
				s.Properties[k] = toGenaiSchema(pm)
			}
		}
	}
	if items, ok := m["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	if req, ok := m["required"].([]string); ok {
		s.Required = req
	} else if req, ok := m["required"].([]any); ok {
		for _, r := range req {
			if rs, ok := r.(string); ok {
				s.Required = append(s.Required, rs)
			}
		}
	}
	return s
}
