package tools

import (
	"context"

	"github.com/example/claim-verifier/internal/providers/assistant"
)

// Tool is one executable capability the orchestration loop can dispatch to.
// Execute returns a JSON-serializable output map; errors are surfaced to the
// loop, which converts them to structured error payloads for the round.
type Tool interface {
	Name() string
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Declarer is implemented by tools that are exposed to the remote assistant
// as callable functions. Tools without a declaration (numeric_verify) stay
// host-side only.
type Declarer interface {
	Definition() assistant.ToolDefinition
}

type Registry struct {
	tools map[string]Tool
	names []string
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]Tool{}}
}

func (r *Registry) Register(t Tool) {
	if _, ok := r.tools[t.Name()]; !ok {
		r.names = append(r.names, t.Name())
	}
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns the declared function schemas in registration order.
func (r *Registry) Definitions() []assistant.ToolDefinition {
	var defs []assistant.ToolDefinition
	for _, name := range r.names {
		if d, ok := r.tools[name].(Declarer); ok {
			defs = append(defs, d.Definition())
		}
	}
	return defs
}

// Structured error kinds carried in tool outputs, so the synthesis stage and
// tests can tell failure modes apart.
const (
	ErrKindMalformedCall = "malformed_call"
	ErrKindUnknownTool   = "unknown_tool"
	ErrKindExecution     = "execution_error"
	ErrKindTransport     = "transport_error"
)

type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ErrorPayload wraps a failure as data so it can be submitted back to the
// assistant as a regular tool output.
func ErrorPayload(kind, message string) map[string]any {
	return map[string]any{"error": ToolError{Kind: kind, Message: message}}
}
