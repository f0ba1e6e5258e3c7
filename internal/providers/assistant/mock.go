package assistant

import (
	"context"
	"fmt"
	"sync"
)

// RecordedMessage captures one AddMessage call for inspection in tests.
type RecordedMessage struct {
	ThreadID string
	Content  string
	Model    string
}

// MockClient is used when no real provider is configured, and doubles as a
// scriptable fake in tests: queued responses are popped in order by
// AddMessage/SubmitToolOutputs; when the queue is empty a minimal completed
// response is returned so the service still works end to end without keys.
type MockClient struct {
	mu         sync.Mutex
	queue      []*Response
	assistants int
	threads    int

	Messages  []RecordedMessage
	Submitted [][]ToolOutput
}

const mockContent = `{"ai_generated_risk_score":0.0,"misinformation_risk_score":0.0,` +
	`"verdict":"unverifiable","confidence":0.0,"reasoning_chain":["no provider configured"],` +
	`"evidence":[],"uncertainties":["mock assistant produced no real analysis"],"tool_rounds":0}`

// Enqueue appends scripted responses consumed by subsequent calls.
func (m *MockClient) Enqueue(resps ...*Response) {
	m.mu.Lock()
	m.queue = append(m.queue, resps...)
	m.mu.Unlock()
}

func (m *MockClient) CreateAssistant(ctx context.Context, name, description string, tools []ToolDefinition) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assistants++
	return fmt.Sprintf("asst_%d", m.assistants), nil
}

func (m *MockClient) CreateThread(ctx context.Context, assistantID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threads++
	return fmt.Sprintf("thread_%d", m.threads), nil
}

func (m *MockClient) AddMessage(ctx context.Context, threadID, content, model string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, RecordedMessage{ThreadID: threadID, Content: content, Model: model})
	return m.pop(), nil
}

func (m *MockClient) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Submitted = append(m.Submitted, outputs)
	return m.pop(), nil
}

func (m *MockClient) pop() *Response {
	if len(m.queue) == 0 {
		return &Response{Status: StatusCompleted, Content: mockContent}
	}
	r := m.queue[0]
	m.queue = m.queue[1:]
	return r
}
