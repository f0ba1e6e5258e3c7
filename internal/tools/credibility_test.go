package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/claim-verifier/internal/providers/assistant"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.Example.COM/path?q=1", "example.com"},
		{"https://news.bbc.co.uk/article", "news.bbc.co.uk"},
		{"http://example.org", "example.org"},
		{"not a url at all", ""},
		{"://bad", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Domain(tt.raw), tt.raw)
	}
}

func TestCredibilityNormalizesSources(t *testing.T) {
	mock := &assistant.MockClient{}
	mock.Enqueue(&assistant.Response{
		Status:  assistant.StatusCompleted,
		Content: `{"items":[{"url":"https://www.example.com/a","domain":"example.com","tier":"medium","rationale":"r","signals":["named_author"]}]}`,
	})
	tool := &CredibilityTool{Coordinator: assistant.NewCoordinator(mock), Model: "m"}

	out, err := tool.Execute(context.Background(), map[string]any{"sources": []any{
		map[string]any{"url": "https://www.Example.com/a", "title": "A", "snippet": "s"},
		map[string]any{"title": "no url, dropped"},
		"not an object",
	}})
	require.NoError(t, err)

	items := out["items"].([]any)
	require.Len(t, items, 1)

	// only the well-formed source reached the assistant, with its domain derived
	require.Len(t, mock.Messages, 1)
	var sent struct {
		Sources []map[string]any `json:"sources"`
	}
	require.NoError(t, json.Unmarshal([]byte(mock.Messages[0].Content), &sent))
	require.Len(t, sent.Sources, 1)
	assert.Equal(t, "example.com", sent.Sources[0]["domain"])
}

func TestCredibilityRejectsNonJSONReply(t *testing.T) {
	mock := &assistant.MockClient{}
	mock.Enqueue(&assistant.Response{Status: assistant.StatusCompleted, Content: "I would rate these as medium."})
	tool := &CredibilityTool{Coordinator: assistant.NewCoordinator(mock), Model: "m"}

	_, err := tool.Execute(context.Background(), map[string]any{"sources": []any{
		map[string]any{"url": "https://example.com"},
	}})
	assert.Error(t, err)
}
