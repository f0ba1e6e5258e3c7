package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolCallArgs(t *testing.T) {
	t.Run("parsed arguments preferred", func(t *testing.T) {
		tc := ToolCall{Function: FunctionCall{
			Arguments:       `{"from_raw":true}`,
			ParsedArguments: map[string]any{"from_parsed": true},
		}}
		args, err := tc.Args()
		require.NoError(t, err)
		assert.Contains(t, args, "from_parsed")
		assert.NotContains(t, args, "from_raw")
	})

	t.Run("raw json fallback", func(t *testing.T) {
		tc := ToolCall{Function: FunctionCall{Arguments: `{"claim_text":"x","claim_id":2}`}}
		args, err := tc.Args()
		require.NoError(t, err)
		assert.Equal(t, "x", args["claim_text"])
		assert.Equal(t, float64(2), args["claim_id"])
	})

	t.Run("empty means no arguments", func(t *testing.T) {
		args, err := ToolCall{}.Args()
		require.NoError(t, err)
		assert.Empty(t, args)
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		tc := ToolCall{Function: FunctionCall{Arguments: `{"claim_text":`}}
		_, err := tc.Args()
		assert.Error(t, err)
	})
}

func TestResponseRequiresAction(t *testing.T) {
	call := ToolCall{ID: "call_1", Function: FunctionCall{Name: "web_search_llm"}}
	assert.True(t, (&Response{Status: StatusRequiresAction, ToolCalls: []ToolCall{call}}).RequiresAction())
	// a REQUIRES_ACTION status with no calls must not loop
	assert.False(t, (&Response{Status: StatusRequiresAction}).RequiresAction())
	assert.False(t, (&Response{Status: StatusCompleted, ToolCalls: []ToolCall{call}}).RequiresAction())
	assert.False(t, (*Response)(nil).RequiresAction())
}
