package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackboardAddMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/threads/thread_1/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["content"])
		assert.Equal(t, "gpt-5-mini", body["model_name"])
		assert.Equal(t, false, body["stream"])
		assert.Equal(t, "off", body["memory"])

		json.NewEncoder(w).Encode(Response{Status: StatusCompleted, Content: "{}"})
	}))
	defer srv.Close()

	c := &BackboardClient{APIKey: "test-key", BaseURL: srv.URL}
	resp, err := c.AddMessage(context.Background(), "thread_1", "hello", "gpt-5-mini")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, resp.Status)
}

func TestBackboardRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"assistant_id": "asst_1"})
	}))
	defer srv.Close()

	c := &BackboardClient{APIKey: "k", BaseURL: srv.URL}
	id, err := c.CreateAssistant(context.Background(), "a", "d", nil)
	require.NoError(t, err)
	assert.Equal(t, "asst_1", id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestBackboardDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "bad request"})
	}))
	defer srv.Close()

	c := &BackboardClient{APIKey: "k", BaseURL: srv.URL}
	_, err := c.CreateThread(context.Background(), "asst_1")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewFromEnvDefaultsToMock(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "")
	t.Setenv("BACKBOARD_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	_, ok := NewFromEnv().(*MockClient)
	assert.True(t, ok)
}

func TestNewFromEnvBackboard(t *testing.T) {
	t.Setenv("ASSISTANT_PROVIDER", "backboard")
	t.Setenv("BACKBOARD_API_KEY", "key")
	t.Setenv("BACKBOARD_API_BASE", "https://backboard.internal/")
	c, ok := NewFromEnv().(*BackboardClient)
	require.True(t, ok)
	assert.Equal(t, "https://backboard.internal", c.BaseURL)
}
