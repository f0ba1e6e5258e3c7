package assistant

import (
	"context"
	"log"
	"os"
	"strings"
)

// NewFromEnv returns a Client based on environment variables.
// Supported providers:
// - ASSISTANT_PROVIDER=backboard|gemini|mock
// - For Backboard: BACKBOARD_API_KEY, optional BACKBOARD_API_BASE
// - For Gemini:    GOOGLE_API_KEY, optional LLM_MODEL
// If nothing is configured, returns a MockClient.
func NewFromEnv() Client {
	prov := strings.ToLower(strings.TrimSpace(os.Getenv("ASSISTANT_PROVIDER")))
	switch prov {
	case "backboard":
		if key := strings.TrimSpace(os.Getenv("BACKBOARD_API_KEY")); key != "" {
			return &BackboardClient{APIKey: key, BaseURL: strings.TrimRight(os.Getenv("BACKBOARD_API_BASE"), "/")}
		}
	case "gemini":
		if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
			if c, err := NewGeminiClient(context.Background(), key, os.Getenv("LLM_MODEL")); err == nil {
				return c
			} else {
				log.Printf("assistant: gemini client init failed: %v", err)
			}
		}
	case "mock":
		return &MockClient{}
	}

	// Auto-detect by API key presence if provider not specified
	if key := strings.TrimSpace(os.Getenv("BACKBOARD_API_KEY")); key != "" {
		return &BackboardClient{APIKey: key, BaseURL: strings.TrimRight(os.Getenv("BACKBOARD_API_BASE"), "/")}
	}
	if key := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")); key != "" {
		if c, err := NewGeminiClient(context.Background(), key, os.Getenv("LLM_MODEL")); err == nil {
			return c
		}
	}

	return &MockClient{}
}
