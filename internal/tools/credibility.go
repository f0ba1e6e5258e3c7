package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/example/claim-verifier/internal/jsonx"
	"github.com/example/claim-verifier/internal/providers/assistant"
)

const credibilityPrompt = `You are a Source Credibility Rater.

Task:
Given a list of sources (url, domain, title, snippet), assign:
- tier: high | medium | low
- rationale: one short sentence
- signals: 2-6 short keywords describing why (e.g., "gov_domain", "named_author", "ugc_platform", "no_editorial_policy")

Rules:
- Do NOT claim the content is true/false. Only rate source credibility.
- Prefer "medium" when uncertain.
- Social/UGC platforms are usually "low" unless the linked page is an official org account.
- Government (.gov), established academic (.edu) are usually "high".
- Output MUST be valid JSON only.

Return JSON exactly:
{
  "items": [
    {
      "url": "...",
      "domain": "...",
      "tier": "high|medium|low",
      "rationale": "...",
      "signals": ["...", "..."]
    }
  ]
}`

// CredibilityTool asks the assistant to tier a batch of sources. Its output is
// routed into the credibility cache by the loop; it never produces evidence.
type CredibilityTool struct {
	Coordinator *assistant.Coordinator
	Model       string
}

func (t *CredibilityTool) Name() string { return "credibility_llm" }

func (t *CredibilityTool) Definition() assistant.ToolDefinition {
	return assistant.ToolDefinition{
		Type: "function",
		Function: assistant.FunctionSchema{
			Name:        "credibility_llm",
			Description: "LLM-based credibility tiering for sources using url/title/snippet.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sources": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"url":     map[string]any{"type": "string"},
								"title":   map[string]any{"type": "string"},
								"snippet": map[string]any{"type": "string"},
							},
							"required": []string{"url"},
						},
					},
				},
				"required": []string{"sources"},
			},
		},
	}
}

func (t *CredibilityTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	sources, _ := args["sources"].([]any)
	normalized := make([]map[string]any, 0, len(sources))
	for _, s := range sources {
		src, ok := s.(map[string]any)
		if !ok {
			continue
		}
		u, _ := src["url"].(string)
		if u == "" {
			continue
		}
		normalized = append(normalized, map[string]any{
			"url":     u,
			"domain":  Domain(u),
			"title":   src["title"],
			"snippet": src["snippet"],
		})
	}

	assistantID, err := t.Coordinator.GetOrCreate(ctx, assistant.RoleCredibility, assistant.Definition{
		Name:        "CredibilityTool",
		Description: credibilityPrompt,
	})
	if err != nil {
		return nil, err
	}
	client := t.Coordinator.Client()
	threadID, err := client.CreateThread(ctx, assistantID)
	if err != nil {
		return nil, err
	}
	msg, _ := json.Marshal(map[string]any{"sources": normalized})
	resp, err := client.AddMessage(ctx, threadID, string(msg), t.Model)
	if err != nil {
		return nil, err
	}
	data, err := jsonx.DecodeObject(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("credibility rating: %w", err)
	}
	return data, nil
}

// Domain derives a lowercase, www-stripped domain from a URL.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Host)
	return strings.TrimPrefix(host, "www.")
}
