package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/example/claim-verifier/internal/jsonx"
	"github.com/example/claim-verifier/internal/providers/assistant"
	"github.com/example/claim-verifier/internal/providers/search"
)

const webSearchPrompt = `You are a Web Search Planner + Evidence Selector.

You will be given:
- claim_text
- (optional) prior_queries
- search_results: a list of items (title, url, snippet)

Tasks:
1) If search_results is empty, propose 2-3 improved search queries for the claim.
2) If search_results is provided, select the best results (up to 5) that are most relevant for verifying the claim.
3) For each selected result, write a 1-2 sentence evidence_summary strictly based on the snippet/title (do NOT invent facts).

Rules:
- Output JSON only. No markdown.
- Never claim the claim is true/false here. Only: queries + selected evidence candidates.
- If unsure, say so in notes.

Return JSON exactly:
{
  "queries": ["..."],
  "selected": [
    {
      "url": "...",
      "title": "...",
      "snippet": "...",
      "relevance": 0.0,
      "evidence_summary": "..."
    }
  ],
  "notes": ["..."]
}`

// WebSearchTool asks the assistant to plan search queries for a claim, runs
// them against the search transport, and asks the assistant to select the best
// evidence candidates from the retrieved snippets.
type WebSearchTool struct {
	Coordinator *assistant.Coordinator
	Transport   search.Transport
	Model       string
}

func (t *WebSearchTool) Name() string { return "web_search_llm" }

func (t *WebSearchTool) Definition() assistant.ToolDefinition {
	return assistant.ToolDefinition{
		Type: "function",
		Function: assistant.FunctionSchema{
			Name:        "web_search_llm",
			Description: "LLM-assisted web search: generates queries to search on web, retrieves results, selects best evidence candidates from snippets.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"claim_text":    map[string]any{"type": "string"},
					"claim_id":      map[string]any{"type": "integer", "minimum": 0},
					"top_k":         map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
					"prior_queries": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"claim_text"},
			},
		},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	claimText, _ := args["claim_text"].(string)
	claimText = strings.TrimSpace(claimText)
	if claimText == "" {
		// No remote calls for an empty claim.
		return map[string]any{"queries": []any{}, "selected": []any{}, "notes": []any{"missing claim text"}}, nil
	}
	topK := intArg(args, "top_k", 5)
	priorQueries := stringSliceArg(args, "prior_queries")

	assistantID, err := t.Coordinator.GetOrCreate(ctx, assistant.RoleSearch, assistant.Definition{
		Name:        "WebSearchTool",
		Description: webSearchPrompt,
	})
	if err != nil {
		return nil, err
	}
	client := t.Coordinator.Client()
	threadID, err := client.CreateThread(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	queries, err := t.planQueries(ctx, threadID, claimText, priorQueries)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		queries = []string{fallbackQuery(claimText)}
	}
	if len(queries) > 2 {
		queries = queries[:2]
	}

	results := t.runQueries(ctx, queries, topK)

	selection, err := t.selectEvidence(ctx, threadID, claimText, priorQueries, results)
	if err != nil {
		return nil, err
	}
	selection["queries"] = queries
	notes, _ := selection["notes"].([]any)
	selection["notes"] = append(notes, fmt.Sprintf("retrieved_results=%d", len(results)))
	return selection, nil
}

func (t *WebSearchTool) planQueries(ctx context.Context, threadID, claimText string, priorQueries []string) ([]string, error) {
	msg, _ := json.Marshal(map[string]any{
		"claim_text":     claimText,
		"prior_queries":  priorQueries,
		"search_results": []any{},
	})
	resp, err := t.Coordinator.Client().AddMessage(ctx, threadID, string(msg), t.Model)
	if err != nil {
		return nil, err
	}
	plan, err := jsonx.DecodeObject(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("search plan: %w", err)
	}
	return stringSliceArg(plan, "queries"), nil
}

// runQueries merges results across queries by URL, last write wins.
func (t *WebSearchTool) runQueries(ctx context.Context, queries []string, topK int) []search.Result {
	merged := map[string]search.Result{}
	var order []string
	for _, q := range queries {
		items, err := t.Transport.Search(ctx, q, topK)
		if err != nil {
			if errors.Is(err, search.ErrRateLimited) {
				// Degrade to whatever we have; the loop must go on.
				log.Printf("web_search_llm: rate limited on %q", q)
				continue
			}
			log.Printf("web_search_llm: transport error on %q: %v", q, err)
			continue
		}
		for _, item := range items {
			if _, seen := merged[item.URL]; !seen {
				order = append(order, item.URL)
			}
			merged[item.URL] = item
		}
	}
	results := make([]search.Result, 0, len(order))
	for _, u := range order {
		results = append(results, merged[u])
	}
	return results
}

func (t *WebSearchTool) selectEvidence(ctx context.Context, threadID, claimText string, priorQueries []string, results []search.Result) (map[string]any, error) {
	msg, _ := json.Marshal(map[string]any{
		"claim_text":     claimText,
		"prior_queries":  priorQueries,
		"search_results": results,
	})
	resp, err := t.Coordinator.Client().AddMessage(ctx, threadID, string(msg), t.Model)
	if err != nil {
		return nil, err
	}
	selection, err := jsonx.DecodeObject(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("search selection: %w", err)
	}
	return selection, nil
}

func fallbackQuery(claimText string) string {
	if len(claimText) > 120 {
		return claimText[:120]
	}
	return claimText
}
