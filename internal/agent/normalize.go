package agent

import (
	"github.com/example/claim-verifier/internal/models"
)

// NormalizeEvidence converts one tool's raw output into canonical evidence
// records attributed to claimIDHint. The credibility tool never produces
// evidence here; its output is routed to the credibility cache instead.
// Unknown tool names yield nothing rather than fabricated fields.
func NormalizeEvidence(toolName string, output map[string]any, claimIDHint int) []models.EvidenceItem {
	if toolName != "web_search_llm" {
		return nil
	}
	selected, _ := output["selected"].([]any)
	evidence := make([]models.EvidenceItem, 0, len(selected))
	for _, s := range selected {
		item, ok := s.(map[string]any)
		if !ok {
			continue
		}
		summary, _ := item["evidence_summary"].(string)
		if summary == "" {
			summary, _ = item["snippet"].(string)
		}
		evidence = append(evidence, models.EvidenceItem{
			ClaimID:           claimIDHint,
			SourceURL:         optString(item["url"]),
			SourceCredibility: nil, // filled later by MergeCredibility
			Title:             optString(item["title"]),
			Summary:           summary,
			Supporting:        true, // unknown polarity at search stage; synthesis can reinterpret
		})
	}
	return evidence
}

// MergeCredibility joins credibility tiers onto evidence by exact URL match.
// Pure and idempotent: it returns a new slice, touches only
// SourceCredibility, and leaves non-matching items unchanged.
func MergeCredibility(evidence []models.EvidenceItem, items []models.CredibilityItem) []models.EvidenceItem {
	tierByURL := make(map[string]string, len(items))
	for _, it := range items {
		if it.URL != "" && it.Tier != "" {
			tierByURL[it.URL] = it.Tier
		}
	}
	out := make([]models.EvidenceItem, len(evidence))
	copy(out, evidence)
	for i := range out {
		if out[i].SourceURL == nil {
			continue
		}
		if tier, ok := tierByURL[*out[i].SourceURL]; ok {
			t := tier
			out[i].SourceCredibility = &t
		}
	}
	return out
}

func optString(v any) *string {
	if s, ok := v.(string); ok && s != "" {
		return &s
	}
	return nil
}
