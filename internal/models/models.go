package models

import (
	"errors"
	"fmt"
)

// Verdict is the overall conclusion for a verification run.
type Verdict string

const (
	VerdictLikelyTrue   Verdict = "likely_true"
	VerdictLikelyFalse  Verdict = "likely_false"
	VerdictMixed        Verdict = "mixed"
	VerdictUnverifiable Verdict = "unverifiable"
)

func (v Verdict) Valid() bool {
	switch v {
	case VerdictLikelyTrue, VerdictLikelyFalse, VerdictMixed, VerdictUnverifiable:
		return true
	}
	return false
}

// Credibility tiers assigned to sources, independent of claim content.
const (
	CredibilityHigh   = "high"
	CredibilityMedium = "medium"
	CredibilityLow    = "low"
)

func ValidCredibility(tier string) bool {
	return tier == CredibilityHigh || tier == CredibilityMedium || tier == CredibilityLow
}

// AgentContext carries optional free-form context alongside the claims.
type AgentContext struct {
	Caption  string         `json:"caption,omitempty"`
	OCRText  string         `json:"ocr_text,omitempty"`
	URLs     []string       `json:"urls,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ClaimInput is the immutable per-request input: an ordered list of claim
// strings plus optional context and a trace id from the API layer.
type ClaimInput struct {
	Claims    []string      `json:"claims"`
	Context   *AgentContext `json:"context,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

func (in *ClaimInput) Validate() error {
	if in == nil || len(in.Claims) == 0 {
		return errors.New("claims must be a non-empty list")
	}
	for i, c := range in.Claims {
		if c == "" {
			return fmt.Errorf("claim %d is empty", i)
		}
	}
	return nil
}

// Claim pairs a claim text with its positional id. Ids are zero-based input
// positions and are never reused or renumbered mid-run.
type Claim struct {
	ClaimID int    `json:"claim_id"`
	Text    string `json:"text"`
}

func ClaimsFrom(texts []string) []Claim {
	out := make([]Claim, 0, len(texts))
	for i, t := range texts {
		out = append(out, Claim{ClaimID: i, Text: t})
	}
	return out
}

// EvidenceItem is a single piece of retrieved material attributed to a claim.
// SourceCredibility starts nil and may be filled in by the credibility merge.
// Supporting defaults to true at retrieval time; polarity is unknown until the
// synthesis stage reinterprets it.
type EvidenceItem struct {
	ClaimID           int     `json:"claim_id"`
	SourceURL         *string `json:"source_url"`
	SourceCredibility *string `json:"source_credibility"`
	Title             *string `json:"title"`
	RetrievedAt       *string `json:"retrieved_at"`
	Summary           string  `json:"summary"`
	Supporting        bool    `json:"supporting"`
}

// CredibilityItem is the credibility tool's rating for one source. It never
// becomes evidence itself; it is only joined onto evidence by URL.
type CredibilityItem struct {
	URL       string   `json:"url"`
	Domain    string   `json:"domain"`
	Tier      string   `json:"tier"`
	Rationale string   `json:"rationale"`
	Signals   []string `json:"signals"`
}

// EvidenceBundle is the immutable snapshot handed into the synthesis stage.
type EvidenceBundle struct {
	Claims           []Claim           `json:"claims"`
	Evidence         []EvidenceItem    `json:"evidence"`
	CredibilityItems []CredibilityItem `json:"credibility_items"`
}

// AgentOutput is the final structured verification report.
type AgentOutput struct {
	AIGeneratedRiskScore    float64        `json:"ai_generated_risk_score"`
	MisinformationRiskScore float64        `json:"misinformation_risk_score"`
	Verdict                 Verdict        `json:"verdict"`
	Confidence              float64        `json:"confidence"`
	ReasoningChain          []string       `json:"reasoning_chain"`
	Evidence                []EvidenceItem `json:"evidence"`
	Uncertainties           []string       `json:"uncertainties"`
	ToolRounds              int            `json:"tool_rounds"`
}
