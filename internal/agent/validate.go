package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/example/claim-verifier/internal/jsonx"
	"github.com/example/claim-verifier/internal/models"
)

var errNoContent = errors.New("assistant returned no content in synthesis response")

// ParseAgentOutput parses the synthesis reply, force-sets tool_rounds from the
// loop's authoritative counter, and validates the result against the output
// schema. Validation failures carry both the diagnostics and the raw payload.
func ParseAgentOutput(raw string, toolRounds int) (*models.AgentOutput, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errNoContent
	}
	data, err := jsonx.DecodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("synthesis output is not a JSON object\noutput:\n%.2000s", raw)
	}

	// The loop counted the rounds; whatever the model wrote is overwritten.
	data["tool_rounds"] = toolRounds

	b, _ := json.Marshal(data)
	var out models.AgentOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("agent output failed schema validation: %v\noutput:\n%s", err, b)
	}
	if violations := ValidateAgentOutput(&out); len(violations) > 0 {
		return nil, fmt.Errorf("agent output failed schema validation: %s\noutput:\n%s",
			strings.Join(violations, "; "), b)
	}
	return &out, nil
}

// ValidateAgentOutput collects every schema violation instead of stopping at
// the first, so failures are diagnosable in one pass.
func ValidateAgentOutput(out *models.AgentOutput) []string {
	var violations []string
	checkScore := func(name string, v float64) {
		if v < 0 || v > 1 {
			violations = append(violations, fmt.Sprintf("%s %v outside [0,1]", name, v))
		}
	}
	checkScore("ai_generated_risk_score", out.AIGeneratedRiskScore)
	checkScore("misinformation_risk_score", out.MisinformationRiskScore)
	checkScore("confidence", out.Confidence)
	if !out.Verdict.Valid() {
		violations = append(violations, fmt.Sprintf("verdict %q is not one of likely_true, likely_false, mixed, unverifiable", out.Verdict))
	}
	if out.ToolRounds < 0 {
		violations = append(violations, fmt.Sprintf("tool_rounds %d is negative", out.ToolRounds))
	}
	for i, ev := range out.Evidence {
		if ev.ClaimID < 0 {
			violations = append(violations, fmt.Sprintf("evidence[%d].claim_id %d is negative", i, ev.ClaimID))
		}
		if ev.SourceCredibility != nil && !models.ValidCredibility(*ev.SourceCredibility) {
			violations = append(violations, fmt.Sprintf("evidence[%d].source_credibility %q is not high/medium/low", i, *ev.SourceCredibility))
		}
	}
	return violations
}
