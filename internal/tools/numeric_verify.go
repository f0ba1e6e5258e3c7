package tools

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NumericVerifyTool is a pure heuristic checker for the numeric content of a
// claim: extracts currency/percentage/plain numbers, flags suspicious
// patterns, and scores how suspicious the numerical component looks.
type NumericVerifyTool struct{}

var (
	numRe = regexp.MustCompile(
		`\$\s*(?:\d{1,3}(?:,\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)` +
			`|\d+(?:\.\d+)?\s*%` +
			`|\d{1,3}(?:,\d{3})*(?:\.\d+)?` +
			`|\d+(?:\.\d+)?`)
	rangeRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:-|to)\s*(\d+(?:\.\d+)?)`)
)

var (
	absoluteMarkers = []string{"100%", "guaranteed", "no risk", "always", "never"}
	urgencyMarkers  = []string{"today", "now", "urgent", "limited time", "within"}
)

func (t *NumericVerifyTool) Name() string { return "numeric_verify" }

func (t *NumericVerifyTool) Execute(ctx context.Context, args map[string]any) (map[string]any, error) {
	claim, _ := args["claim_text"].(string)
	if strings.TrimSpace(claim) == "" {
		return nil, fmt.Errorf("missing claim_text")
	}

	extracted := extractNumericStrings(claim)
	flags := []string{}
	computed := map[string]any{}
	lowered := strings.ToLower(claim)

	// Absolute-certainty language correlates with overclaiming.
	for _, k := range absoluteMarkers {
		if strings.Contains(lowered, k) {
			flags = append(flags, "contains_absolute_or_guarantee_language")
			break
		}
	}

	// Percent sanity checks.
	for _, s := range extracted {
		if !strings.Contains(s, "%") {
			continue
		}
		p, err := toFloat(s)
		if err != nil {
			continue
		}
		if p < 0 || p > 100 {
			flags = append(flags, "percent_out_of_range")
		}
	}

	// Ranges like "90-95%" / "10 to 12".
	var ranges [][2]float64
	for _, m := range rangeRe.FindAllStringSubmatch(claim, -1) {
		a, errA := strconv.ParseFloat(m[1], 64)
		b, errB := strconv.ParseFloat(m[2], 64)
		if errA != nil || errB != nil {
			continue
		}
		lo, hi := a, b
		if lo > hi {
			lo, hi = hi, lo
		}
		ranges = append(ranges, [2]float64{lo, hi})
	}
	if len(ranges) > 0 {
		computed["ranges"] = ranges
	}

	// Currency amounts paired with urgency language often signal scams.
	if strings.Contains(claim, "$") {
		for _, k := range urgencyMarkers {
			if strings.Contains(lowered, k) {
				flags = append(flags, "currency_with_urgency_pattern")
				break
			}
		}
	}

	// 0.0 clean, 1.0 very suspicious.
	score := 0.0
	if len(flags) > 0 {
		score = 0.15 * float64(len(flags))
		for _, f := range flags {
			if strings.Contains(f, "out_of_range") {
				score += 0.2
				break
			}
		}
		if score > 1.0 {
			score = 1.0
		}
	}

	return map[string]any{
		"claim_text": claim,
		"finding": map[string]any{
			"extracted_numbers": extracted,
			"flags":             flags,
			"computed_checks":   computed,
			"score":             score,
		},
	}, nil
}

func extractNumericStrings(text string) []string {
	found := []string{}
	for _, m := range numRe.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			found = append(found, s)
		}
	}
	return found
}

func toFloat(s string) (float64, error) {
	r := strings.NewReplacer(",", "", "$", "", "%", "", " ", "")
	return strconv.ParseFloat(strings.TrimSpace(r.Replace(s)), 64)
}
