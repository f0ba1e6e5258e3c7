package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/example/claim-verifier/internal/models"
	"github.com/example/claim-verifier/internal/providers/assistant"
	"github.com/example/claim-verifier/internal/tools"
)

// State names the phases of one verification run. PLANNING happens entirely on
// the remote assistant; the loop only observes its outcome.
type State string

const (
	StatePlanning       State = "PLANNING"
	StateAwaitingTools  State = "AWAITING_TOOLS"
	StateExecutingTools State = "EXECUTING_TOOLS"
	StateSynthesizing   State = "SYNTHESIZING"
	StateDone           State = "DONE"
	StateFailed         State = "FAILED"
)

// Budget discipline is prompt-driven (the system prompt caps searches per
// claim and total calls), but termination must not depend on the remote
// model's compliance, so the loop carries hard local ceilings too.
var (
	ErrMaxRounds    = errors.New("agent: tool round ceiling reached")
	ErrMaxToolCalls = errors.New("agent: total tool call ceiling reached")
)

const (
	defaultMaxRounds    = 8
	defaultMaxToolCalls = 24
)

// Agent drives the remote assistant through planning, tool-execution rounds,
// and synthesis, accumulating normalized evidence along the way. One Agent
// serves many concurrent requests; per-request state lives in a run.
type Agent struct {
	Coordinator  *assistant.Coordinator
	Registry     *tools.Registry
	Model        string
	MaxRounds    int
	MaxToolCalls int

	hub *Hub
}

func New(coord *assistant.Coordinator, registry *tools.Registry, model string) *Agent {
	return &Agent{
		Coordinator:  coord,
		Registry:     registry,
		Model:        model,
		MaxRounds:    defaultMaxRounds,
		MaxToolCalls: defaultMaxToolCalls,
		hub:          NewHub(),
	}
}

// Subscribe returns a channel of JSON-encoded progress events for a request.
// The caller must call the returned unsubscribe func when done.
func (a *Agent) Subscribe(requestID string) (<-chan []byte, func()) {
	return a.hub.Subscribe(requestID)
}

// run accumulates per-request state across rounds.
type run struct {
	requestID   string
	state       State
	rounds      int
	toolCalls   int
	evidence    []models.EvidenceItem
	credibility []models.CredibilityItem
}

func (a *Agent) Run(ctx context.Context, in *models.ClaimInput) (*models.AgentOutput, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r := &run{requestID: in.RequestID}
	a.setState(r, StatePlanning)
	out, err := a.execute(ctx, r, in)
	if err != nil {
		a.setState(r, StateFailed)
		a.hub.Publish(r.requestID, Event{Event: "error", RequestID: r.requestID, Payload: map[string]any{"error": err.Error()}})
		return nil, err
	}
	a.setState(r, StateDone)
	a.hub.Publish(r.requestID, Event{Event: "result", RequestID: r.requestID, Payload: map[string]any{
		"verdict":     out.Verdict,
		"confidence":  out.Confidence,
		"tool_rounds": out.ToolRounds,
	}})
	return out, nil
}

func (a *Agent) execute(ctx context.Context, r *run, in *models.ClaimInput) (*models.AgentOutput, error) {
	assistantID, err := a.Coordinator.GetOrCreate(ctx, assistant.RoleVerifier, assistant.Definition{
		Name:        "verification_agent",
		Description: systemPrompt,
		Tools:       a.Registry.Definitions(),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure assistant: %w", err)
	}
	client := a.Coordinator.Client()
	threadID, err := client.CreateThread(ctx, assistantID)
	if err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}

	payload := map[string]any{"claims": in.Claims}
	if in.Context != nil {
		payload["context"] = in.Context
	}
	msg, _ := json.Marshal(payload)
	resp, err := client.AddMessage(ctx, threadID, string(msg), a.Model)
	if err != nil {
		return nil, fmt.Errorf("initial message: %w", err)
	}

	for resp.RequiresAction() {
		a.setState(r, StateAwaitingTools)
		if r.rounds >= a.maxRounds() {
			return nil, ErrMaxRounds
		}
		if r.toolCalls+len(resp.ToolCalls) > a.maxToolCalls() {
			return nil, ErrMaxToolCalls
		}
		r.rounds++
		r.toolCalls += len(resp.ToolCalls)
		a.hub.Publish(r.requestID, Event{Event: "round", RequestID: r.requestID, Payload: map[string]any{
			"round":      r.rounds,
			"tool_calls": len(resp.ToolCalls),
		}})

		a.setState(r, StateExecutingTools)
		outputs := a.executeRound(ctx, r, resp.ToolCalls)
		resp, err = client.SubmitToolOutputs(ctx, threadID, resp.RunID, outputs)
		if err != nil {
			return nil, fmt.Errorf("submit tool outputs: %w", err)
		}
	}

	if len(r.credibility) > 0 && len(r.evidence) > 0 {
		r.evidence = MergeCredibility(r.evidence, r.credibility)
	}
	bundle := AssembleBundle(in.Claims, r.evidence, r.credibility)

	a.setState(r, StateSynthesizing)
	resp2, err := client.AddMessage(ctx, threadID, buildSynthesisMessage(bundle), a.Model)
	if err != nil {
		return nil, fmt.Errorf("synthesis message: %w", err)
	}
	return ParseAgentOutput(resp2.Content, r.rounds)
}

// executeRound dispatches the batch concurrently; calls are independent and
// write to disjoint slots keyed by position, and the WaitGroup is the round's
// synchronization barrier. Outputs are correlated by call id regardless of
// completion order.
func (a *Agent) executeRound(ctx context.Context, r *run, calls []assistant.ToolCall) []assistant.ToolOutput {
	slots := make([]callResult, len(calls))
	var wg sync.WaitGroup
	for i, tc := range calls {
		wg.Add(1)
		go func(i int, tc assistant.ToolCall) {
			defer wg.Done()
			slots[i] = a.executeCall(ctx, tc)
		}(i, tc)
	}
	wg.Wait()

	outputs := make([]assistant.ToolOutput, 0, len(calls))
	for _, s := range slots {
		r.evidence = append(r.evidence, s.evidence...)
		r.credibility = append(r.credibility, s.credibility...)
		outputs = append(outputs, s.output)
	}
	return outputs
}

type callResult struct {
	output      assistant.ToolOutput
	evidence    []models.EvidenceItem
	credibility []models.CredibilityItem
}

// executeCall resolves and runs one tool call. Every failure mode becomes a
// structured error payload for that call id; nothing here aborts the round.
func (a *Agent) executeCall(ctx context.Context, tc assistant.ToolCall) callResult {
	name := tc.Function.Name
	if name == "" {
		return errorResult(tc.ID, tools.ErrKindMalformedCall, "missing function name")
	}
	args, err := tc.Args()
	if err != nil {
		return errorResult(tc.ID, tools.ErrKindMalformedCall, fmt.Sprintf("unparseable arguments: %v", err))
	}
	tool, ok := a.Registry.Get(name)
	if !ok {
		return errorResult(tc.ID, tools.ErrKindUnknownTool, fmt.Sprintf("tool %q not found", name))
	}
	log.Printf("agent: tool call %s id=%s", name, tc.ID)
	out, err := tool.Execute(ctx, args)
	if err != nil {
		log.Printf("agent: tool %s failed: %v", name, err)
		return errorResult(tc.ID, tools.ErrKindExecution, fmt.Sprintf("tool %s execution error", name))
	}

	res := callResult{output: encodeOutput(tc.ID, out)}
	if name == "credibility_llm" {
		res.credibility = decodeCredibilityItems(out)
	} else {
		res.evidence = NormalizeEvidence(name, out, claimIDHint(args))
	}
	return res
}

func errorResult(callID, kind, message string) callResult {
	return callResult{output: encodeOutput(callID, tools.ErrorPayload(kind, message))}
}

func encodeOutput(callID string, out map[string]any) assistant.ToolOutput {
	b, err := json.Marshal(out)
	if err != nil {
		b, _ = json.Marshal(tools.ErrorPayload(tools.ErrKindExecution, "unserializable tool output"))
	}
	return assistant.ToolOutput{ToolCallID: callID, Output: string(b)}
}

// decodeCredibilityItems converts the credibility tool's items one by one so a
// single malformed entry never drops its well-formed siblings.
func decodeCredibilityItems(out map[string]any) []models.CredibilityItem {
	raw, ok := out["items"].([]any)
	if !ok {
		return nil
	}
	var items []models.CredibilityItem
	for _, r := range raw {
		b, err := json.Marshal(r)
		if err != nil {
			continue
		}
		var item models.CredibilityItem
		if err := json.Unmarshal(b, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// claimIDHint reads an optional claim_id from the call arguments for evidence
// attribution, defaulting to 0.
func claimIDHint(args map[string]any) int {
	switch v := args["claim_id"].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

func (a *Agent) setState(r *run, s State) {
	r.state = s
	a.hub.Publish(r.requestID, Event{Event: "state", RequestID: r.requestID, Payload: map[string]any{"state": s}})
}

func (a *Agent) maxRounds() int {
	if a.MaxRounds > 0 {
		return a.MaxRounds
	}
	return defaultMaxRounds
}

func (a *Agent) maxToolCalls() int {
	if a.MaxToolCalls > 0 {
		return a.MaxToolCalls
	}
	return defaultMaxToolCalls
}
