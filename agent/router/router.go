package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/wearly/concierge/agent/contract"
	heuristicx "github.com/wearly/concierge/agent/heuristic"
	promptx "github.com/wearly/concierge/agent/prompt"
)

const defaultConfidence = 0.5

// Router turns one free-text message into an intent and an ordered task
// list. Model failures and unparseable output degrade to a fallback
// decision; Route never fails the turn.
type Router struct {
	llm          contractx.LLMClient
	systemPrompt string
}

func New(llm contractx.LLMClient) *Router {
	return &Router{
		llm:          llm,
		systemPrompt: promptx.LoadPromptSet().Router,
	}
}

// Route classifies the message. Heuristic-extracted parameters are merged
// into every RECOMMEND_PRODUCTS task, router values winning key-by-key.
func (r *Router) Route(ctx context.Context, message, customerID, channel string) contractx.RouterDecision {
	inferred := heuristicx.Infer(message)

	raw, err := r.llm.Complete(ctx, []contractx.ChatMessage{
		{Role: contractx.RoleSystem, Content: r.systemPrompt},
		{Role: contractx.RoleUser, Content: buildUserPrompt(message, customerID, channel)},
	})
	if err != nil {
		log.Warn().Err(err).Msg("router model call failed, using fallback decision")
		return FallbackDecision(message, inferred)
	}

	decision, err := parseDecision(raw)
	if err != nil {
		log.Warn().Err(err).Msg("router output unparseable, using fallback decision")
		return FallbackDecision(message, inferred)
	}

	mergeHeuristics(&decision, inferred)
	return decision
}

func buildUserPrompt(message, customerID, channel string) string {
	return fmt.Sprintf("Customer: %s\nChannel: %s\nUser message: %s", customerID, channel, message)
}

// FallbackDecision is the documented recovery for router failures: a
// single RECOMMEND_PRODUCTS task carrying the heuristic params and the
// raw message, intent "unknown", confidence 0. An empty task list would
// turn every model hiccup into a dead turn.
func FallbackDecision(message string, inferred heuristicx.Params) contractx.RouterDecision {
	params := map[string]any{"query": message}
	for k, v := range inferred {
		params[k] = v
	}
	return contractx.RouterDecision{
		Intent: "unknown",
		Tasks: []contractx.Task{
			{Type: contractx.TaskRecommendProducts, Params: params},
		},
	}
}

type wireDecision struct {
	Intent     string           `json:"intent"`
	Tasks      []contractx.Task `json:"tasks"`
	Confidence *float64         `json:"confidence"`
}

func parseDecision(raw string) (contractx.RouterDecision, error) {
	text := stripCodeFences(raw)

	var wire wireDecision
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		span, ok := braceSpan(text)
		if !ok {
			return contractx.RouterDecision{}, fmt.Errorf("%w: no JSON object in router output", contractx.ErrSchemaViolation)
		}
		if err := json.Unmarshal([]byte(span), &wire); err != nil {
			return contractx.RouterDecision{}, fmt.Errorf("%w: %v", contractx.ErrSchemaViolation, err)
		}
	}

	intent := strings.TrimSpace(wire.Intent)
	if intent == "" {
		intent = "unknown"
	}

	confidence := defaultConfidence
	if wire.Confidence != nil {
		confidence = clamp01(*wire.Confidence)
	}

	tasks := make([]contractx.Task, 0, len(wire.Tasks))
	for _, t := range wire.Tasks {
		if strings.TrimSpace(string(t.Type)) == "" {
			continue
		}
		tasks = append(tasks, t)
	}

	return contractx.RouterDecision{
		Intent:     intent,
		Tasks:      tasks,
		Confidence: confidence,
	}, nil
}

func mergeHeuristics(decision *contractx.RouterDecision, inferred heuristicx.Params) {
	if len(inferred) == 0 {
		return
	}
	for i, t := range decision.Tasks {
		if t.Type != contractx.TaskRecommendProducts {
			continue
		}
		merged := make(map[string]any, len(inferred)+len(t.Params))
		for k, v := range inferred {
			merged[k] = v
		}
		for k, v := range t.Params {
			merged[k] = v
		}
		decision.Tasks[i].Params = merged
	}
}

func stripCodeFences(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		// drop a language tag like ```json
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// braceSpan returns the outermost {...} span: first '{' to last '}'.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
