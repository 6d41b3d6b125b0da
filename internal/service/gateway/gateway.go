package gateway

import (
	"context"
	"encoding/json"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// maxToolIterations bounds the tool-calling loop so a model that keeps
// requesting tools cannot spin forever.
const maxToolIterations = 5

const fallbackResponse = "I'm having trouble processing that request."

type ToolSource interface {
	Len() int
	Catalogue() []core.Tool
}

type ToolRunner interface {
	Execute(ctx context.Context, name string, args json.RawMessage) string
}

// Gateway wraps the model backend: prompt assembly, the bounded tool loop,
// proactive generation and fact extraction.
type Gateway struct {
	ai     core.AIProvider
	tools  ToolSource
	runner ToolRunner
}

func New(ai core.AIProvider, tools ToolSource, runner ToolRunner) *Gateway {
	return &Gateway{
		ai:     ai,
		tools:  tools,
		runner: runner,
	}
}

// GenerateResponse produces the reply to userMessage given the assembled
// context. Backend failures surface as GenerationError; the caller owns the
// user-facing degradation.
func (g *Gateway) GenerateResponse(ctx context.Context, systemPrompt string, history []core.Message, userMessage string) (string, error) {
	messages := make([]core.ChatMessage, 0, len(history)+2)
	messages = append(messages, core.ChatMessage{Role: core.RoleSystem, Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, core.ChatMessage{Role: m.Role, Content: m.Content})
	}
	// The triggering message always closes the transcript
	messages = append(messages, core.ChatMessage{Role: core.RoleUser, Content: userMessage})

	if g.tools != nil && g.tools.Len() > 0 {
		return g.generateWithTools(ctx, messages)
	}

	resp, err := g.ai.Chat(ctx, messages, nil, core.SamplingCreative())
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}
	return resp.Content, nil
}

func (g *Gateway) generateWithTools(ctx context.Context, messages []core.ChatMessage) (string, error) {
	logger := log.FromCtx(ctx)
	catalogue := g.tools.Catalogue()

	transcript := make([]core.ChatMessage, len(messages))
	copy(transcript, messages)

	lastContent := ""

	for iteration := 1; iteration <= maxToolIterations; iteration++ {
		// The first round favors deterministic tool selection; follow-ups
		// go back to the conversational preset.
		opts := core.SamplingCreative()
		if iteration == 1 {
			opts = core.SamplingPrecise()
		}

		resp, err := g.ai.Chat(ctx, transcript, catalogue, opts)
		if err != nil {
			return "", &core.GenerationError{Err: err}
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		logger.Info().Int("calls", len(resp.ToolCalls)).Int("iteration", iteration).Msg("model requested tool calls")
		if resp.Content != "" {
			lastContent = resp.Content
		}

		// Assistant turn first (content may be empty), then one tool
		// result per invocation.
		transcript = append(transcript, resp)
		for _, tc := range resp.ToolCalls {
			result := g.runner.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
			transcript = append(transcript, core.ChatMessage{
				Role:    core.RoleTool,
				Content: result,
			})
		}
	}

	logger.Warn().Int("max", maxToolIterations).Msg("tool calling exceeded iteration limit")
	if lastContent != "" {
		return lastContent, nil
	}
	return fallbackResponse, nil
}
