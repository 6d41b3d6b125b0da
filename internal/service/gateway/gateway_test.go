package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/internal/providers/tools"
)

type scriptedAI struct {
	responses []core.ChatMessage
	err       error

	calls     int
	samplings []core.Sampling
	lastMsgs  []core.ChatMessage
}

func (s *scriptedAI) Chat(_ context.Context, messages []core.ChatMessage, _ []core.Tool, opts core.Sampling) (core.ChatMessage, error) {
	s.calls++
	s.samplings = append(s.samplings, opts)
	s.lastMsgs = messages
	if s.err != nil {
		return core.ChatMessage{}, s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

type echoTool struct {
	name   string
	result string
	err    error
	calls  int
}

func (t *echoTool) Name() string                { return t.name }
func (t *echoTool) Description() string         { return "test tool" }
func (t *echoTool) Parameters() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (t *echoTool) Execute(context.Context, json.RawMessage) (string, error) {
	t.calls++
	return t.result, t.err
}

func toolCall(name string) core.ChatMessage {
	return core.ChatMessage{
		Role: core.RoleAssistant,
		ToolCalls: []core.ToolCall{
			{Function: core.FunctionCall{Name: name, Arguments: json.RawMessage(`{}`)}},
		},
	}
}

func newToolGateway(ai core.AIProvider, ts ...tools.Tool) (*Gateway, *tools.Registry) {
	registry := tools.NewRegistry()
	for _, t := range ts {
		registry.Register(context.Background(), t)
	}
	return New(ai, registry, tools.NewExecutor(registry)), registry
}

func TestGenerateResponseWithoutTools(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{{Role: core.RoleAssistant, Content: "hello there"}}}
	g := New(ai, nil, nil)

	got, err := g.GenerateResponse(context.Background(), "be yourself", []core.Message{
		{Role: core.RoleUser, Content: "earlier"},
	}, "hi")

	require.NoError(t, err)
	assert.Equal(t, "hello there", got)
	assert.Equal(t, 1, ai.calls)
	assert.Equal(t, core.SamplingCreative(), ai.samplings[0])

	require.Len(t, ai.lastMsgs, 3)
	assert.Equal(t, core.RoleSystem, ai.lastMsgs[0].Role)
	assert.Equal(t, "hi", ai.lastMsgs[2].Content)
}

func TestGenerateResponseToolLoop(t *testing.T) {
	weather := &echoTool{name: "get_weather", result: "sunny, 21C"}
	ai := &scriptedAI{responses: []core.ChatMessage{
		toolCall("get_weather"),
		{Role: core.RoleAssistant, Content: "It's sunny out."},
	}}
	g, _ := newToolGateway(ai, weather)

	got, err := g.GenerateResponse(context.Background(), "sys", nil, "weather?")

	require.NoError(t, err)
	assert.Equal(t, "It's sunny out.", got)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 2, ai.calls)

	// First round is deterministic, follow-up conversational
	assert.Equal(t, core.SamplingPrecise(), ai.samplings[0])
	assert.Equal(t, core.SamplingCreative(), ai.samplings[1])

	// Transcript grew by the assistant turn and the tool result
	require.Len(t, ai.lastMsgs, 4)
	assert.Equal(t, core.RoleTool, ai.lastMsgs[3].Role)
	assert.Equal(t, "sunny, 21C", ai.lastMsgs[3].Content)
}

func TestGenerateResponseUnknownToolStaysInBand(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{
		toolCall("does_not_exist"),
		{Role: core.RoleAssistant, Content: "sorry, no such trick"},
	}}
	g, _ := newToolGateway(ai, &echoTool{name: "real_tool", result: "ok"})

	got, err := g.GenerateResponse(context.Background(), "sys", nil, "try it")

	require.NoError(t, err)
	assert.Equal(t, "sorry, no such trick", got)
	assert.Equal(t, "Error: Unknown tool: does_not_exist", ai.lastMsgs[3].Content)
}

func TestGenerateResponseToolFailureStaysInBand(t *testing.T) {
	broken := &echoTool{name: "broken", err: errors.New("boom")}
	ai := &scriptedAI{responses: []core.ChatMessage{
		toolCall("broken"),
		{Role: core.RoleAssistant, Content: "that didn't work"},
	}}
	g, _ := newToolGateway(ai, broken)

	got, err := g.GenerateResponse(context.Background(), "sys", nil, "go")

	require.NoError(t, err)
	assert.Equal(t, "that didn't work", got)
	assert.Contains(t, ai.lastMsgs[3].Content, "Error: Tool 'broken' failed")
}

func TestGenerateResponseIterationLimit(t *testing.T) {
	loopy := &echoTool{name: "loop", result: "again"}
	// Every round requests another call, never a final answer
	ai := &scriptedAI{responses: []core.ChatMessage{toolCall("loop")}}
	g, _ := newToolGateway(ai, loopy)

	got, err := g.GenerateResponse(context.Background(), "sys", nil, "spin")

	require.NoError(t, err)
	assert.Equal(t, fallbackResponse, got)
	assert.Equal(t, maxToolIterations, ai.calls)
	assert.Equal(t, maxToolIterations, loopy.calls)
}

func TestGenerateResponseIterationLimitKeepsLastContent(t *testing.T) {
	call := toolCall("loop")
	call.Content = "still working on it"
	ai := &scriptedAI{responses: []core.ChatMessage{call}}
	g, _ := newToolGateway(ai, &echoTool{name: "loop", result: "again"})

	got, err := g.GenerateResponse(context.Background(), "sys", nil, "spin")

	require.NoError(t, err)
	assert.Equal(t, "still working on it", got)
}

func TestGenerateResponseBackendError(t *testing.T) {
	ai := &scriptedAI{err: errors.New("connection refused")}
	g := New(ai, nil, nil)

	_, err := g.GenerateResponse(context.Background(), "sys", nil, "hi")

	var genErr *core.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateProactiveMessage(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{{Role: core.RoleAssistant, Content: "  hey, how did the interview go?  "}}}
	g := New(ai, nil, nil)

	long := strings.Repeat("x", 250)
	history := []core.Message{
		{Role: core.RoleUser, Content: "one"},
		{Role: core.RoleAssistant, Content: "two"},
		{Role: core.RoleUser, Content: "three"},
		{Role: core.RoleAssistant, Content: "four"},
		{Role: core.RoleUser, Content: "five"},
		{Role: core.RoleUser, Content: long},
	}

	got, err := g.GenerateProactiveMessage(context.Background(), "sys", "check in warmly", history, []string{"has a cat"})

	require.NoError(t, err)
	assert.Equal(t, "hey, how did the interview go?", got)

	require.Len(t, ai.lastMsgs, 2)
	prompt := ai.lastMsgs[1].Content
	assert.Contains(t, prompt, "check in warmly")
	assert.Contains(t, prompt, "- has a cat")
	// Only the last five messages make it in, long ones truncated
	assert.NotContains(t, prompt, "User: one")
	assert.Contains(t, prompt, "User: two")
	assert.Contains(t, prompt, long[:200]+"...")
	assert.NotContains(t, prompt, long[:201])
}

func TestGenerateProactiveMessageNoFacts(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{{Role: core.RoleAssistant, Content: "hi"}}}
	g := New(ai, nil, nil)

	_, err := g.GenerateProactiveMessage(context.Background(), "sys", "nudge", nil, nil)

	require.NoError(t, err)
	assert.Contains(t, ai.lastMsgs[1].Content, "No specific facts recorded yet.")
}

func TestGenerateProactiveMessageTruncatesOnRuneBoundary(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{{Role: core.RoleAssistant, Content: "hi"}}}
	g := New(ai, nil, nil)

	// A multi-byte rune straddles the cut when counting bytes
	long := strings.Repeat("a", 199) + "é…"
	history := []core.Message{{Role: core.RoleUser, Content: long}}

	_, err := g.GenerateProactiveMessage(context.Background(), "sys", "nudge", history, nil)

	require.NoError(t, err)
	prompt := ai.lastMsgs[1].Content
	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("a", 199)+"é...")
}

func TestExtractFacts(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{
		{Role: core.RoleAssistant, Content: "- lives in Lisbon\n- has two dogs"},
	}}
	g := New(ai, nil, nil)

	facts := g.ExtractFacts(context.Background(), "I moved to Lisbon with my two dogs", []string{"works remotely"})

	assert.Equal(t, []string{"lives in Lisbon", "has two dogs"}, facts)
	assert.Equal(t, core.SamplingPrecise(), ai.samplings[0])
	assert.Contains(t, ai.lastMsgs[0].Content, "- works remotely")
}

func TestExtractFactsNone(t *testing.T) {
	ai := &scriptedAI{responses: []core.ChatMessage{{Role: core.RoleAssistant, Content: "NONE"}}}
	g := New(ai, nil, nil)

	assert.Empty(t, g.ExtractFacts(context.Background(), "ok", nil))
}

func TestExtractFactsFailureIsSilent(t *testing.T) {
	ai := &scriptedAI{err: errors.New("timeout")}
	g := New(ai, nil, nil)

	assert.Empty(t, g.ExtractFacts(context.Background(), "hello", nil))
}

func TestParseFactsTolerantLines(t *testing.T) {
	got := parseFacts("# Facts\n- plays guitar\nenjoys hiking\n\n")
	assert.Equal(t, []string{"plays guitar", "enjoys hiking"}, got)
}
