package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// Tool is a capability the model can invoke by name.
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema of the tool arguments.
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

type Registry struct {
	tools map[string]Tool
	order []string
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(ctx context.Context, t Tool) {
	if _, exists := r.tools[t.Name()]; exists {
		log.FromCtx(ctx).Warn().Str("tool", t.Name()).Msg("tool already registered, overwriting")
	} else {
		r.order = append(r.order, t.Name())
	}
	r.tools[t.Name()] = t
	log.FromCtx(ctx).Info().Str("tool", t.Name()).Msg("registered tool")
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Len() int {
	return len(r.tools)
}

// Catalogue renders the registry in the backend's function-calling format,
// in registration order.
func (r *Registry) Catalogue() []core.Tool {
	out := make([]core.Tool, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, core.Tool{
			Type: "function",
			Function: core.Function{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return out
}

// Executor runs tool invocations and keeps every failure in-band: the model
// sees an "Error: ..." result text and may adapt, the loop never aborts.
type Executor struct {
	registry *Registry
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

func (e *Executor) Execute(ctx context.Context, name string, args json.RawMessage) string {
	logger := log.FromCtx(ctx)

	tool, ok := e.registry.Get(name)
	if !ok {
		logger.Error().Str("tool", name).Msg("unknown tool requested")
		return fmt.Sprintf("Error: Unknown tool: %s", name)
	}

	logger.Info().Str("tool", name).RawJSON("args", normalizeArgs(args)).Msg("executing tool")

	result, err := tool.Execute(ctx, args)
	if err != nil {
		logger.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return fmt.Sprintf("Error: Tool '%s' failed: %v", name, err)
	}

	return truncate(result)
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	if len(args) == 0 {
		return json.RawMessage(`{}`)
	}
	return args
}

func truncate(input string) string {
	const maxLen = 2000
	if len(input) <= maxLen {
		return input
	}

	head := input[:500]
	tail := input[len(input)-(maxLen-500):]
	return fmt.Sprintf("%s\n\n... [TRUNCATED %d bytes] ...\n\n%s", head, len(input)-maxLen, tail)
}
