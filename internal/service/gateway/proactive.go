package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/chatty/internal/core"
)

const (
	proactiveHistoryWindow = 5
	proactiveSnippetLimit  = 200
)

// GenerateProactiveMessage composes an unprompted check-in from the persona,
// known facts and the tail of the conversation. Tools stay out of this path.
func (g *Gateway) GenerateProactiveMessage(ctx context.Context, systemPrompt, proactivePrompt string, recentMessages []core.Message, userFacts []string) (string, error) {
	var prompt strings.Builder
	prompt.WriteString(proactivePrompt)
	prompt.WriteString("\n\nWhat you know about the user:\n")
	prompt.WriteString(factsBlock(userFacts))

	if len(recentMessages) > 0 {
		prompt.WriteString("\n\nRecent conversation:\n")
		tail := recentMessages
		if len(tail) > proactiveHistoryWindow {
			tail = tail[len(tail)-proactiveHistoryWindow:]
		}
		for _, m := range tail {
			speaker := "You"
			if m.Role == core.RoleUser {
				speaker = "User"
			}
			fmt.Fprintf(&prompt, "%s: %s\n", speaker, snippet(m.Content))
		}
	}

	prompt.WriteString("\nGenerate a natural, in-character message to send. Just write the message itself, nothing else.")

	messages := []core.ChatMessage{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: prompt.String()},
	}

	resp, err := g.ai.Chat(ctx, messages, nil, core.SamplingCreative())
	if err != nil {
		return "", &core.GenerationError{Err: err}
	}
	return strings.TrimSpace(resp.Content), nil
}

// snippet caps a history line at proactiveSnippetLimit characters, not bytes,
// so multi-byte runes never get split.
func snippet(content string) string {
	r := []rune(content)
	if len(r) <= proactiveSnippetLimit {
		return content
	}
	return string(r[:proactiveSnippetLimit]) + "..."
}

func factsBlock(facts []string) string {
	if len(facts) == 0 {
		return "No specific facts recorded yet."
	}
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = "- " + f
	}
	return strings.Join(lines, "\n")
}
