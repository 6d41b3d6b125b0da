package gateway

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// noFactsSentinel is the exact reply the extraction prompt demands when the
// message carries nothing worth remembering.
const noFactsSentinel = "NONE"

const factExtractionTemplate = `Analyze this user message and extract any personal facts about them that would be worth remembering for future conversations.

Facts can include:
- Personal information (name, location, job, hobbies)
- Preferences and opinions
- Important life events or situations
- Relationships (family, friends, pets)
- Goals, plans, or things they're working on

Existing facts (don't repeat these):
%s

User message: "%s"

If there are new facts to extract, list them one per line, starting each with "- ".
If there are no new facts worth remembering, respond with exactly: NONE

Be selective - only extract meaningful, personal facts, not trivial conversation details.`

// ExtractFacts mines userMessage for durable personal facts. Extraction is
// best effort: any backend failure logs and yields an empty slice so the
// reply path never stalls on it.
func (g *Gateway) ExtractFacts(ctx context.Context, userMessage string, existingFacts []string) []string {
	logger := log.FromCtx(ctx)

	existing := "None recorded yet."
	if len(existingFacts) > 0 {
		existing = factsBlock(existingFacts)
	}

	prompt := fmt.Sprintf(factExtractionTemplate, existing, userMessage)
	messages := []core.ChatMessage{
		{Role: core.RoleUser, Content: prompt},
	}

	resp, err := g.ai.Chat(ctx, messages, nil, core.SamplingPrecise())
	if err != nil {
		logger.Error().Err(err).Msg("fact extraction failed")
		return nil
	}

	return parseFacts(resp.Content)
}

// parseFacts tolerates sloppy model output: bulleted lines lose the marker,
// bare lines are taken verbatim, heading lines are skipped.
func parseFacts(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" || content == noFactsSentinel {
		return nil
	}

	var facts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "- "):
			facts = append(facts, line[2:])
		case line != "" && !strings.HasPrefix(line, "#"):
			facts = append(facts, line)
		}
	}
	return facts
}
