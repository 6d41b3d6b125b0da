package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// Recaller is the slice of the memory store the assembler needs.
type Recaller interface {
	RelevantHistory(ctx context.Context, query string, limit int) ([]core.Message, error)
	RecentHistory(ctx context.Context, limit int) ([]core.Message, error)
	RelevantFacts(ctx context.Context, query string, limit int) ([]string, error)
}

// Persona provides the base system prompt.
type Persona interface {
	SystemPrompt() string
}

// Assembler builds the per-turn context window: recency-based and
// relevance-based history merged into one deduplicated chronological
// sequence, plus relevant facts folded into the system prompt. Recency and
// relevance are independent strategies because similarity search can miss
// the immediately preceding turn while pure recency misses older topical
// context.
type Assembler struct {
	store   Recaller
	persona Persona

	RecentLimit   int
	RelevantLimit int
	FactsLimit    int
}

func NewAssembler(store Recaller, persona Persona, recentLimit, relevantLimit, factsLimit int) *Assembler {
	return &Assembler{
		store:         store,
		persona:       persona,
		RecentLimit:   recentLimit,
		RelevantLimit: relevantLimit,
		FactsLimit:    factsLimit,
	}
}

// Assemble returns the system prompt and the ordered history for one turn.
// The triggering user message itself is appended later by the gateway.
func (a *Assembler) Assemble(ctx context.Context, userMessage string) (string, []core.Message, error) {
	relevant, err := a.store.RelevantHistory(ctx, userMessage, a.RelevantLimit)
	if err != nil {
		return "", nil, fmt.Errorf("relevant history: %w", err)
	}

	recent, err := a.store.RecentHistory(ctx, a.RecentLimit)
	if err != nil {
		return "", nil, fmt.Errorf("recent history: %w", err)
	}

	history := mergeHistories(recent, relevant)

	systemPrompt := a.persona.SystemPrompt()

	facts, err := a.store.RelevantFacts(ctx, userMessage, a.FactsLimit)
	if err != nil {
		return "", nil, fmt.Errorf("relevant facts: %w", err)
	}
	if len(facts) > 0 {
		var b strings.Builder
		b.WriteString(systemPrompt)
		b.WriteString("\n\n## What you know about the user:\n")
		for i, f := range facts {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString("- ")
			b.WriteString(f)
		}
		systemPrompt = b.String()
	}

	log.FromCtx(ctx).Debug().
		Int("recent", len(recent)).
		Int("relevant", len(relevant)).
		Int("merged", len(history)).
		Int("facts", len(facts)).
		Msg("assembled context")

	return systemPrompt, history, nil
}

// mergeHistories unions the two result sets by (role, timestamp) identity.
// Recent entries are inserted first and win on key collision. The union is
// then sorted ascending by timestamp; equal timestamps keep insertion order.
func mergeHistories(recent, relevant []core.Message) []core.Message {
	seen := make(map[string]struct{}, len(recent)+len(relevant))
	merged := make([]core.Message, 0, len(recent)+len(relevant))

	add := func(msgs []core.Message) {
		for _, m := range msgs {
			key := m.Role + ":" + m.Timestamp.UTC().Format("2006-01-02T15:04:05.999999999")
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, m)
		}
	}
	add(recent)
	add(relevant)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}
