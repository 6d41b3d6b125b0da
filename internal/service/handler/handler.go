package handler

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// Composer assembles the context window for one turn.
type Composer interface {
	Assemble(ctx context.Context, userMessage string) (string, []core.Message, error)
}

// Generator produces replies and mines facts.
type Generator interface {
	GenerateResponse(ctx context.Context, systemPrompt string, history []core.Message, userMessage string) (string, error)
	ExtractFacts(ctx context.Context, userMessage string, existingFacts []string) []string
}

// Remembering is the slice of the memory store the handler writes through.
type Remembering interface {
	AddMessage(ctx context.Context, role, content string) (string, error)
	AddFact(ctx context.Context, text, sourceMessageID string) (string, error)
	AllFacts(ctx context.Context) ([]string, error)
}

// Handler runs one conversational turn: assemble context, generate the
// reply, persist both sides, then mine the user message for facts off the
// reply path. Transport concerns (auth, typing, delivery) stay with the
// caller.
type Handler struct {
	composer Composer
	gen      Generator
	memory   Remembering

	// background carries fact extraction past the request lifetime.
	background context.Context
}

func New(background context.Context, composer Composer, gen Generator, memory Remembering) *Handler {
	return &Handler{
		composer:   composer,
		gen:        gen,
		memory:     memory,
		background: background,
	}
}

// HandleMessage returns the reply for userMessage. Both turns are persisted
// before the reply is handed back for delivery.
func (h *Handler) HandleMessage(ctx context.Context, userMessage string) (string, error) {
	logger := log.FromCtx(ctx)
	logger.Info().Str("preview", preview(userMessage)).Msg("handling message")

	systemPrompt, history, err := h.composer.Assemble(ctx, userMessage)
	if err != nil {
		return "", fmt.Errorf("assemble context: %w", err)
	}

	reply, err := h.gen.GenerateResponse(ctx, systemPrompt, history, userMessage)
	if err != nil {
		return "", fmt.Errorf("generate response: %w", err)
	}

	userMsgID, err := h.memory.AddMessage(ctx, core.RoleUser, userMessage)
	if err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}
	if _, err := h.memory.AddMessage(ctx, core.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("store assistant message: %w", err)
	}

	go h.extractAndStoreFacts(h.background, userMessage, userMsgID)

	logger.Info().Str("preview", preview(reply)).Msg("generated reply")
	return reply, nil
}

// extractAndStoreFacts is best effort; failures are logged and dropped.
func (h *Handler) extractAndStoreFacts(ctx context.Context, userMessage, sourceMessageID string) {
	logger := log.FromCtx(ctx)

	existing, err := h.memory.AllFacts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load existing facts")
		return
	}

	for _, fact := range h.gen.ExtractFacts(ctx, userMessage, existing) {
		if _, err := h.memory.AddFact(ctx, fact, sourceMessageID); err != nil {
			logger.Error().Err(err).Str("fact", fact).Msg("failed to store fact")
			continue
		}
		logger.Info().Str("fact", fact).Msg("stored new fact")
	}
}

func preview(s string) string {
	const n = 50
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
