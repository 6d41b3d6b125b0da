package memory

import (
	"context"
	"sort"
	"time"

	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

// AllFacts is a single page; anything beyond this is silently not returned.
const allFactsPageSize = 100

// Store is the conversational memory: chat history and user facts, each
// embedded once at write time for later similarity recall.
type Store struct {
	messages core.MessagesRepository
	facts    core.FactsRepository
	embedder core.Embedder
}

func NewStore(messages core.MessagesRepository, facts core.FactsRepository, embedder core.Embedder) *Store {
	return &Store{
		messages: messages,
		facts:    facts,
		embedder: embedder,
	}
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := s.embedder.Embed(ctx, truncateForEmbedding(text))
	if err != nil {
		return nil, &core.EmbeddingError{Err: err}
	}
	return vec, nil
}

// AddMessage embeds and stores one turn. On error nothing is persisted.
func (s *Store) AddMessage(ctx context.Context, role, content string) (string, error) {
	vec, err := s.embed(ctx, content)
	if err != nil {
		return "", err
	}

	id, err := s.messages.Insert(ctx, core.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}, vec)
	if err != nil {
		return "", &core.StoreError{Op: "add message", Err: err}
	}
	return id, nil
}

func (s *Store) AddFact(ctx context.Context, text, sourceMessageID string) (string, error) {
	vec, err := s.embed(ctx, text)
	if err != nil {
		return "", err
	}

	id, err := s.facts.Insert(ctx, core.Fact{
		Text:            text,
		SourceMessageID: sourceMessageID,
		CreatedAt:       time.Now().UTC(),
	}, vec)
	if err != nil {
		return "", &core.StoreError{Op: "add fact", Err: err}
	}
	return id, nil
}

// RelevantHistory returns the limit messages most similar to query, re-sorted
// into chronological order; similarity rank only drives selection.
func (s *Store) RelevantHistory(ctx context.Context, query string, limit int) ([]core.Message, error) {
	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.SearchByVector(ctx, vec, limit)
	if err != nil {
		return nil, &core.StoreError{Op: "search history", Err: err}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *Store) RecentHistory(ctx context.Context, limit int) ([]core.Message, error) {
	messages, err := s.messages.Recent(ctx, limit)
	if err != nil {
		return nil, &core.StoreError{Op: "recent history", Err: err}
	}
	return messages, nil
}

// RelevantFacts returns fact texts in similarity order.
func (s *Store) RelevantFacts(ctx context.Context, query string, limit int) ([]string, error) {
	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	facts, err := s.facts.SearchByVector(ctx, vec, limit)
	if err != nil {
		return nil, &core.StoreError{Op: "search facts", Err: err}
	}
	return facts, nil
}

func (s *Store) AllFacts(ctx context.Context) ([]string, error) {
	facts, err := s.facts.All(ctx, allFactsPageSize)
	if err != nil {
		return nil, &core.StoreError{Op: "all facts", Err: err}
	}
	if len(facts) == allFactsPageSize {
		log.FromCtx(ctx).Debug().Int("page", allFactsPageSize).Msg("facts page full, older facts not returned")
	}
	return facts, nil
}

func (s *Store) LastUserMessageTime(ctx context.Context) (time.Time, bool, error) {
	ts, ok, err := s.messages.LastUserMessageTime(ctx)
	if err != nil {
		return time.Time{}, false, &core.StoreError{Op: "last user message", Err: err}
	}
	return ts, ok, nil
}
