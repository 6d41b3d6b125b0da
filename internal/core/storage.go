package core

import (
	"context"
	"time"
)

// MessagesRepository is the chat-history collection. Implementations must be
// safe for use by the message path and the scheduler concurrently.
type MessagesRepository interface {
	// Insert stores a message together with its embedding and returns the
	// assigned message ID.
	Insert(ctx context.Context, msg Message, embedding []float32) (string, error)
	// SearchByVector returns up to limit messages nearest to the query
	// vector, most similar first.
	SearchByVector(ctx context.Context, vector []float32, limit int) ([]Message, error)
	// Recent returns the last limit messages in ascending timestamp order.
	Recent(ctx context.Context, limit int) ([]Message, error)
	// LastUserMessageTime returns the timestamp of the newest user message,
	// or ok=false when no user message exists.
	LastUserMessageTime(ctx context.Context) (time.Time, bool, error)
}

// FactsRepository is the user-facts collection.
type FactsRepository interface {
	Insert(ctx context.Context, fact Fact, embedding []float32) (string, error)
	// SearchByVector returns fact texts nearest to the query vector, in
	// similarity order.
	SearchByVector(ctx context.Context, vector []float32, limit int) ([]string, error)
	// All returns stored fact texts, capped at the given page size.
	All(ctx context.Context, limit int) ([]string, error)
}

// Reminder backs the reminders tool suite.
type Reminder struct {
	ID        int64
	Title     string
	DueAt     *time.Time
	Notes     string
	Completed bool
	CreatedAt time.Time
}

type RemindersRepository interface {
	Create(ctx context.Context, r Reminder) (int64, error)
	Update(ctx context.Context, r Reminder) error
	Complete(ctx context.Context, id int64) error
	ListOpen(ctx context.Context, limit int) ([]Reminder, error)
	ListDueBetween(ctx context.Context, from, to time.Time) ([]Reminder, error)
}
