package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatty/internal/core"
)

const testEmbeddingDim = 768

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "chatty.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// vec returns an embedding that points mostly along one axis, so cosine
// distance between different seeds is meaningful.
func vec(seed int) []float32 {
	v := make([]float32, testEmbeddingDim)
	for i := range v {
		v[i] = 0.01
	}
	v[seed%testEmbeddingDim] = 1
	return v
}

func insert(t *testing.T, repo *MessagesRepo, role, content string, ts time.Time, seed int) string {
	t.Helper()
	id, err := repo.Insert(context.Background(), core.Message{
		Role:      role,
		Content:   content,
		Timestamp: ts,
	}, vec(seed))
	require.NoError(t, err)
	return id
}

func TestMessagesRecentOrder(t *testing.T) {
	repo := NewMessagesRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	insert(t, repo, core.RoleUser, "first", base, 1)
	insert(t, repo, core.RoleAssistant, "second", base.Add(time.Minute), 2)
	insert(t, repo, core.RoleUser, "third", base.Add(2*time.Minute), 3)

	got, err := repo.Recent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Content)
	assert.Equal(t, "third", got[1].Content)
}

func TestMessagesRecentTieBreakByInsertionOrder(t *testing.T) {
	repo := NewMessagesRepo(newTestDB(t))
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	insert(t, repo, core.RoleUser, "a", ts, 1)
	insert(t, repo, core.RoleAssistant, "b", ts, 2)

	got, err := repo.Recent(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Content)
	assert.Equal(t, "b", got[1].Content)
}

func TestMessagesSearchByVector(t *testing.T) {
	repo := NewMessagesRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	insert(t, repo, core.RoleUser, "about cats", base, 10)
	insert(t, repo, core.RoleUser, "about the weather", base.Add(time.Minute), 300)

	got, err := repo.SearchByVector(ctx, vec(10), 1)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "about cats", got[0].Content)
}

func TestLastUserMessageTime(t *testing.T) {
	repo := NewMessagesRepo(newTestDB(t))
	ctx := context.Background()

	_, ok, err := repo.LastUserMessageTime(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	userTS := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	insert(t, repo, core.RoleUser, "hi", userTS, 1)
	// A later assistant turn must not count as user activity
	insert(t, repo, core.RoleAssistant, "hello", userTS.Add(time.Hour), 2)

	got, ok, err := repo.LastUserMessageTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(userTS))
}

func TestFactsInsertAndAll(t *testing.T) {
	db := newTestDB(t)
	facts := NewFactsRepo(db)
	ctx := context.Background()

	_, err := facts.Insert(ctx, core.Fact{Text: "first fact"}, vec(1))
	require.NoError(t, err)
	_, err = facts.Insert(ctx, core.Fact{Text: "second fact", SourceMessageID: "m1"}, vec(2))
	require.NoError(t, err)

	got, err := facts.All(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"first fact", "second fact"}, got)

	limited, err := facts.All(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"first fact"}, limited)
}

func TestFactsSearchByVector(t *testing.T) {
	db := newTestDB(t)
	facts := NewFactsRepo(db)
	ctx := context.Background()

	_, err := facts.Insert(ctx, core.Fact{Text: "likes jazz"}, vec(5))
	require.NoError(t, err)
	_, err = facts.Insert(ctx, core.Fact{Text: "afraid of spiders"}, vec(400))
	require.NoError(t, err)

	got, err := facts.SearchByVector(ctx, vec(5), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"likes jazz"}, got)
}

func TestRemindersLifecycle(t *testing.T) {
	db := newTestDB(t)
	reminders := NewRemindersRepo(db)
	ctx := context.Background()

	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	id, err := reminders.Create(ctx, core.Reminder{Title: "dentist", DueAt: &due})
	require.NoError(t, err)

	noDue, err := reminders.Create(ctx, core.Reminder{Title: "someday"})
	require.NoError(t, err)

	open, err := reminders.ListOpen(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 2)
	// Dated reminders sort before undated ones
	assert.Equal(t, "dentist", open[0].Title)
	assert.Equal(t, "someday", open[1].Title)

	open[0].Notes = "bring insurance card"
	require.NoError(t, reminders.Update(ctx, open[0]))

	window, err := reminders.ListDueBetween(ctx, due.Add(-time.Hour), due.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "dentist", window[0].Title)

	require.NoError(t, reminders.Complete(ctx, id))

	open, err = reminders.ListOpen(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, noDue, open[0].ID)
}
