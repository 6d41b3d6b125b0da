package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/chatty/internal/core"
)

type fakeRemindersRepo struct {
	open    []core.Reminder
	created []core.Reminder
	updated []core.Reminder
	done    []int64
	nextID  int64

	dueBetween []core.Reminder
}

func (f *fakeRemindersRepo) Create(_ context.Context, r core.Reminder) (int64, error) {
	f.nextID++
	r.ID = f.nextID
	f.created = append(f.created, r)
	return r.ID, nil
}

func (f *fakeRemindersRepo) Update(_ context.Context, r core.Reminder) error {
	f.updated = append(f.updated, r)
	return nil
}

func (f *fakeRemindersRepo) Complete(_ context.Context, id int64) error {
	f.done = append(f.done, id)
	return nil
}

func (f *fakeRemindersRepo) ListOpen(context.Context, int) ([]core.Reminder, error) {
	return f.open, nil
}

func (f *fakeRemindersRepo) ListDueBetween(context.Context, time.Time, time.Time) ([]core.Reminder, error) {
	return f.dueBetween, nil
}

func TestParseDue(t *testing.T) {
	for _, input := range []string{"2025-06-01 09:30", "2025-06-01T09:30", "2025-06-01"} {
		got, err := parseDue(input)
		require.NoError(t, err, input)
		require.NotNil(t, got, input)
		assert.Equal(t, 2025, got.Year())
	}

	got, err := parseDue("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDue("tomorrow-ish")
	assert.Error(t, err)
}

func TestCreateReminder(t *testing.T) {
	repo := &fakeRemindersRepo{}
	tool := NewCreateReminder(repo)

	got, err := tool.Execute(context.Background(), json.RawMessage(`{"title":" Buy milk ","due":"2025-06-01 09:30","notes":"oat"}`))

	require.NoError(t, err)
	assert.Equal(t, "Created reminder #1:  Buy milk ", got)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Buy milk", repo.created[0].Title)
	assert.Equal(t, "oat", repo.created[0].Notes)
	require.NotNil(t, repo.created[0].DueAt)
}

func TestCreateReminderRequiresTitle(t *testing.T) {
	tool := NewCreateReminder(&fakeRemindersRepo{})

	_, err := tool.Execute(context.Background(), json.RawMessage(`{"title":"  "}`))
	assert.Error(t, err)
}

func TestListRemindersEmpty(t *testing.T) {
	tool := NewListReminders(&fakeRemindersRepo{})

	got, err := tool.Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "No open reminders.", got)
}

func TestListReminders(t *testing.T) {
	due := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC)
	repo := &fakeRemindersRepo{open: []core.Reminder{
		{ID: 1, Title: "Call mom", DueAt: &due},
		{ID: 2, Title: "Water plants", Notes: "balcony too"},
	}}

	got, err := NewListReminders(repo).Execute(context.Background(), nil)

	require.NoError(t, err)
	assert.Contains(t, got, "#1 Call mom (due Mon Jun 2 18:00)")
	assert.Contains(t, got, "#2 Water plants - balcony too")
}

func TestEditReminderPartialUpdate(t *testing.T) {
	repo := &fakeRemindersRepo{open: []core.Reminder{
		{ID: 3, Title: "Old title", Notes: "keep me"},
	}}

	got, err := NewEditReminder(repo).Execute(context.Background(), json.RawMessage(`{"id":3,"title":"New title"}`))

	require.NoError(t, err)
	assert.Contains(t, got, "New title")
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "New title", repo.updated[0].Title)
	assert.Equal(t, "keep me", repo.updated[0].Notes)
}

func TestEditReminderNotFound(t *testing.T) {
	_, err := NewEditReminder(&fakeRemindersRepo{}).Execute(context.Background(), json.RawMessage(`{"id":42}`))
	assert.Error(t, err)
}

func TestCompleteReminder(t *testing.T) {
	repo := &fakeRemindersRepo{}

	got, err := NewCompleteReminder(repo).Execute(context.Background(), json.RawMessage(`{"id":5}`))

	require.NoError(t, err)
	assert.Equal(t, "Reminder #5 completed.", got)
	assert.Equal(t, []int64{5}, repo.done)
}
