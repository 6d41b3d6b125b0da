package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/chatty/internal/core"
)

const (
	listRemindersSchema = `
{
  "type": "object",
  "properties": {}
}
`
	createReminderSchema = `
{
  "type": "object",
  "properties": {
    "title": { "type": "string", "description": "What to remind about" },
    "due": { "type": "string", "description": "Due time, format: 2006-01-02 15:04 (optional)" },
    "notes": { "type": "string", "description": "Extra details (optional)" }
  },
  "required": ["title"]
}
`
	editReminderSchema = `
{
  "type": "object",
  "properties": {
    "id": { "type": "integer", "description": "Reminder ID from list_reminders" },
    "title": { "type": "string", "description": "New title (optional)" },
    "due": { "type": "string", "description": "New due time, format: 2006-01-02 15:04 (optional)" },
    "notes": { "type": "string", "description": "New notes (optional)" }
  },
  "required": ["id"]
}
`
	completeReminderSchema = `
{
  "type": "object",
  "properties": {
    "id": { "type": "integer", "description": "Reminder ID from list_reminders" }
  },
  "required": ["id"]
}
`
)

const maxListedReminders = 25

var dueLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", time.RFC3339, "2006-01-02"}

func parseDue(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized due time %q, expected format 2006-01-02 15:04", s)
}

func formatReminder(r core.Reminder) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s", r.ID, r.Title)
	if r.DueAt != nil {
		fmt.Fprintf(&b, " (due %s)", r.DueAt.Format("Mon Jan 2 15:04"))
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, " - %s", r.Notes)
	}
	return b.String()
}

// ListReminders lists open reminders.
type ListReminders struct {
	repo core.RemindersRepository
}

func NewListReminders(repo core.RemindersRepository) *ListReminders {
	return &ListReminders{repo: repo}
}

func (t *ListReminders) Name() string        { return "list_reminders" }
func (t *ListReminders) Description() string { return "List the user's open reminders" }
func (t *ListReminders) Parameters() json.RawMessage {
	return json.RawMessage(listRemindersSchema)
}

func (t *ListReminders) Execute(ctx context.Context, _ json.RawMessage) (string, error) {
	reminders, err := t.repo.ListOpen(ctx, maxListedReminders)
	if err != nil {
		return "", fmt.Errorf("failed to list reminders: %w", err)
	}
	if len(reminders) == 0 {
		return "No open reminders.", nil
	}

	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		lines = append(lines, formatReminder(r))
	}
	return strings.Join(lines, "\n"), nil
}

// CreateReminder adds a reminder.
type CreateReminder struct {
	repo core.RemindersRepository
}

func NewCreateReminder(repo core.RemindersRepository) *CreateReminder {
	return &CreateReminder{repo: repo}
}

func (t *CreateReminder) Name() string { return "create_reminder" }
func (t *CreateReminder) Description() string {
	return "Create a reminder for the user, optionally with a due time"
}
func (t *CreateReminder) Parameters() json.RawMessage {
	return json.RawMessage(createReminderSchema)
}

func (t *CreateReminder) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		Title string `json:"title"`
		Due   string `json:"due"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if strings.TrimSpace(input.Title) == "" {
		return "", fmt.Errorf("title is required")
	}

	due, err := parseDue(input.Due)
	if err != nil {
		return "", err
	}

	id, err := t.repo.Create(ctx, core.Reminder{
		Title: strings.TrimSpace(input.Title),
		Notes: strings.TrimSpace(input.Notes),
		DueAt: due,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create reminder: %w", err)
	}
	return fmt.Sprintf("Created reminder #%d: %s", id, input.Title), nil
}

// EditReminder updates an existing reminder; empty fields keep their value.
type EditReminder struct {
	repo core.RemindersRepository
}

func NewEditReminder(repo core.RemindersRepository) *EditReminder {
	return &EditReminder{repo: repo}
}

func (t *EditReminder) Name() string        { return "edit_reminder" }
func (t *EditReminder) Description() string { return "Edit the title, due time or notes of a reminder" }
func (t *EditReminder) Parameters() json.RawMessage {
	return json.RawMessage(editReminderSchema)
}

func (t *EditReminder) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
		Due   string `json:"due"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	current, err := findReminder(ctx, t.repo, input.ID)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(input.Title) != "" {
		current.Title = strings.TrimSpace(input.Title)
	}
	if strings.TrimSpace(input.Notes) != "" {
		current.Notes = strings.TrimSpace(input.Notes)
	}
	if strings.TrimSpace(input.Due) != "" {
		due, err := parseDue(input.Due)
		if err != nil {
			return "", err
		}
		current.DueAt = due
	}

	if err := t.repo.Update(ctx, current); err != nil {
		return "", fmt.Errorf("failed to update reminder: %w", err)
	}
	return "Updated: " + formatReminder(current), nil
}

// CompleteReminder marks a reminder done.
type CompleteReminder struct {
	repo core.RemindersRepository
}

func NewCompleteReminder(repo core.RemindersRepository) *CompleteReminder {
	return &CompleteReminder{repo: repo}
}

func (t *CompleteReminder) Name() string        { return "complete_reminder" }
func (t *CompleteReminder) Description() string { return "Mark a reminder as completed" }
func (t *CompleteReminder) Parameters() json.RawMessage {
	return json.RawMessage(completeReminderSchema)
}

func (t *CompleteReminder) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(args, &input); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	if err := t.repo.Complete(ctx, input.ID); err != nil {
		return "", fmt.Errorf("failed to complete reminder: %w", err)
	}
	return fmt.Sprintf("Reminder #%d completed.", input.ID), nil
}

func findReminder(ctx context.Context, repo core.RemindersRepository, id int64) (core.Reminder, error) {
	open, err := repo.ListOpen(ctx, maxListedReminders)
	if err != nil {
		return core.Reminder{}, fmt.Errorf("failed to load reminders: %w", err)
	}
	for _, r := range open {
		if r.ID == id {
			return r, nil
		}
	}
	return core.Reminder{}, fmt.Errorf("reminder %d not found among open reminders", id)
}
