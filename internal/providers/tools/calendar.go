package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/chatty/internal/core"
)

const agendaSchema = `
{
  "type": "object",
  "properties": {
    "days": { "type": "integer", "description": "How many days ahead to look, default 1" }
  }
}
`

// Agenda gives the model a calendar-style view over due reminders.
type Agenda struct {
	repo  core.RemindersRepository
	nowFn func() time.Time
}

func NewAgenda(repo core.RemindersRepository) *Agenda {
	return &Agenda{repo: repo, nowFn: time.Now}
}

func (t *Agenda) Name() string { return "get_agenda" }

func (t *Agenda) Description() string {
	return "Get the user's agenda: reminders due today or in the next few days"
}

func (t *Agenda) Parameters() json.RawMessage {
	return json.RawMessage(agendaSchema)
}

func (t *Agenda) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var input struct {
		Days int `json:"days"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &input); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if input.Days <= 0 {
		input.Days = 1
	}

	now := t.nowFn()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 0, input.Days)

	due, err := t.repo.ListDueBetween(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("failed to load agenda: %w", err)
	}
	if len(due) == 0 {
		return fmt.Sprintf("Nothing scheduled in the next %d day(s).", input.Days), nil
	}

	lines := make([]string, 0, len(due))
	for _, r := range due {
		lines = append(lines, formatReminder(r))
	}
	return strings.Join(lines, "\n"), nil
}
