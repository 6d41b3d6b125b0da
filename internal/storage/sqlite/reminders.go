package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sandevgo/chatty/internal/core"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rem core.Reminder) (int64, error) {
	ts := rem.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO reminders (title, notes, due_at, created_at) VALUES (?, ?, ?, ?)`,
		rem.Title, rem.Notes, nullTime(rem.DueAt), ts,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert reminder: %w", err)
	}
	return res.LastInsertId()
}

func (r *RemindersRepo) Update(ctx context.Context, rem core.Reminder) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET title = ?, notes = ?, due_at = ? WHERE id = ?`,
		rem.Title, rem.Notes, nullTime(rem.DueAt), rem.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return requireRow(res, rem.ID)
}

func (r *RemindersRepo) Complete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reminders SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to complete reminder: %w", err)
	}
	return requireRow(res, id)
}

func (r *RemindersRepo) ListOpen(ctx context.Context, limit int) ([]core.Reminder, error) {
	query := `
		SELECT id, title, notes, due_at, completed, created_at
		FROM reminders
		WHERE completed = 0
		ORDER BY due_at IS NULL, due_at ASC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func (r *RemindersRepo) ListDueBetween(ctx context.Context, from, to time.Time) ([]core.Reminder, error) {
	query := `
		SELECT id, title, notes, due_at, completed, created_at
		FROM reminders
		WHERE completed = 0 AND due_at IS NOT NULL AND due_at >= ? AND due_at < ?
		ORDER BY due_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	defer rows.Close()

	return scanReminders(rows)
}

func scanReminders(rows *sql.Rows) ([]core.Reminder, error) {
	var reminders []core.Reminder
	for rows.Next() {
		var rem core.Reminder
		var due sql.NullTime
		if err := rows.Scan(&rem.ID, &rem.Title, &rem.Notes, &due, &rem.Completed, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if due.Valid {
			t := due.Time
			rem.DueAt = &t
		}
		reminders = append(reminders, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reminders, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("reminder %d not found", id)
	}
	return nil
}
