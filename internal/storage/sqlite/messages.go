package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/chatty/internal/core"
	"github.com/sandevgo/chatty/pkg/log"
)

type MessagesRepo struct {
	db *sql.DB
}

func NewMessagesRepo(db *sql.DB) *MessagesRepo {
	return &MessagesRepo{db: db}
}

func (r *MessagesRepo) Insert(ctx context.Context, msg core.Message, embedding []float32) (string, error) {
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	vecBlob, err := serializeVector(embedding)
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (uuid, role, content, created_at) VALUES (?, ?, ?, ?)`,
		id, msg.Role, msg.Content, ts,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return "", err
	}

	// rowid ties the vector to the message row
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO messages_vec (rowid, embedding) VALUES (?, ?)`,
		rowID, vecBlob,
	); err != nil {
		return "", fmt.Errorf("failed to insert message vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *MessagesRepo) SearchByVector(ctx context.Context, vector []float32, limit int) ([]core.Message, error) {
	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT m.uuid, m.role, m.content, m.created_at
		FROM messages_vec v
		JOIN messages m ON m.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, limit)
	if err != nil {
		return nil, fmt.Errorf("message search failed: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (r *MessagesRepo) Recent(ctx context.Context, limit int) ([]core.Message, error) {
	// Equal timestamps are broken by rowid, i.e. insertion order.
	query := `
		SELECT uuid, role, content, created_at
		FROM messages
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// Back to chronological order for the LLM
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	log.FromCtx(ctx).Debug().Int("count", len(messages)).Msg("loaded recent messages")
	return messages, nil
}

func (r *MessagesRepo) LastUserMessageTime(ctx context.Context) (time.Time, bool, error) {
	var ts time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT created_at FROM messages WHERE role = ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		core.RoleUser,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query last user message: %w", err)
	}
	return ts, true, nil
}

func scanMessages(rows *sql.Rows) ([]core.Message, error) {
	var messages []core.Message
	for rows.Next() {
		var msg core.Message
		if err := rows.Scan(&msg.ID, &msg.Role, &msg.Content, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
