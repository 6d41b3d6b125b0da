package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/chatty/internal/core"
)

type FactsRepo struct {
	db *sql.DB
}

func NewFactsRepo(db *sql.DB) *FactsRepo {
	return &FactsRepo{db: db}
}

func (r *FactsRepo) Insert(ctx context.Context, fact core.Fact, embedding []float32) (string, error) {
	id := fact.ID
	if id == "" {
		id = uuid.NewString()
	}
	ts := fact.CreatedAt
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

	var source sql.NullString
	if fact.SourceMessageID != "" {
		source = sql.NullString{String: fact.SourceMessageID, Valid: true}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO facts (uuid, fact, source_message_id, created_at) VALUES (?, ?, ?, ?)`,
		id, fact.Text, source, ts,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert fact: %w", err)
	}

	rowID, err := res.LastInsertId()
	if err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO facts_vec (rowid, embedding) VALUES (?, ?)`,
		rowID, vecBlob,
	); err != nil {
		return "", fmt.Errorf("failed to insert fact vector: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (r *FactsRepo) SearchByVector(ctx context.Context, vector []float32, limit int) ([]string, error) {
	vecBlob, err := serializeVector(vector)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT f.fact
		FROM facts_vec v
		JOIN facts f ON f.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance
	`
	rows, err := r.db.QueryContext(ctx, query, vecBlob, limit)
	if err != nil {
		return nil, fmt.Errorf("fact search failed: %w", err)
	}
	defer rows.Close()

	return scanFactTexts(rows)
}

func (r *FactsRepo) All(ctx context.Context, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT fact FROM facts ORDER BY id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query facts: %w", err)
	}
	defer rows.Close()

	return scanFactTexts(rows)
}

func scanFactTexts(rows *sql.Rows) ([]string, error) {
	var facts []string
	for rows.Next() {
		var fact string
		if err := rows.Scan(&fact); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, fact)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return facts, nil
}
