// Package repository provides data persistence implementations for outbox entities.
package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/outbox/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

const outboxColumns = `id, aggregate_id, event_type, payload, status, retries, last_error, processed_at,
	created_at, updated_at`

// OutboxEventRepository handles outbox event persistence for PostgreSQL and MySQL.
type OutboxEventRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewOutboxEventRepository creates a new OutboxEventRepository
func NewOutboxEventRepository(db *sql.DB, dialect database.Dialect) *OutboxEventRepository {
	return &OutboxEventRepository{
		db:      db,
		dialect: dialect,
	}
}

// Create inserts a new outbox event
func (r *OutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO outbox_events (` + outboxColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`)

	_, err := querier.ExecContext(ctx, query,
		r.dialect.UUID(event.ID), r.dialect.UUID(event.AggregateID), event.EventType, r.dialect.JSON([]byte(event.Payload)),
		string(event.Status), event.Retries, event.LastError, event.ProcessedAt, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create outbox event")
	}
	return nil
}

// ClaimPending locks up to limit events that are pending since before createdBefore, or
// stuck in processing since before staleBefore, and flips them to processing.
// It must run inside a transaction.
func (r *OutboxEventRepository) ClaimPending(
	ctx context.Context,
	limit int,
	createdBefore time.Time,
	staleBefore time.Time,
) ([]*domain.OutboxEvent, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + outboxColumns + `
			  FROM outbox_events
			  WHERE (status = $1 AND created_at <= $2) OR (status = $3 AND updated_at <= $4)
			  ORDER BY created_at ASC
			  LIMIT $5
			  FOR UPDATE SKIP LOCKED`)

	rows, err := querier.QueryContext(ctx, query,
		string(domain.OutboxEventStatusPending), createdBefore,
		string(domain.OutboxEventStatusProcessing), staleBefore,
		limit,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to select pending outbox events")
	}

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, event := range events {
		event.Status = domain.OutboxEventStatusProcessing
		event.UpdatedAt = now
		if err := r.Update(ctx, event); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Update updates an outbox event
func (r *OutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE outbox_events
			  SET status = $1, retries = $2, last_error = $3, processed_at = $4, updated_at = $5
			  WHERE id = $6`)

	_, err := querier.ExecContext(ctx, query,
		string(event.Status), event.Retries, event.LastError, event.ProcessedAt, event.UpdatedAt,
		r.dialect.UUID(event.ID),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update outbox event")
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]*domain.OutboxEvent, error) {
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		var (
			event     domain.OutboxEvent
			payload   []byte
			status    string
			lastError sql.NullString
			processed sql.NullTime
		)
		err := rows.Scan(&event.ID, &event.AggregateID, &event.EventType, &payload, &status,
			&event.Retries, &lastError, &processed, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		event.Payload = string(payload)
		event.Status = domain.OutboxEventStatus(status)
		if lastError.Valid {
			msg := lastError.String
			event.LastError = &msg
		}
		if processed.Valid {
			at := processed.Time
			event.ProcessedAt = &at
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}
