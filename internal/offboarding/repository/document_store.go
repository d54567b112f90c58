package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/database"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

// documentKeys extracts the key columns of a satellite record.
type documentKeys[T any] func(record *T) (id, requestID uuid.UUID, createdAt, updatedAt time.Time)

// documentStore persists one satellite record per request as a JSON document.
type documentStore[T any] struct {
	db       *sql.DB
	dialect  database.Dialect
	table    string
	name     string
	notFound error
	keys     documentKeys[T]
}

func (s *documentStore[T]) create(ctx context.Context, record *T) error {
	querier := database.GetTx(ctx, s.db)

	document, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal %s", s.name)
	}
	id, requestID, createdAt, updatedAt := s.keys(record)

	query := s.dialect.Rebind(`INSERT INTO ` + s.table + ` (id, request_id, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`)

	_, err = querier.ExecContext(ctx, query,
		s.dialect.UUID(id), s.dialect.UUID(requestID), s.dialect.JSON(document), createdAt, updatedAt,
	)
	if err != nil {
		if s.dialect.IsUniqueViolation(err) {
			return apperrors.Wrapf(apperrors.ErrConflict, "%s already exists for request", s.name)
		}
		return apperrors.Wrapf(err, "failed to create %s", s.name)
	}
	return nil
}

func (s *documentStore[T]) getByRequest(ctx context.Context, requestID uuid.UUID) (*T, error) {
	querier := database.GetTx(ctx, s.db)

	query := s.dialect.Rebind(`SELECT document FROM ` + s.table + ` WHERE request_id = $1`)

	var document []byte
	err := querier.QueryRowContext(ctx, query, s.dialect.UUID(requestID)).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.notFound
		}
		return nil, apperrors.Wrapf(err, "failed to get %s", s.name)
	}

	record := new(T)
	if err := json.Unmarshal(document, record); err != nil {
		return nil, apperrors.Wrapf(err, "failed to unmarshal %s", s.name)
	}
	return record, nil
}

func (s *documentStore[T]) update(ctx context.Context, record *T) error {
	querier := database.GetTx(ctx, s.db)

	document, err := json.Marshal(record)
	if err != nil {
		return apperrors.Wrapf(err, "failed to marshal %s", s.name)
	}
	id, _, _, updatedAt := s.keys(record)

	query := s.dialect.Rebind(`UPDATE ` + s.table + ` SET document = $1, updated_at = $2 WHERE id = $3`)

	result, err := querier.ExecContext(ctx, query, s.dialect.JSON(document), updatedAt, s.dialect.UUID(id))
	if err != nil {
		return apperrors.Wrapf(err, "failed to update %s", s.name)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return s.notFound
	}
	return nil
}
