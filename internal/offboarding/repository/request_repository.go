// Package repository provides data persistence implementations for offboarding requests and
// their satellite records. Each row keeps the query columns next to a JSON document holding
// the full record.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/usecase"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// OffboardingRequestRepository handles offboarding request persistence for PostgreSQL and MySQL.
type OffboardingRequestRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewOffboardingRequestRepository creates a new OffboardingRequestRepository.
func NewOffboardingRequestRepository(db *sql.DB, dialect database.Dialect) *OffboardingRequestRepository {
	return &OffboardingRequestRepository{
		db:      db,
		dialect: dialect,
	}
}

// activeEmployee is the value of the unique active_employee_id column: the employee id while
// the request is open, NULL once it is closed or cancelled.
func (r *OffboardingRequestRepository) activeEmployee(req *domain.OffboardingRequest) any {
	if req.IsTerminal() {
		return nil
	}
	return r.dialect.UUID(req.EmployeeID)
}

// Create inserts a new request. A second open request for the same employee violates the
// active_employee_id unique index.
func (r *OffboardingRequestRepository) Create(ctx context.Context, req *domain.OffboardingRequest) error {
	querier := database.GetTx(ctx, r.db)

	document, err := json.Marshal(req)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal offboarding request")
	}

	query := r.dialect.Rebind(`INSERT INTO offboarding_requests
		(id, employee_id, active_employee_id, status, current_stage, document, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)

	_, err = querier.ExecContext(ctx, query,
		r.dialect.UUID(req.ID), r.dialect.UUID(req.EmployeeID), r.activeEmployee(req),
		string(req.Status), string(req.CurrentStage), r.dialect.JSON(document), req.Version,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return domain.ErrActiveRequestExists
		}
		return apperrors.Wrap(err, "failed to create offboarding request")
	}
	return nil
}

// GetByID retrieves a request by ID.
func (r *OffboardingRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OffboardingRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT document, version FROM offboarding_requests WHERE id = $1`)

	req, err := scanRequest(querier.QueryRowContext(ctx, query, r.dialect.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get offboarding request by id")
	}
	return req, nil
}

// FindActiveByEmployee retrieves the open request of an employee.
func (r *OffboardingRequestRepository) FindActiveByEmployee(
	ctx context.Context,
	employeeID uuid.UUID,
) (*domain.OffboardingRequest, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT document, version FROM offboarding_requests WHERE active_employee_id = $1`)

	req, err := scanRequest(querier.QueryRowContext(ctx, query, r.dialect.UUID(employeeID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find active offboarding request")
	}
	return req, nil
}

// Update saves req if nobody else saved it since it was read, and bumps its version.
func (r *OffboardingRequestRepository) Update(ctx context.Context, req *domain.OffboardingRequest) error {
	querier := database.GetTx(ctx, r.db)

	next := req.Version + 1
	stored := *req
	stored.Version = next
	document, err := json.Marshal(&stored)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal offboarding request")
	}

	query := r.dialect.Rebind(`UPDATE offboarding_requests
		SET active_employee_id = $1, status = $2, current_stage = $3, document = $4, version = $5, updated_at = $6
		WHERE id = $7 AND version = $8`)

	result, err := querier.ExecContext(ctx, query,
		r.activeEmployee(req), string(req.Status), string(req.CurrentStage), r.dialect.JSON(document),
		next, req.UpdatedAt, r.dialect.UUID(req.ID), req.Version,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return domain.ErrActiveRequestExists
		}
		return apperrors.Wrap(err, "failed to update offboarding request")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return r.missingOrStale(ctx, req.ID)
	}

	req.Version = next
	return nil
}

// missingOrStale tells a deleted request apart from a concurrent update.
func (r *OffboardingRequestRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	var one int
	query := r.dialect.Rebind(`SELECT 1 FROM offboarding_requests WHERE id = $1`)
	err := querier.QueryRowContext(ctx, query, r.dialect.UUID(id)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRequestNotFound
	}
	if err != nil {
		return apperrors.Wrap(err, "failed to check offboarding request")
	}
	return domain.ErrStaleRequest
}

// List retrieves requests matching filter, newest first.
func (r *OffboardingRequestRepository) List(
	ctx context.Context,
	filter usecase.ListFilter,
) ([]*domain.OffboardingRequest, error) {
	querier := database.GetTx(ctx, r.db)

	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Stage != "" {
		args = append(args, string(filter.Stage))
		conditions = append(conditions, fmt.Sprintf("current_stage = $%d", len(args)))
	}
	if filter.EmployeeID != nil {
		args = append(args, r.dialect.UUID(*filter.EmployeeID))
		conditions = append(conditions, fmt.Sprintf("employee_id = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	var b strings.Builder
	b.WriteString(`SELECT document, version FROM offboarding_requests`)
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	args = append(args, limit, filter.Offset)
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := querier.QueryContext(ctx, r.dialect.Rebind(b.String()), args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list offboarding requests")
	}
	defer func() {
		_ = rows.Close()
	}()

	requests := make([]*domain.OffboardingRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan offboarding request")
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate offboarding requests")
	}
	return requests, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.OffboardingRequest, error) {
	var (
		document []byte
		version  int
	)
	if err := row.Scan(&document, &version); err != nil {
		return nil, err
	}

	var req domain.OffboardingRequest
	if err := json.Unmarshal(document, &req); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal offboarding request")
	}
	req.Version = version
	return &req, nil
}
