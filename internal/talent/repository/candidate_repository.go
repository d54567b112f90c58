// Package repository provides data persistence implementations for candidates and the talent pool.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/talent/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

const candidateColumns = `id, first_name, last_name, email, phone, source, status, is_ex_employee,
	ex_employee_id, ex_employee_code, rehire_eligible, last_designation, last_department,
	created_at, updated_at`

// CandidateRepository handles candidate persistence for PostgreSQL and MySQL.
type CandidateRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *sql.DB, dialect database.Dialect) *CandidateRepository {
	return &CandidateRepository{
		db:      db,
		dialect: dialect,
	}
}

// Create inserts a candidate. A second ex-employee candidate for the same employee
// violates the unique index and returns ErrDuplicateExEmployee.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`)

	var exEmployeeID any
	if c.ExEmployeeID != nil {
		exEmployeeID = r.dialect.UUID(*c.ExEmployeeID)
	}

	_, err := querier.ExecContext(ctx, query,
		r.dialect.UUID(c.ID), c.FirstName, c.LastName, domain.NormalizeEmail(c.Email), c.Phone, c.Source,
		c.Status, c.IsExEmployee, exEmployeeID, c.ExEmployeeCode, c.RehireEligible, c.LastDesignation,
		c.LastDepartment, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return domain.ErrDuplicateExEmployee
		}
		return apperrors.Wrap(err, "failed to create candidate")
	}
	return nil
}

// FindExEmployee returns the ex-employee candidate matching the key by id, code or email.
// Blank codes and emails never match.
func (r *CandidateRepository) FindExEmployee(ctx context.Context, key domain.ExEmployeeKey) (*domain.Candidate, error) {
	querier := database.GetTx(ctx, r.db)

	match, args := exEmployeeMatch(r.dialect, key, 2)
	query := r.dialect.Rebind(`SELECT ` + candidateColumns + ` FROM candidates
		WHERE is_ex_employee = $1 AND (` + match + `)
		ORDER BY created_at ASC
		LIMIT 1`)

	c, err := scanCandidate(querier.QueryRowContext(ctx, query, append([]any{true}, args...)...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find ex-employee candidate")
	}
	return c, nil
}

// UpdateName changes only the name fields of a candidate.
func (r *CandidateRepository) UpdateName(ctx context.Context, c *domain.Candidate) error {
	querier := database.GetTx(ctx, r.db)

	c.UpdatedAt = time.Now().UTC()
	query := r.dialect.Rebind(`UPDATE candidates SET first_name = $1, last_name = $2, updated_at = $3 WHERE id = $4`)

	result, err := querier.ExecContext(ctx, query, c.FirstName, c.LastName, c.UpdatedAt, r.dialect.UUID(c.ID))
	if err != nil {
		return apperrors.Wrap(err, "failed to update candidate name")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrCandidateNotFound
	}
	return nil
}

// exEmployeeMatch builds the OR-ed dedup condition starting at placeholder $first.
func exEmployeeMatch(dialect database.Dialect, key domain.ExEmployeeKey, first int) (string, []any) {
	conds := []string{fmt.Sprintf("ex_employee_id = $%d", first)}
	args := []any{dialect.UUID(key.EmployeeID)}
	if code := strings.TrimSpace(key.Code); code != "" {
		conds = append(conds, fmt.Sprintf("ex_employee_code = $%d", first+len(args)))
		args = append(args, code)
	}
	if email := domain.NormalizeEmail(key.Email); email != "" {
		conds = append(conds, fmt.Sprintf("email = $%d", first+len(args)))
		args = append(args, email)
	}
	return strings.Join(conds, " OR "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*domain.Candidate, error) {
	var (
		c            domain.Candidate
		exEmployeeID uuid.NullUUID
	)
	if err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Source, &c.Status, &c.IsExEmployee,
		&exEmployeeID, &c.ExEmployeeCode, &c.RehireEligible, &c.LastDesignation, &c.LastDepartment,
		&c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if exEmployeeID.Valid {
		id := exEmployeeID.UUID
		c.ExEmployeeID = &id
	}
	return &c, nil
}
