// Package repository provides data persistence implementations for the employee directory.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/employee/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

const employeeColumns = `id, code, first_name, last_name, email, phone, department, designation,
	employment_type, reporting_manager_id, joining_date, salary, leave_balance, status, is_active,
	is_ex_employee, terminated_at, termination_reason, created_at, updated_at`

// EmployeeRepository handles employee persistence for PostgreSQL and MySQL.
type EmployeeRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewEmployeeRepository creates a new EmployeeRepository.
func NewEmployeeRepository(db *sql.DB, dialect database.Dialect) *EmployeeRepository {
	return &EmployeeRepository{
		db:      db,
		dialect: dialect,
	}
}

func (r *EmployeeRepository) nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return r.dialect.UUID(*id)
}

// Create inserts a new employee.
func (r *EmployeeRepository) Create(ctx context.Context, e *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	salary, err := json.Marshal(e.Salary)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal salary")
	}

	query := r.dialect.Rebind(`INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`)

	_, err = querier.ExecContext(ctx, query,
		r.dialect.UUID(e.ID), e.Code, e.FirstName, e.LastName, e.Email, e.Phone, e.Department,
		e.Designation, e.EmploymentType, r.nullableUUID(e.ReportingManagerID), e.JoiningDate,
		r.dialect.JSON(salary), e.LeaveBalance, string(e.Status), e.IsActive, e.IsExEmployee,
		e.TerminatedAt, e.TerminationReason, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "employee code already exists")
		}
		return apperrors.Wrap(err, "failed to create employee")
	}
	return nil
}

// GetByID retrieves an employee by ID.
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`)

	e, err := scanEmployee(querier.QueryRowContext(ctx, query, r.dialect.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get employee by id")
	}
	return e, nil
}

// Update saves every field of an employee. Callers validate the record first.
func (r *EmployeeRepository) Update(ctx context.Context, e *domain.Employee) error {
	querier := database.GetTx(ctx, r.db)

	salary, err := json.Marshal(e.Salary)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal salary")
	}
	e.UpdatedAt = time.Now().UTC()

	query := r.dialect.Rebind(`UPDATE employees SET code = $1, first_name = $2, last_name = $3,
		email = $4, phone = $5, department = $6, designation = $7, employment_type = $8,
		reporting_manager_id = $9, joining_date = $10, salary = $11, leave_balance = $12,
		status = $13, is_active = $14, is_ex_employee = $15, terminated_at = $16,
		termination_reason = $17, updated_at = $18
		WHERE id = $19`)

	result, err := querier.ExecContext(ctx, query,
		e.Code, e.FirstName, e.LastName, e.Email, e.Phone, e.Department, e.Designation,
		e.EmploymentType, r.nullableUUID(e.ReportingManagerID), e.JoiningDate, r.dialect.JSON(salary),
		e.LeaveBalance, string(e.Status), e.IsActive, e.IsExEmployee, e.TerminatedAt,
		e.TerminationReason, e.UpdatedAt, r.dialect.UUID(e.ID),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update employee")
	}
	return expectOneRow(result)
}

// MarkTerminated updates only the termination fields, leaving the rest of the row untouched.
func (r *EmployeeRepository) MarkTerminated(
	ctx context.Context,
	id uuid.UUID,
	terminatedAt time.Time,
	reason string,
) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`UPDATE employees SET is_ex_employee = $1, is_active = $2, status = $3,
		terminated_at = $4, termination_reason = $5, updated_at = $6
		WHERE id = $7`)

	result, err := querier.ExecContext(ctx, query,
		true, false, string(domain.StatusTerminated), terminatedAt, reason, time.Now().UTC(), r.dialect.UUID(id),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to mark employee terminated")
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*domain.Employee, error) {
	var (
		e            domain.Employee
		managerID    uuid.NullUUID
		salary       []byte
		status       string
		terminatedAt sql.NullTime
		leave        decimal.NullDecimal
	)

	err := row.Scan(
		&e.ID, &e.Code, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Department, &e.Designation,
		&e.EmploymentType, &managerID, &e.JoiningDate, &salary, &leave, &status, &e.IsActive,
		&e.IsExEmployee, &terminatedAt, &e.TerminationReason, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if managerID.Valid {
		id := managerID.UUID
		e.ReportingManagerID = &id
	}
	if terminatedAt.Valid {
		at := terminatedAt.Time
		e.TerminatedAt = &at
	}
	if leave.Valid {
		e.LeaveBalance = leave.Decimal
	}
	if len(salary) > 0 {
		if err := json.Unmarshal(salary, &e.Salary); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal salary")
		}
	}
	e.Status = domain.Status(status)
	return &e, nil
}
