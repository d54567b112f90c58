// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/user/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

// UserRepository handles user persistence for PostgreSQL and MySQL.
type UserRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB, dialect database.Dialect) *UserRepository {
	return &UserRepository{
		db:      db,
		dialect: dialect,
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`INSERT INTO users (id, name, email, role, department, employee_id, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)

	var employeeID any
	if user.EmployeeID != nil {
		employeeID = r.dialect.UUID(*user.EmployeeID)
	}

	_, err := querier.ExecContext(ctx, query,
		r.dialect.UUID(user.ID), user.Name, user.Email, string(user.Role), user.Department,
		employeeID, user.IsActive, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT id, name, email, role, department, employee_id, is_active, created_at, updated_at
			  FROM users WHERE id = $1`)

	user, err := scanUser(querier.QueryRowContext(ctx, query, r.dialect.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}
	return user, nil
}

// ListActiveByRole returns active holders of role, oldest first.
func (r *UserRepository) ListActiveByRole(
	ctx context.Context,
	role authDomain.Role,
	limit int,
) ([]*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT id, name, email, role, department, employee_id, is_active, created_at, updated_at
			  FROM users
			  WHERE role = $1 AND is_active = $2
			  ORDER BY created_at ASC
			  LIMIT $3`)

	rows, err := querier.QueryContext(ctx, query, string(role), true, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users by role")
	}
	defer func() {
		_ = rows.Close()
	}()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate users")
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		user       domain.User
		role       string
		employeeID uuid.NullUUID
	)
	if err := row.Scan(
		&user.ID, &user.Name, &user.Email, &role, &user.Department, &employeeID,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = authDomain.Role(role)
	if employeeID.Valid {
		id := employeeID.UUID
		user.EmployeeID = &id
	}
	return &user, nil
}
