// Package domain defines the user directory entities used to assign approvers.
package domain

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/errors"
)

// User is a back office account holding a role in the tenant.
type User struct {
	ID         uuid.UUID
	Name       string
	Email      string
	Role       authDomain.Role
	Department string
	EmployeeID *uuid.UUID
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same email already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")
)
