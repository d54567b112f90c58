package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/user/domain"
)

var userColumns = []string{
	"id", "name", "email", "role", "department", "employee_id", "is_active", "created_at", "updated_at",
}

func TestUserRepository_ListActiveByRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db, database.DialectMySQL)
	now := time.Now().UTC()
	first := uuid.Must(uuid.NewV7())
	second := uuid.Must(uuid.NewV7())
	employeeID := uuid.Must(uuid.NewV7())

	rows := sqlmock.NewRows(userColumns).
		AddRow(first.String(), "Harriet HR", "harriet@example.com", "hr_manager", "People", employeeID.String(), true, now, now).
		AddRow(second.String(), "Henry HR", "henry@example.com", "hr_manager", "People", nil, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE role = ? AND is_active = ?")).
		WithArgs("hr_manager", true, 1).
		WillReturnRows(rows)

	users, err := repo.ListActiveByRole(context.Background(), authDomain.RoleHRManager, 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, first, users[0].ID)
	assert.Equal(t, authDomain.RoleHRManager, users[0].Role)
	require.NotNil(t, users[0].EmployeeID)
	assert.Equal(t, employeeID, *users[0].EmployeeID)
	assert.Nil(t, users[1].EmployeeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListActiveByRole_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db, database.DialectPostgres)
	mock.ExpectQuery("FROM users").WillReturnError(errors.New("connection reset"))

	_, err = repo.ListActiveByRole(context.Background(), authDomain.RoleFinanceManager, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list users by role")
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db, database.DialectPostgres)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewUserRepository(db, database.DialectPostgres)
	user := &domain.User{ID: uuid.Must(uuid.NewV7()), Name: "Fin", Email: "fin@example.com", Role: authDomain.RoleFinanceManager}

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`))

	err = repo.Create(context.Background(), user)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}
