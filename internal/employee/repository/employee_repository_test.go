package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/employee/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

var employeeColumnNames = []string{
	"id", "code", "first_name", "last_name", "email", "phone", "department", "designation",
	"employment_type", "reporting_manager_id", "joining_date", "salary", "leave_balance", "status",
	"is_active", "is_ex_employee", "terminated_at", "termination_reason", "created_at", "updated_at",
}

func newMockRepository(t *testing.T, dialect database.Dialect) (*EmployeeRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewEmployeeRepository(db, dialect), mock
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	managerID := uuid.Must(uuid.NewV7())
	joined := time.Date(2020, 3, 31, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	t.Run("postgres", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)

		rows := sqlmock.NewRows(employeeColumnNames).AddRow(
			id.String(), "EMP-001", "Ada", "Lovelace", "ada@example.com", "", "Engineering", "Staff Engineer",
			"full_time", managerID.String(), joined, []byte(`{"currency":"USD","basic":"5000","hra":"2000","allowances":"500"}`),
			"12.5", "active", true, false, nil, "", now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(rows)

		e, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, "Ada Lovelace", e.FullName())
		require.NotNil(t, e.ReportingManagerID)
		assert.Equal(t, managerID, *e.ReportingManagerID)
		assert.True(t, decimal.NewFromInt(7500).Equal(e.Salary.Gross()))
		assert.True(t, decimal.RequireFromString("12.5").Equal(e.LeaveBalance))
		assert.Equal(t, domain.StatusActive, e.Status)
		assert.Nil(t, e.TerminatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mysql binds binary ids", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectMySQL)
		idBytes, _ := id.MarshalBinary()

		rows := sqlmock.NewRows(employeeColumnNames).AddRow(
			idBytes, "EMP-001", "Ada", "Lovelace", "ada@example.com", "", "Engineering", "Staff Engineer",
			"full_time", nil, joined, nil, nil, "terminated", false, true, now, "resignation", now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM employees WHERE id = ?")).
			WithArgs(idBytes).
			WillReturnRows(rows)

		e, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, e.ID)
		assert.Nil(t, e.ReportingManagerID)
		assert.True(t, e.IsExEmployee)
		require.NotNil(t, e.TerminatedAt)
		assert.True(t, e.LeaveBalance.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)
		mock.ExpectQuery("FROM employees").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestEmployeeRepository_Create(t *testing.T) {
	ctx := context.Background()
	e := &domain.Employee{
		ID:             uuid.Must(uuid.NewV7()),
		Code:           "EMP-002",
		FirstName:      "Grace",
		LastName:       "Hopper",
		Email:          "grace@example.com",
		Department:     "Engineering",
		EmploymentType: "full_time",
		JoiningDate:    time.Date(2019, 1, 7, 0, 0, 0, 0, time.UTC),
		Status:         domain.StatusActive,
		IsActive:       true,
	}

	t.Run("success", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO employees")).
			WillReturnError(apperrors.New(`duplicate key value violates unique constraint "employees_code_key"`))

		err := repo.Create(ctx, e)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})
}

func TestEmployeeRepository_MarkTerminated(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	lwd := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	t.Run("touches only termination fields", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)
		mock.ExpectExec(regexp.QuoteMeta(
			"UPDATE employees SET is_ex_employee = $1, is_active = $2, status = $3,",
		)).
			WithArgs(true, false, "terminated", lwd, "resignation", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkTerminated(ctx, id, lwd, "resignation"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown employee", func(t *testing.T) {
		repo, mock := newMockRepository(t, database.DialectPostgres)
		mock.ExpectExec("UPDATE employees").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkTerminated(ctx, id, lwd, "resignation")
		assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
	})
}

func TestEmployeeRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t, database.DialectMySQL)
	e := &domain.Employee{ID: uuid.Must(uuid.NewV7()), Code: "EMP-003", Status: domain.StatusActive}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE employees SET code = ?, first_name = ?")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(ctx, e))
	assert.False(t, e.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
