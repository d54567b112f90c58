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

	apperrors "github.com/allisson/exitflow/internal/errors"
)

// TaskRepository handles offboarding task persistence for PostgreSQL and MySQL.
type TaskRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB, dialect database.Dialect) *TaskRepository {
	return &TaskRepository{
		db:      db,
		dialect: dialect,
	}
}

// CreateBatch inserts tasks with a single statement.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*domain.OffboardingTask) error {
	if len(tasks) == 0 {
		return nil
	}
	querier := database.GetTx(ctx, r.db)

	values := make([]string, 0, len(tasks))
	args := make([]any, 0, len(tasks)*7)
	for _, t := range tasks {
		document, err := json.Marshal(t)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal offboarding task")
		}
		n := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7))
		args = append(args,
			r.dialect.UUID(t.ID), r.dialect.UUID(t.RequestID), string(t.Department), t.DueDate,
			r.dialect.JSON(document), t.CreatedAt, t.UpdatedAt,
		)
	}

	query := r.dialect.Rebind(`INSERT INTO offboarding_tasks
		(id, request_id, department, due_date, document, created_at, updated_at)
		VALUES ` + strings.Join(values, ", "))

	if _, err := querier.ExecContext(ctx, query, args...); err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrConflict, "offboarding tasks already generated")
		}
		return apperrors.Wrap(err, "failed to create offboarding tasks")
	}
	return nil
}

// GetByID retrieves a task by ID.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.OffboardingTask, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT document FROM offboarding_tasks WHERE id = $1`)

	task, err := scanTask(querier.QueryRowContext(ctx, query, r.dialect.UUID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get offboarding task by id")
	}
	return task, nil
}

// ListByRequest retrieves the tasks of a request ordered by due date.
func (r *TaskRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.OffboardingTask, error) {
	querier := database.GetTx(ctx, r.db)

	query := r.dialect.Rebind(`SELECT document FROM offboarding_tasks
		WHERE request_id = $1
		ORDER BY due_date ASC, department ASC, id ASC`)

	rows, err := querier.QueryContext(ctx, query, r.dialect.UUID(requestID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list offboarding tasks")
	}
	defer func() {
		_ = rows.Close()
	}()

	tasks := make([]*domain.OffboardingTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan offboarding task")
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate offboarding tasks")
	}
	return tasks, nil
}

// Update saves a task.
func (r *TaskRepository) Update(ctx context.Context, task *domain.OffboardingTask) error {
	querier := database.GetTx(ctx, r.db)

	document, err := json.Marshal(task)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal offboarding task")
	}

	query := r.dialect.Rebind(`UPDATE offboarding_tasks SET document = $1, updated_at = $2 WHERE id = $3`)

	result, err := querier.ExecContext(ctx, query, r.dialect.JSON(document), task.UpdatedAt, r.dialect.UUID(task.ID))
	if err != nil {
		return apperrors.Wrap(err, "failed to update offboarding task")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.OffboardingTask, error) {
	var document []byte
	if err := row.Scan(&document); err != nil {
		return nil, err
	}
	var task domain.OffboardingTask
	if err := json.Unmarshal(document, &task); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal offboarding task")
	}
	return &task, nil
}
