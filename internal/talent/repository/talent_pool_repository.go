package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/talent/domain"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

const talentPoolColumns = `id, ex_employee_id, ex_employee_code, name, email, category, rehire_eligible,
	tags, notes, created_at, updated_at`

// TalentPoolRepository handles talent pool persistence for PostgreSQL and MySQL.
type TalentPoolRepository struct {
	db      *sql.DB
	dialect database.Dialect
}

// NewTalentPoolRepository creates a new TalentPoolRepository.
func NewTalentPoolRepository(db *sql.DB, dialect database.Dialect) *TalentPoolRepository {
	return &TalentPoolRepository{
		db:      db,
		dialect: dialect,
	}
}

// Create inserts a talent pool entry. The ex_employee_id column is unique.
func (r *TalentPoolRepository) Create(ctx context.Context, e *domain.TalentPoolEntry) error {
	querier := database.GetTx(ctx, r.db)

	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal tags")
	}

	query := r.dialect.Rebind(`INSERT INTO talent_pool (` + talentPoolColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)

	_, err = querier.ExecContext(ctx, query,
		r.dialect.UUID(e.ID), r.dialect.UUID(e.ExEmployeeID), e.ExEmployeeCode, e.Name,
		domain.NormalizeEmail(e.Email), e.Category, e.RehireEligible, r.dialect.JSON(tags), e.Notes,
		e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if r.dialect.IsUniqueViolation(err) {
			return domain.ErrDuplicateExEmployee
		}
		return apperrors.Wrap(err, "failed to create talent pool entry")
	}
	return nil
}

// FindExEmployee returns the entry matching the key by id, code or email.
// Blank codes and emails never match.
func (r *TalentPoolRepository) FindExEmployee(
	ctx context.Context,
	key domain.ExEmployeeKey,
) (*domain.TalentPoolEntry, error) {
	querier := database.GetTx(ctx, r.db)

	match, args := exEmployeeMatch(r.dialect, key, 1)
	query := r.dialect.Rebind(`SELECT ` + talentPoolColumns + ` FROM talent_pool
		WHERE ` + match + `
		ORDER BY created_at ASC
		LIMIT 1`)

	var (
		e    domain.TalentPoolEntry
		tags []byte
	)
	err := querier.QueryRowContext(ctx, query, args...).Scan(
		&e.ID, &e.ExEmployeeID, &e.ExEmployeeCode, &e.Name, &e.Email, &e.Category, &e.RehireEligible,
		&tags, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTalentPoolEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to find talent pool entry")
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &e.Tags); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal tags")
		}
	}
	return &e, nil
}
