package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/offboarding/domain"
)

// AssetClearanceRepository handles asset clearance persistence.
type AssetClearanceRepository struct {
	store *documentStore[domain.AssetClearance]
}

// NewAssetClearanceRepository creates a new AssetClearanceRepository.
func NewAssetClearanceRepository(db *sql.DB, dialect database.Dialect) *AssetClearanceRepository {
	return &AssetClearanceRepository{store: &documentStore[domain.AssetClearance]{
		db:       db,
		dialect:  dialect,
		table:    "asset_clearances",
		name:     "asset clearance",
		notFound: domain.ErrAssetClearanceNotFound,
		keys: func(a *domain.AssetClearance) (uuid.UUID, uuid.UUID, time.Time, time.Time) {
			return a.ID, a.RequestID, a.CreatedAt, a.UpdatedAt
		},
	}}
}

// Create inserts the asset clearance of a request.
func (r *AssetClearanceRepository) Create(ctx context.Context, clearance *domain.AssetClearance) error {
	return r.store.create(ctx, clearance)
}

// GetByRequest retrieves the asset clearance of a request.
func (r *AssetClearanceRepository) GetByRequest(
	ctx context.Context,
	requestID uuid.UUID,
) (*domain.AssetClearance, error) {
	return r.store.getByRequest(ctx, requestID)
}

// Update saves an asset clearance.
func (r *AssetClearanceRepository) Update(ctx context.Context, clearance *domain.AssetClearance) error {
	return r.store.update(ctx, clearance)
}

// HandoverRepository handles handover persistence.
type HandoverRepository struct {
	store *documentStore[domain.HandoverDetail]
}

// NewHandoverRepository creates a new HandoverRepository.
func NewHandoverRepository(db *sql.DB, dialect database.Dialect) *HandoverRepository {
	return &HandoverRepository{store: &documentStore[domain.HandoverDetail]{
		db:       db,
		dialect:  dialect,
		table:    "handover_details",
		name:     "handover",
		notFound: domain.ErrHandoverNotFound,
		keys: func(h *domain.HandoverDetail) (uuid.UUID, uuid.UUID, time.Time, time.Time) {
			return h.ID, h.RequestID, h.CreatedAt, h.UpdatedAt
		},
	}}
}

// Create inserts the handover of a request.
func (r *HandoverRepository) Create(ctx context.Context, handover *domain.HandoverDetail) error {
	return r.store.create(ctx, handover)
}

// GetByRequest retrieves the handover of a request.
func (r *HandoverRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.HandoverDetail, error) {
	return r.store.getByRequest(ctx, requestID)
}

// Update saves a handover.
func (r *HandoverRepository) Update(ctx context.Context, handover *domain.HandoverDetail) error {
	return r.store.update(ctx, handover)
}

// SettlementRepository handles final settlement persistence.
type SettlementRepository struct {
	store *documentStore[domain.FinalSettlement]
}

// NewSettlementRepository creates a new SettlementRepository.
func NewSettlementRepository(db *sql.DB, dialect database.Dialect) *SettlementRepository {
	return &SettlementRepository{store: &documentStore[domain.FinalSettlement]{
		db:       db,
		dialect:  dialect,
		table:    "final_settlements",
		name:     "final settlement",
		notFound: domain.ErrSettlementNotFound,
		keys: func(s *domain.FinalSettlement) (uuid.UUID, uuid.UUID, time.Time, time.Time) {
			return s.ID, s.RequestID, s.CreatedAt, s.UpdatedAt
		},
	}}
}

// Create inserts the settlement of a request.
func (r *SettlementRepository) Create(ctx context.Context, settlement *domain.FinalSettlement) error {
	return r.store.create(ctx, settlement)
}

// GetByRequest retrieves the settlement of a request.
func (r *SettlementRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.FinalSettlement, error) {
	return r.store.getByRequest(ctx, requestID)
}

// Update saves a settlement.
func (r *SettlementRepository) Update(ctx context.Context, settlement *domain.FinalSettlement) error {
	return r.store.update(ctx, settlement)
}

// FeedbackRepository handles exit feedback persistence.
type FeedbackRepository struct {
	store *documentStore[domain.ExitFeedback]
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *sql.DB, dialect database.Dialect) *FeedbackRepository {
	return &FeedbackRepository{store: &documentStore[domain.ExitFeedback]{
		db:       db,
		dialect:  dialect,
		table:    "exit_feedback",
		name:     "exit feedback",
		notFound: domain.ErrFeedbackNotFound,
		keys: func(f *domain.ExitFeedback) (uuid.UUID, uuid.UUID, time.Time, time.Time) {
			return f.ID, f.RequestID, f.CreatedAt, f.UpdatedAt
		},
	}}
}

// Create inserts the exit feedback of a request.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.ExitFeedback) error {
	return r.store.create(ctx, feedback)
}

// GetByRequest retrieves the exit feedback of a request.
func (r *FeedbackRepository) GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.ExitFeedback, error) {
	return r.store.getByRequest(ctx, requestID)
}

// Update saves exit feedback.
func (r *FeedbackRepository) Update(ctx context.Context, feedback *domain.ExitFeedback) error {
	return r.store.update(ctx, feedback)
}
