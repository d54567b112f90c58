package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/metrics"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
)

const metricsDomain = "offboarding"

// offboardingUseCaseWithMetrics decorates OffboardingUseCase with metrics instrumentation.
type offboardingUseCaseWithMetrics struct {
	next    OffboardingUseCase
	metrics metrics.BusinessMetrics
}

// NewOffboardingUseCaseWithMetrics wraps an OffboardingUseCase with metrics recording.
func NewOffboardingUseCaseWithMetrics(useCase OffboardingUseCase, m metrics.BusinessMetrics) OffboardingUseCase {
	return &offboardingUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (s *offboardingUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = apperrors.Code(err)
	}

	s.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	s.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Initiate records metrics for request initiation.
func (s *offboardingUseCaseWithMetrics) Initiate(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	input InitiateInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.Initiate(ctx, tenantID, actor, input)
	s.record(ctx, "request_initiate", start, err)
	return result, err
}

// Get records metrics for request retrieval.
func (s *offboardingUseCaseWithMetrics) Get(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.Get(ctx, tenantID, actor, id)
	s.record(ctx, "request_get", start, err)
	return result, err
}

// List records metrics for request listing.
func (s *offboardingUseCaseWithMetrics) List(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	filter ListFilter,
) ([]*domain.OffboardingRequest, error) {
	start := time.Now()
	requests, err := s.next.List(ctx, tenantID, actor, filter)
	s.record(ctx, "request_list", start, err)
	return requests, err
}

// GetLegacy records metrics for the legacy view.
func (s *offboardingUseCaseWithMetrics) GetLegacy(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*domain.LegacyOffboarding, error) {
	start := time.Now()
	view, err := s.next.GetLegacy(ctx, tenantID, actor, id)
	s.record(ctx, "request_get_legacy", start, err)
	return view, err
}

// Advance records metrics for stage moves.
func (s *offboardingUseCaseWithMetrics) Advance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input AdvanceInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.Advance(ctx, tenantID, actor, id, input)
	s.record(ctx, "request_advance", start, err)
	return result, err
}

// SetClearance records metrics for department clearances.
func (s *offboardingUseCaseWithMetrics) SetClearance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input ClearanceInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.SetClearance(ctx, tenantID, actor, id, input)
	s.record(ctx, "clearance_set", start, err)
	return result, err
}

// UpdateSettlement records metrics for settlement updates.
func (s *offboardingUseCaseWithMetrics) UpdateSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input SettlementInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.UpdateSettlement(ctx, tenantID, actor, id, input)
	s.record(ctx, "settlement_update", start, err)
	return result, err
}

// DecideSettlement records metrics for settlement decisions.
func (s *offboardingUseCaseWithMetrics) DecideSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input SettlementDecisionInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.DecideSettlement(ctx, tenantID, actor, id, input)
	s.record(ctx, "settlement_decide", start, err)
	return result, err
}

// CloseOrCancel records metrics for closing and cancelling requests.
func (s *offboardingUseCaseWithMetrics) CloseOrCancel(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input CloseOrCancelInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.CloseOrCancel(ctx, tenantID, actor, id, input)
	s.record(ctx, "request_"+input.Action, start, err)
	return result, err
}

// Complete records metrics for request completion.
func (s *offboardingUseCaseWithMetrics) Complete(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.Complete(ctx, tenantID, actor, id)
	s.record(ctx, "request_complete", start, err)
	return result, err
}

// RetryClosure records metrics for operator closure retries.
func (s *offboardingUseCaseWithMetrics) RetryClosure(
	ctx context.Context,
	tenantID string,
	id uuid.UUID,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.RetryClosure(ctx, tenantID, id)
	s.record(ctx, "closure_retry", start, err)
	return result, err
}

// ListTasks records metrics for task listing.
func (s *offboardingUseCaseWithMetrics) ListTasks(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) ([]*domain.OffboardingTask, error) {
	start := time.Now()
	tasks, err := s.next.ListTasks(ctx, tenantID, actor, id)
	s.record(ctx, "task_list", start, err)
	return tasks, err
}

// UpdateTask records metrics for task updates.
func (s *offboardingUseCaseWithMetrics) UpdateTask(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	taskID uuid.UUID,
	input TaskInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.UpdateTask(ctx, tenantID, actor, id, taskID, input)
	s.record(ctx, "task_update", start, err)
	return result, err
}

// UpdateAssetItem records metrics for asset item updates.
func (s *offboardingUseCaseWithMetrics) UpdateAssetItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input AssetItemInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.UpdateAssetItem(ctx, tenantID, actor, id, input)
	s.record(ctx, "asset_item_update", start, err)
	return result, err
}

// UpdateHandoverItem records metrics for handover item updates.
func (s *offboardingUseCaseWithMetrics) UpdateHandoverItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input HandoverItemInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.UpdateHandoverItem(ctx, tenantID, actor, id, input)
	s.record(ctx, "handover_item_update", start, err)
	return result, err
}

// SubmitFeedback records metrics for exit interviews.
func (s *offboardingUseCaseWithMetrics) SubmitFeedback(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input FeedbackInput,
) (*Result, error) {
	start := time.Now()
	result, err := s.next.SubmitFeedback(ctx, tenantID, actor, id, input)
	s.record(ctx, "feedback_submit", start, err)
	return result, err
}

// ResumeStage records metrics for replayed stage setups.
func (s *offboardingUseCaseWithMetrics) ResumeStage(ctx context.Context, intent outboxDomain.StageIntent) error {
	start := time.Now()
	err := s.next.ResumeStage(ctx, intent)
	s.record(ctx, "stage_resume", start, err)
	return err
}
