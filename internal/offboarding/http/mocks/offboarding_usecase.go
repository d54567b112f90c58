// Package mocks provides mock implementations for testing HTTP handlers.
package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
)

// MockOffboardingUseCase is a mock implementation of OffboardingUseCase for testing.
type MockOffboardingUseCase struct {
	mock.Mock
}

func (m *MockOffboardingUseCase) result(args mock.Arguments) (*usecase.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Result), args.Error(1)
}

// Initiate mocks the Initiate method of OffboardingUseCase.
func (m *MockOffboardingUseCase) Initiate(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	input usecase.InitiateInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, input))
}

// Get mocks the Get method of OffboardingUseCase.
func (m *MockOffboardingUseCase) Get(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id))
}

// List mocks the List method of OffboardingUseCase.
func (m *MockOffboardingUseCase) List(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	filter usecase.ListFilter,
) ([]*domain.OffboardingRequest, error) {
	args := m.Called(ctx, tenantID, actor, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OffboardingRequest), args.Error(1)
}

// GetLegacy mocks the GetLegacy method of OffboardingUseCase.
func (m *MockOffboardingUseCase) GetLegacy(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*domain.LegacyOffboarding, error) {
	args := m.Called(ctx, tenantID, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LegacyOffboarding), args.Error(1)
}

// Advance mocks the Advance method of OffboardingUseCase.
func (m *MockOffboardingUseCase) Advance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.AdvanceInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// SetClearance mocks the SetClearance method of OffboardingUseCase.
func (m *MockOffboardingUseCase) SetClearance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.ClearanceInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// UpdateSettlement mocks the UpdateSettlement method of OffboardingUseCase.
func (m *MockOffboardingUseCase) UpdateSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.SettlementInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// DecideSettlement mocks the DecideSettlement method of OffboardingUseCase.
func (m *MockOffboardingUseCase) DecideSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.SettlementDecisionInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// CloseOrCancel mocks the CloseOrCancel method of OffboardingUseCase.
func (m *MockOffboardingUseCase) CloseOrCancel(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.CloseOrCancelInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// Complete mocks the Complete method of OffboardingUseCase.
func (m *MockOffboardingUseCase) Complete(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id))
}

// ListTasks mocks the ListTasks method of OffboardingUseCase.
func (m *MockOffboardingUseCase) ListTasks(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) ([]*domain.OffboardingTask, error) {
	args := m.Called(ctx, tenantID, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.OffboardingTask), args.Error(1)
}

// UpdateTask mocks the UpdateTask method of OffboardingUseCase.
func (m *MockOffboardingUseCase) UpdateTask(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	taskID uuid.UUID,
	input usecase.TaskInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, taskID, input))
}

// UpdateAssetItem mocks the UpdateAssetItem method of OffboardingUseCase.
func (m *MockOffboardingUseCase) UpdateAssetItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.AssetItemInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// UpdateHandoverItem mocks the UpdateHandoverItem method of OffboardingUseCase.
func (m *MockOffboardingUseCase) UpdateHandoverItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.HandoverItemInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// SubmitFeedback mocks the SubmitFeedback method of OffboardingUseCase.
func (m *MockOffboardingUseCase) SubmitFeedback(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input usecase.FeedbackInput,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, actor, id, input))
}

// RetryClosure mocks the RetryClosure method of OffboardingUseCase.
func (m *MockOffboardingUseCase) RetryClosure(
	ctx context.Context,
	tenantID string,
	id uuid.UUID,
) (*usecase.Result, error) {
	return m.result(m.Called(ctx, tenantID, id))
}

// ResumeStage mocks the ResumeStage method of OffboardingUseCase.
func (m *MockOffboardingUseCase) ResumeStage(ctx context.Context, intent outboxDomain.StageIntent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}
