package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/http/mocks"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
)

func TestRunRetryClosure(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	requestID := uuid.New()

	closed := func(warnings ...string) *usecase.Result {
		return &usecase.Result{
			Request: &domain.OffboardingRequest{
				ID:           requestID,
				TenantID:     "acme",
				Status:       domain.StatusClosed,
				CurrentStage: domain.StageClosure,
			},
			Warnings: warnings,
		}
	}

	t.Run("text-output", func(t *testing.T) {
		mockUseCase := &mocks.MockOffboardingUseCase{}
		mockUseCase.On("RetryClosure", ctx, "acme", requestID).Return(closed(), nil)

		var out bytes.Buffer
		err := RunRetryClosure(ctx, mockUseCase, logger, &out, "acme", requestID.String(), "text")

		require.NoError(t, err)
		require.Contains(t, out.String(), requestID.String())
		require.Contains(t, out.String(), string(domain.StatusClosed))
		require.NotContains(t, out.String(), "warning:")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json-output-with-warnings", func(t *testing.T) {
		mockUseCase := &mocks.MockOffboardingUseCase{}
		mockUseCase.On("RetryClosure", ctx, "acme", requestID).
			Return(closed("employee migration failed: deadlock"), nil)

		var out bytes.Buffer
		err := RunRetryClosure(ctx, mockUseCase, logger, &out, "acme", requestID.String(), "json")
		require.NoError(t, err)

		var output retryClosureOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &output))
		require.Equal(t, requestID.String(), output.ID)
		require.Equal(t, "acme", output.TenantID)
		require.Equal(t, []string{"employee migration failed: deadlock"}, output.Warnings)
	})

	t.Run("invalid-request-id", func(t *testing.T) {
		mockUseCase := &mocks.MockOffboardingUseCase{}

		var out bytes.Buffer
		err := RunRetryClosure(ctx, mockUseCase, logger, &out, "acme", "not-a-uuid", "text")

		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid request ID format")
		mockUseCase.AssertNotCalled(t, "RetryClosure", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid-tenant", func(t *testing.T) {
		mockUseCase := &mocks.MockOffboardingUseCase{}

		var out bytes.Buffer
		err := RunRetryClosure(ctx, mockUseCase, logger, &out, "Acme Corp", requestID.String(), "text")

		require.Error(t, err)
		mockUseCase.AssertNotCalled(t, "RetryClosure", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("use-case-error", func(t *testing.T) {
		mockUseCase := &mocks.MockOffboardingUseCase{}
		mockUseCase.On("RetryClosure", ctx, "acme", requestID).Return(nil, domain.ErrRequestNotFound)

		var out bytes.Buffer
		err := RunRetryClosure(ctx, mockUseCase, logger, &out, "acme", requestID.String(), "text")

		require.ErrorIs(t, err, domain.ErrRequestNotFound)
		require.Empty(t, out.String())
	})
}
