package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
)

// ClosureRetrier re-runs the identity migration of a closed request.
type ClosureRetrier interface {
	RetryClosure(ctx context.Context, tenantID string, id uuid.UUID) (*usecase.Result, error)
}

type retryClosureOutput struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenant_id"`
	Status   string   `json:"status"`
	Stage    string   `json:"current_stage"`
	Warnings []string `json:"warnings,omitempty"`
}

// RunRetryClosure retries the closure of one request and prints its resulting state.
// Remaining warnings mean the employee still has not been migrated.
func RunRetryClosure(
	ctx context.Context,
	retrier ClosureRetrier,
	logger *slog.Logger,
	writer io.Writer,
	tenantID string,
	requestID string,
	format string,
) error {
	if err := database.ValidateTenantID(tenantID); err != nil {
		return err
	}
	id, err := uuid.Parse(requestID)
	if err != nil {
		return fmt.Errorf("invalid request ID format: %w", err)
	}

	logger.Info("retrying closure",
		slog.String("tenant_id", tenantID),
		slog.String("request_id", id.String()),
	)

	result, err := retrier.RetryClosure(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to retry closure: %w", err)
	}

	output := retryClosureOutput{
		ID:       result.Request.ID.String(),
		TenantID: tenantID,
		Status:   string(result.Request.Status),
		Stage:    string(result.Request.CurrentStage),
		Warnings: result.Warnings,
	}

	err = render(writer, format, output, func(w io.Writer) error {
		_, _ = fmt.Fprintf(w, "Request %s is %s (%s)\n", output.ID, output.Status, output.Stage)
		for _, warning := range output.Warnings {
			_, _ = fmt.Fprintf(w, "warning: %s\n", warning)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(output.Warnings) > 0 {
		logger.Warn("closure still incomplete",
			slog.String("request_id", output.ID),
			slog.Any("warnings", output.Warnings),
		)
	}
	return nil
}
