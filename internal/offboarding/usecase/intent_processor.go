package usecase

import (
	"context"

	apperrors "github.com/allisson/exitflow/internal/errors"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
)

// IntentProcessor replays pending stage intents through the workflow.
type IntentProcessor struct {
	workflow OffboardingUseCase
}

// NewIntentProcessor creates an IntentProcessor.
func NewIntentProcessor(workflow OffboardingUseCase) *IntentProcessor {
	return &IntentProcessor{workflow: workflow}
}

// Process decodes event and resumes the stage setup it records.
func (p *IntentProcessor) Process(ctx context.Context, tenantID string, event *outboxDomain.OutboxEvent) error {
	intent, err := event.StageIntent()
	if err != nil {
		return err
	}
	if intent.TenantID != tenantID {
		return apperrors.Wrapf(apperrors.ErrInvalidInput,
			"intent %s belongs to tenant %q, not %q", event.ID, intent.TenantID, tenantID)
	}
	return p.workflow.ResumeStage(ctx, intent)
}
