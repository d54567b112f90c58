package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/exitflow/internal/errors"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
)

// resumeRecorder is an OffboardingUseCase that only records ResumeStage calls.
type resumeRecorder struct {
	OffboardingUseCase
	intents []outboxDomain.StageIntent
	err     error
}

func (r *resumeRecorder) ResumeStage(_ context.Context, intent outboxDomain.StageIntent) error {
	r.intents = append(r.intents, intent)
	return r.err
}

func TestIntentProcessor_Process(t *testing.T) {
	ctx := context.Background()
	intent := outboxDomain.StageIntent{
		TenantID:  testTenant,
		RequestID: uuid.Must(uuid.NewV7()),
		Stage:     "asset_return",
		ActorID:   uuid.Must(uuid.NewV7()),
	}
	event, err := outboxDomain.NewStageIntentEvent(uuid.Must(uuid.NewV7()), intent, testNow)
	require.NoError(t, err)

	t.Run("resumes the stage", func(t *testing.T) {
		recorder := &resumeRecorder{}
		require.NoError(t, NewIntentProcessor(recorder).Process(ctx, testTenant, event))
		require.Len(t, recorder.intents, 1)
		assert.Equal(t, intent, recorder.intents[0])
	})

	t.Run("tenant mismatch", func(t *testing.T) {
		recorder := &resumeRecorder{}
		err := NewIntentProcessor(recorder).Process(ctx, "globex", event)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Empty(t, recorder.intents)
	})

	t.Run("bad payload", func(t *testing.T) {
		recorder := &resumeRecorder{}
		broken := *event
		broken.Payload = "{"
		err := NewIntentProcessor(recorder).Process(ctx, testTenant, &broken)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}
