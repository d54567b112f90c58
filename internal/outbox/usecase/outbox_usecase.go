// Package usecase replays pending outbox events across tenants.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/allisson/exitflow/internal/database"
	"github.com/allisson/exitflow/internal/outbox/domain"
)

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// MinAge keeps the worker away from events the request path is still dispatching inline.
	MinAge time.Duration
	// LeaseTimeout reclaims events left in processing by a crashed worker.
	LeaseTimeout time.Duration
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	ClaimPending(ctx context.Context, limit int, createdBefore, staleBefore time.Time) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// TenantOutbox is the outbox of one tenant database.
type TenantOutbox struct {
	TxManager  database.TxManager
	Repository OutboxEventRepository
}

// TenantOutboxResolver resolves a tenant id to its outbox.
type TenantOutboxResolver interface {
	Outbox(ctx context.Context, tenantID string) (*TenantOutbox, error)
}

// EventProcessor defines the interface for processing different event types
type EventProcessor interface {
	Process(ctx context.Context, tenantID string, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessAll(ctx context.Context) error
	ProcessEvents(ctx context.Context, tenantID string) (int, error)
}

// OutboxUseCase implements business logic for processing outbox events
type OutboxUseCase struct {
	config    Config
	tenants   []string
	resolver  TenantOutboxResolver
	processor EventProcessor
	logger    *slog.Logger
	now       func() time.Time
}

// NewOutboxUseCase creates a new OutboxUseCase
func NewOutboxUseCase(
	config Config,
	tenants []string,
	resolver TenantOutboxResolver,
	processor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	return &OutboxUseCase{
		config:    config,
		tenants:   tenants,
		resolver:  resolver,
		processor: processor,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start starts the outbox event processing loop
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	if uc.logger != nil {
		uc.logger.Info("starting stage intent processor",
			slog.Duration("interval", uc.config.Interval),
			slog.Int("batch_size", uc.config.BatchSize),
			slog.Int("tenants", len(uc.tenants)),
		)
	}

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if uc.logger != nil {
				uc.logger.Info("stopping stage intent processor")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessAll(ctx); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to process stage intents", slog.Any("error", err))
				}
			}
		}
	}
}

// ProcessAll processes one batch for every configured tenant. A failing tenant does not
// stop the others.
func (uc *OutboxUseCase) ProcessAll(ctx context.Context) error {
	var errs []error
	for _, tenantID := range uc.tenants {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := uc.ProcessEvents(ctx, tenantID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProcessEvents claims a batch of events of one tenant and processes them. It returns the
// number of events processed successfully.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context, tenantID string) (int, error) {
	outbox, err := uc.resolver.Outbox(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	now := uc.now()
	var events []*domain.OutboxEvent
	err = outbox.TxManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		events, err = outbox.Repository.ClaimPending(
			ctx,
			uc.config.BatchSize,
			now.Add(-uc.config.MinAge),
			now.Add(-uc.config.LeaseTimeout),
		)
		return err
	})
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	if uc.logger != nil {
		uc.logger.Info("processing events", slog.String("tenant_id", tenantID), slog.Int("count", len(events)))
	}

	processed := 0
	for _, event := range events {
		if err := uc.processEvent(ctx, tenantID, event); err != nil {
			if uc.logger != nil {
				uc.logger.Error("failed to process event",
					slog.String("tenant_id", tenantID),
					slog.String("event_id", event.ID.String()),
					slog.String("event_type", event.EventType),
					slog.Any("error", err),
				)
			}
			event.MarkAttemptFailed(err, uc.config.MaxRetries, uc.now())
		} else {
			event.MarkProcessed(uc.now())
			processed++
		}

		if err := outbox.Repository.Update(ctx, event); err != nil {
			return processed, err
		}
	}

	return processed, nil
}

// processEvent handles a single outbox event using the configured event processor
func (uc *OutboxUseCase) processEvent(ctx context.Context, tenantID string, event *domain.OutboxEvent) error {
	if uc.logger != nil {
		uc.logger.Debug("processing event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return uc.processor.Process(ctx, tenantID, event)
}
