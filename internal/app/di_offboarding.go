package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/exitflow/internal/notification"
	offboardingHTTP "github.com/allisson/exitflow/internal/offboarding/http"
	"github.com/allisson/exitflow/internal/offboarding/service"
	offboardingUseCase "github.com/allisson/exitflow/internal/offboarding/usecase"
	outboxUseCase "github.com/allisson/exitflow/internal/outbox/usecase"
)

// offboardingComponents holds the workflow components of the container.
type offboardingComponents struct {
	redisClient        *redis.Client
	notifier           notification.Notifier
	taskGenerator      service.TaskGenerator
	offboardingUseCase offboardingUseCase.OffboardingUseCase
	offboardingHandler *offboardingHTTP.OffboardingHandler
	intentWorker       *outboxUseCase.OutboxUseCase

	notifierInit           sync.Once
	taskGeneratorInit      sync.Once
	offboardingUseCaseInit sync.Once
	offboardingHandlerInit sync.Once
	intentWorkerInit       sync.Once
}

// Notifier returns the Redis notifier when REDIS_URL is set and a logging notifier otherwise.
func (c *Container) Notifier() (notification.Notifier, error) {
	err := c.once(&c.notifierInit, "notifier", func() error {
		logger := c.Logger()
		if c.config.RedisURL == "" {
			c.notifier = notification.NewLogNotifier(logger)
			return nil
		}

		ctx, cancel := context.WithTimeout(c.ctx, 5*time.Second)
		defer cancel()

		client, err := notification.NewRedisClient(ctx, c.config.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.redisClient = client
		c.notifier = notification.NewRedisNotifier(client, c.config.NotificationChannel, logger)
		return nil
	})
	return c.notifier, err
}

// TaskGenerator returns the department task generator.
func (c *Container) TaskGenerator() (service.TaskGenerator, error) {
	err := c.once(&c.taskGeneratorInit, "taskGenerator", func() error {
		generator, err := service.NewTaskGenerator(c.config.TaskTemplatesPath)
		if err != nil {
			return fmt.Errorf("failed to load task templates: %w", err)
		}
		c.taskGenerator = generator
		return nil
	})
	return c.taskGenerator, err
}

// OffboardingUseCase returns the workflow use case, instrumented with business metrics.
func (c *Container) OffboardingUseCase() (offboardingUseCase.OffboardingUseCase, error) {
	err := c.once(&c.offboardingUseCaseInit, "offboardingUseCase", func() error {
		var err error
		c.offboardingUseCase, err = c.initOffboardingUseCase()
		return err
	})
	return c.offboardingUseCase, err
}

// OffboardingHandler returns the HTTP handler of the workflow.
func (c *Container) OffboardingHandler() (*offboardingHTTP.OffboardingHandler, error) {
	err := c.once(&c.offboardingHandlerInit, "offboardingHandler", func() error {
		useCase, err := c.OffboardingUseCase()
		if err != nil {
			return fmt.Errorf("failed to get offboarding use case for handler: %w", err)
		}
		c.offboardingHandler = offboardingHTTP.NewOffboardingHandler(useCase, c.Logger())
		return nil
	})
	return c.offboardingHandler, err
}

// IntentWorker returns the worker replaying pending stage intents of every configured tenant.
func (c *Container) IntentWorker() (*outboxUseCase.OutboxUseCase, error) {
	err := c.once(&c.intentWorkerInit, "intentWorker", func() error {
		var err error
		c.intentWorker, err = c.initIntentWorker()
		return err
	})
	return c.intentWorker, err
}

// initOffboardingUseCase assembles the workflow with its guard, dispatcher and migrator.
func (c *Container) initOffboardingUseCase() (offboardingUseCase.OffboardingUseCase, error) {
	logger := c.Logger()

	registry, err := c.TenantRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant registry for offboarding use case: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for offboarding use case: %w", err)
	}

	notifier, err := c.Notifier()
	if err != nil {
		return nil, fmt.Errorf("failed to get notifier for offboarding use case: %w", err)
	}

	generator, err := c.TaskGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to get task generator for offboarding use case: %w", err)
	}

	effects := offboardingUseCase.NewEffects(logger, businessMetrics)
	dispatcher := offboardingUseCase.NewDispatcher(generator, notifier, effects, logger)
	migrator := offboardingUseCase.NewIdentityMigrator(service.NewSnapshotBuilder(), effects, logger)

	useCase := offboardingUseCase.NewOffboardingUseCase(
		registry,
		service.NewRBACGuard(),
		dispatcher,
		migrator,
		effects,
		businessMetrics,
		logger,
	)

	return offboardingUseCase.NewOffboardingUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initIntentWorker creates the outbox worker that resumes interrupted stage setups.
func (c *Container) initIntentWorker() (*outboxUseCase.OutboxUseCase, error) {
	registry, err := c.TenantRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant registry for intent worker: %w", err)
	}

	useCase, err := c.OffboardingUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get offboarding use case for intent worker: %w", err)
	}

	workerConfig := outboxUseCase.Config{
		Interval:     c.config.IntentWorkerInterval,
		BatchSize:    c.config.IntentWorkerBatchSize,
		MaxRetries:   c.config.IntentWorkerMaxRetries,
		MinAge:       c.config.IntentWorkerMinAge,
		LeaseTimeout: c.config.IntentWorkerLeaseTimeout,
	}

	return outboxUseCase.NewOutboxUseCase(
		workerConfig,
		c.config.Tenants(),
		registry,
		offboardingUseCase.NewIntentProcessor(useCase),
		c.Logger(),
	), nil
}
