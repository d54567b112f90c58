package app

import (
	"context"
	"sync"

	"github.com/allisson/exitflow/internal/database"
	employeeRepository "github.com/allisson/exitflow/internal/employee/repository"
	offboardingRepository "github.com/allisson/exitflow/internal/offboarding/repository"
	offboardingUseCase "github.com/allisson/exitflow/internal/offboarding/usecase"
	outboxRepository "github.com/allisson/exitflow/internal/outbox/repository"
	outboxUseCase "github.com/allisson/exitflow/internal/outbox/usecase"
	talentRepository "github.com/allisson/exitflow/internal/talent/repository"
	userRepository "github.com/allisson/exitflow/internal/user/repository"
)

// TenantRegistry builds the repositories of a tenant on top of its connection pool.
// It serves both the offboarding workflow and the stage intent worker.
type TenantRegistry struct {
	connector database.TenantConnector
	dialect   database.Dialect

	mu    sync.Mutex
	repos map[string]*offboardingUseCase.Repositories
}

// NewTenantRegistry creates a TenantRegistry.
func NewTenantRegistry(connector database.TenantConnector, dialect database.Dialect) *TenantRegistry {
	return &TenantRegistry{
		connector: connector,
		dialect:   dialect,
		repos:     make(map[string]*offboardingUseCase.Repositories),
	}
}

// ForTenant implements offboardingUseCase.TenantRepositories.
func (r *TenantRegistry) ForTenant(ctx context.Context, tenantID string) (*offboardingUseCase.Repositories, error) {
	r.mu.Lock()
	repos, ok := r.repos[tenantID]
	r.mu.Unlock()
	if ok {
		return repos, nil
	}

	db, err := r.connector.Connection(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	repos = &offboardingUseCase.Repositories{
		TxManager:   database.NewTxManager(db),
		Requests:    offboardingRepository.NewOffboardingRequestRepository(db, r.dialect),
		Tasks:       offboardingRepository.NewTaskRepository(db, r.dialect),
		Assets:      offboardingRepository.NewAssetClearanceRepository(db, r.dialect),
		Handovers:   offboardingRepository.NewHandoverRepository(db, r.dialect),
		Settlements: offboardingRepository.NewSettlementRepository(db, r.dialect),
		Feedback:    offboardingRepository.NewFeedbackRepository(db, r.dialect),
		Employees:   employeeRepository.NewEmployeeRepository(db, r.dialect),
		Users:       userRepository.NewUserRepository(db, r.dialect),
		Candidates:  talentRepository.NewCandidateRepository(db, r.dialect),
		TalentPool:  talentRepository.NewTalentPoolRepository(db, r.dialect),
		Intents:     outboxRepository.NewOutboxEventRepository(db, r.dialect),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.repos[tenantID]; ok {
		return cached, nil
	}
	r.repos[tenantID] = repos
	return repos, nil
}

// Outbox implements outboxUseCase.TenantOutboxResolver.
func (r *TenantRegistry) Outbox(ctx context.Context, tenantID string) (*outboxUseCase.TenantOutbox, error) {
	db, err := r.connector.Connection(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &outboxUseCase.TenantOutbox{
		TxManager:  database.NewTxManager(db),
		Repository: outboxRepository.NewOutboxEventRepository(db, r.dialect),
	}, nil
}
