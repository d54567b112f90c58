// Package usecase implements the offboarding workflow: the stage state machine, the stage
// action dispatcher and the identity migrator that runs at closure.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/database"
	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
	talentDomain "github.com/allisson/exitflow/internal/talent/domain"
	userDomain "github.com/allisson/exitflow/internal/user/domain"
)

// OffboardingRequestRepository defines the interface for offboarding request persistence.
type OffboardingRequestRepository interface {
	Create(ctx context.Context, req *domain.OffboardingRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OffboardingRequest, error)
	// FindActiveByEmployee returns the open request of an employee or domain.ErrRequestNotFound.
	FindActiveByEmployee(ctx context.Context, employeeID uuid.UUID) (*domain.OffboardingRequest, error)
	// Update saves req when its stored version still equals req.Version and bumps the version.
	// It returns domain.ErrStaleRequest otherwise.
	Update(ctx context.Context, req *domain.OffboardingRequest) error
	List(ctx context.Context, filter ListFilter) ([]*domain.OffboardingRequest, error)
}

// TaskRepository defines the interface for offboarding task persistence.
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []*domain.OffboardingTask) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.OffboardingTask, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*domain.OffboardingTask, error)
	Update(ctx context.Context, task *domain.OffboardingTask) error
}

// AssetClearanceRepository defines the interface for asset clearance persistence.
type AssetClearanceRepository interface {
	Create(ctx context.Context, clearance *domain.AssetClearance) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.AssetClearance, error)
	Update(ctx context.Context, clearance *domain.AssetClearance) error
}

// HandoverRepository defines the interface for handover persistence.
type HandoverRepository interface {
	Create(ctx context.Context, handover *domain.HandoverDetail) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.HandoverDetail, error)
	Update(ctx context.Context, handover *domain.HandoverDetail) error
}

// SettlementRepository defines the interface for final settlement persistence.
type SettlementRepository interface {
	Create(ctx context.Context, settlement *domain.FinalSettlement) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.FinalSettlement, error)
	Update(ctx context.Context, settlement *domain.FinalSettlement) error
}

// FeedbackRepository defines the interface for exit feedback persistence.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.ExitFeedback) error
	GetByRequest(ctx context.Context, requestID uuid.UUID) (*domain.ExitFeedback, error)
	Update(ctx context.Context, feedback *domain.ExitFeedback) error
}

// EmployeeRepository is the employee directory consumed by the workflow.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*employeeDomain.Employee, error)
	Update(ctx context.Context, e *employeeDomain.Employee) error
	// MarkTerminated updates only the termination fields of the employee row.
	MarkTerminated(ctx context.Context, id uuid.UUID, terminatedAt time.Time, reason string) error
}

// UserRepository is the user directory used to assign approvers.
type UserRepository interface {
	ListActiveByRole(ctx context.Context, role authDomain.Role, limit int) ([]*userDomain.User, error)
}

// CandidateRepository defines the interface for candidate persistence.
type CandidateRepository interface {
	Create(ctx context.Context, c *talentDomain.Candidate) error
	FindExEmployee(ctx context.Context, key talentDomain.ExEmployeeKey) (*talentDomain.Candidate, error)
	UpdateName(ctx context.Context, c *talentDomain.Candidate) error
}

// TalentPoolRepository defines the interface for talent pool persistence.
type TalentPoolRepository interface {
	Create(ctx context.Context, e *talentDomain.TalentPoolEntry) error
	FindExEmployee(ctx context.Context, key talentDomain.ExEmployeeKey) (*talentDomain.TalentPoolEntry, error)
}

// IntentRepository stores the stage intents written with every transition.
type IntentRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
	Update(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// Repositories bundles the repositories of one tenant database.
type Repositories struct {
	TxManager   database.TxManager
	Requests    OffboardingRequestRepository
	Tasks       TaskRepository
	Assets      AssetClearanceRepository
	Handovers   HandoverRepository
	Settlements SettlementRepository
	Feedback    FeedbackRepository
	Employees   EmployeeRepository
	Users       UserRepository
	Candidates  CandidateRepository
	TalentPool  TalentPoolRepository
	Intents     IntentRepository
}

// TenantRepositories resolves a tenant id to the repositories of its database.
type TenantRepositories interface {
	ForTenant(ctx context.Context, tenantID string) (*Repositories, error)
}

// ListFilter narrows a request listing.
type ListFilter struct {
	Status     domain.Status
	Stage      domain.Stage
	EmployeeID *uuid.UUID
	Offset     int
	Limit      int
}

// InitiateInput starts an offboarding.
type InitiateInput struct {
	EmployeeID     uuid.UUID
	Reason         domain.Reason
	ReasonDetails  string
	LastWorkingDay time.Time
	NoticePeriod   *NoticePeriodInput
}

// NoticePeriodInput holds the notice terms agreed at initiation.
type NoticePeriodInput struct {
	Days      int
	StartDate time.Time
	Waived    bool
}

// AdvanceInput moves a request. An empty TargetStage means the forward edge; a back-edge
// target rejects or returns the request.
type AdvanceInput struct {
	TargetStage domain.Stage
	Comment     string
}

// ClearanceInput records a department sign-off.
type ClearanceInput struct {
	Department domain.Department
	Cleared    bool
	Notes      string
}

// SettlementInput updates the final settlement. Nil fields are left unchanged; a non-nil
// Reimbursements slice replaces the claims.
type SettlementInput struct {
	Earnings       *domain.Earnings
	LeaveDays      *decimal.Decimal
	DailyRate      *decimal.Decimal
	Gratuity       *decimal.Decimal
	Reimbursements []domain.Reimbursement
	Deductions     *domain.Deductions
	Amount         *decimal.Decimal
	Status         *domain.CalculationStatus
}

// SettlementDecisionInput records one level of the settlement approval chain.
type SettlementDecisionInput struct {
	Level    string
	Decision domain.Decision
	Comment  string
}

// CloseOrCancelInput closes or cancels a request.
type CloseOrCancelInput struct {
	Action string
	Reason string
}

// Close or cancel actions.
const (
	ActionClose  = "close"
	ActionCancel = "cancel"
)

// TaskInput updates a task. Action is one of "complete", "reopen", "verify" or empty.
type TaskInput struct {
	ChecklistItemID *uuid.UUID
	Done            bool
	Action          string
	Notes           *string
}

// Task actions.
const (
	TaskActionComplete = "complete"
	TaskActionReopen   = "reopen"
	TaskActionVerify   = "verify"
)

// AssetItemInput adds or updates one asset clearance item. A nil ItemID adds a new item.
type AssetItemInput struct {
	List           domain.AssetList
	ItemID         *uuid.UUID
	Name           string
	Identifier     string
	Status         domain.ItemStatus
	Value          *decimal.Decimal
	RecoveryAmount *decimal.Decimal
	Remarks        string
}

// HandoverItemInput adds or updates one handover item. A nil ItemID adds a new item.
type HandoverItemInput struct {
	List        domain.HandoverList
	ItemID      *uuid.UUID
	Name        string
	Description string
	HandoverTo  *uuid.UUID
	Status      domain.HandoverStatus
	Notes       string
	SuccessorID *uuid.UUID
}

// FeedbackInput records the exit interview.
type FeedbackInput struct {
	PrimaryReason     string
	SecondaryReasons  []string
	SatisfactionScore *int
	Ratings           []domain.FeedbackRating
	Answers           []domain.FeedbackAnswer
	WouldRecommend    *bool
	WouldRejoin       *bool
	Confidential      bool
}

// Result is the aggregate returned by every workflow call, with its satellites and the
// derived progress. Warnings lists non-critical effects that failed.
type Result struct {
	Request  *domain.OffboardingRequest
	Records  domain.Records
	Progress domain.Progress
	Warnings []string
}

// OffboardingUseCase defines the interface for the offboarding workflow.
type OffboardingUseCase interface {
	Initiate(ctx context.Context, tenantID string, actor *authDomain.Actor, input InitiateInput) (*Result, error)
	Get(ctx context.Context, tenantID string, actor *authDomain.Actor, id uuid.UUID) (*Result, error)
	List(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		filter ListFilter,
	) ([]*domain.OffboardingRequest, error)
	GetLegacy(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
	) (*domain.LegacyOffboarding, error)
	Advance(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input AdvanceInput,
	) (*Result, error)
	SetClearance(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input ClearanceInput,
	) (*Result, error)
	UpdateSettlement(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input SettlementInput,
	) (*Result, error)
	DecideSettlement(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input SettlementDecisionInput,
	) (*Result, error)
	CloseOrCancel(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input CloseOrCancelInput,
	) (*Result, error)
	// Complete is the legacy "mark completed" entry point. It converges on the closure path.
	Complete(ctx context.Context, tenantID string, actor *authDomain.Actor, id uuid.UUID) (*Result, error)
	ListTasks(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
	) ([]*domain.OffboardingTask, error)
	UpdateTask(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		taskID uuid.UUID,
		input TaskInput,
	) (*Result, error)
	UpdateAssetItem(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input AssetItemInput,
	) (*Result, error)
	UpdateHandoverItem(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input HandoverItemInput,
	) (*Result, error)
	SubmitFeedback(
		ctx context.Context,
		tenantID string,
		actor *authDomain.Actor,
		id uuid.UUID,
		input FeedbackInput,
	) (*Result, error)
	// RetryClosure re-runs the identity migrator for an operator. It bypasses the guard.
	RetryClosure(ctx context.Context, tenantID string, id uuid.UUID) (*Result, error)
	// ResumeStage completes the setup recorded by a stage intent.
	ResumeStage(ctx context.Context, intent outboxDomain.StageIntent) error
}
