package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/metrics"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/service"
	outboxDomain "github.com/allisson/exitflow/internal/outbox/domain"
	"github.com/allisson/exitflow/internal/tracing"
)

// maxRoundOff is the largest difference accepted between a requested settlement amount and
// the computed net payable.
var maxRoundOff = decimal.NewFromInt(1)

// offboardingUseCase implements the OffboardingUseCase interface.
type offboardingUseCase struct {
	tenants    TenantRepositories
	guard      service.Guard
	dispatcher *Dispatcher
	migrator   *IdentityMigrator
	effects    *Effects
	locks      *KeyedLocker
	metrics    metrics.BusinessMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewOffboardingUseCase creates a new OffboardingUseCase.
func NewOffboardingUseCase(
	tenants TenantRepositories,
	guard service.Guard,
	dispatcher *Dispatcher,
	migrator *IdentityMigrator,
	effects *Effects,
	m metrics.BusinessMetrics,
	logger *slog.Logger,
) OffboardingUseCase {
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}
	return &offboardingUseCase{
		tenants:    tenants,
		guard:      guard,
		dispatcher: dispatcher,
		migrator:   migrator,
		effects:    effects,
		locks:      NewKeyedLocker(),
		metrics:    m,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func actorOf(a *authDomain.Actor) domain.Actor {
	if a == nil {
		return domain.Actor{Name: "system"}
	}
	return domain.Actor{ID: a.UserID, Name: a.Name}
}

func (u *offboardingUseCase) lock(tenantID string, id uuid.UUID) func() {
	return u.locks.Lock(tenantID + "/" + id.String())
}

// load resolves the tenant and fetches the request.
func (u *offboardingUseCase) load(
	ctx context.Context,
	tenantID string,
	id uuid.UUID,
) (*Repositories, *domain.OffboardingRequest, error) {
	repos, err := u.tenants.ForTenant(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}
	req, err := repos.Requests.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return repos, req, nil
}

// Initiate implements OffboardingUseCase. The new request is submitted straight away, so it
// leaves initiation as the initiator.
func (u *offboardingUseCase) Initiate(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	input InitiateInput,
) (*Result, error) {
	if !input.Reason.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown offboarding reason %q", input.Reason)
	}
	if input.LastWorkingDay.IsZero() {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "last working day is required")
	}

	repos, err := u.tenants.ForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	emp, err := repos.Employees.GetByID(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !emp.IsActive || emp.IsExEmployee || emp.Status == employeeDomain.StatusTerminated {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "employee is not active")
	}

	unlock := u.locks.Lock(tenantID + "/employee/" + emp.ID.String())
	defer unlock()

	at := u.now()
	by := actorOf(actor)
	req := domain.NewOffboardingRequest(
		uuid.Must(uuid.NewV7()), tenantID, emp.ID, input.Reason, input.LastWorkingDay, by, at,
	)
	req.EmployeeCode = emp.Code
	req.EmployeeName = emp.FullName()
	req.Department = emp.Department
	req.ReportingManagerID = emp.ReportingManagerID
	req.ReasonDetails = input.ReasonDetails
	if input.NoticePeriod != nil {
		req.NoticePeriod = domain.NoticePeriod{
			Days:      input.NoticePeriod.Days,
			StartDate: input.NoticePeriod.StartDate,
			Waived:    input.NoticePeriod.Waived,
		}
		req.NoticePeriod.Recompute(req.LastWorkingDay)
	}

	if err := u.guard.CanPerformAction(actor, service.ActionInitiate, req, ""); err != nil {
		return nil, err
	}

	if _, err := repos.Requests.FindActiveByEmployee(ctx, emp.ID); err == nil {
		return nil, domain.ErrActiveRequestExists
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return u.moveTo(ctx, repos, req, by, domain.StageManagerApproval, "submitted for approval", true)
}

// Get implements OffboardingUseCase.
func (u *offboardingUseCase) Get(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*Result, error) {
	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionView, req, ""); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

// List implements OffboardingUseCase.
func (u *offboardingUseCase) List(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	filter ListFilter,
) ([]*domain.OffboardingRequest, error) {
	if err := u.guard.CanPerformAction(actor, service.ActionView, nil, ""); err != nil {
		return nil, err
	}
	repos, err := u.tenants.ForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return repos.Requests.List(ctx, filter)
}

// GetLegacy implements OffboardingUseCase.
func (u *offboardingUseCase) GetLegacy(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*domain.LegacyOffboarding, error) {
	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionView, req, ""); err != nil {
		return nil, err
	}

	settlement, err := repos.Settlements.GetByRequest(ctx, req.ID)
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	view := domain.ToLegacy(req, settlement)
	return &view, nil
}

// Advance implements OffboardingUseCase.
func (u *offboardingUseCase) Advance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input AdvanceInput,
) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionAdvance, req, ""); err != nil {
		return nil, err
	}

	target, err := domain.ResolveTarget(req.CurrentStage, input.TargetStage)
	if err != nil {
		return nil, err
	}
	return u.moveTo(ctx, repos, req, actorOf(actor), target, input.Comment, false)
}

// moveTo moves req along one edge to target, runs the stage dispatch and saves the request
// together with one stage intent per entered stage. Satellite setup runs after the save; when
// it fails the intent stays pending for the replay worker.
func (u *offboardingUseCase) moveTo(
	ctx context.Context,
	repos *Repositories,
	req *domain.OffboardingRequest,
	by domain.Actor,
	target domain.Stage,
	comment string,
	isNew bool,
) (*Result, error) {
	from := req.CurrentStage
	ctx, span := tracing.Tracer().Start(ctx, "offboarding.move", trace.WithAttributes(
		attribute.String("tenant.id", req.TenantID),
		attribute.String("offboarding.request_id", req.ID.String()),
		attribute.String("offboarding.from", string(from)),
		attribute.String("offboarding.to", string(target)),
	))
	defer span.End()

	result, err := u.doMove(ctx, repos, req, by, target, comment, isNew)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (u *offboardingUseCase) doMove(
	ctx context.Context,
	repos *Repositories,
	req *domain.OffboardingRequest,
	by domain.Actor,
	target domain.Stage,
	comment string,
	isNew bool,
) (*Result, error) {
	from := req.CurrentStage
	if req.Status == domain.StatusCancelled {
		return nil, domain.ErrRequestCancelled
	}
	if !domain.CanTransition(from, target) {
		return nil, &domain.InvalidTransitionError{From: from, To: target, Reason: "target is not a valid next stage"}
	}

	at := u.now()
	if from.IsApproval() {
		decision := domain.DecisionApproved
		if domain.IsBackEdge(from, target) {
			decision = domain.DecisionReturned
			if target == domain.StageInitiation {
				decision = domain.DecisionRejected
			}
		}
		req.DecideApproval(from, decision, by, comment, at)
	}

	reason := comment
	if reason == "" {
		reason = fmt.Sprintf("moved from %s to %s", from, target)
	}
	if err := req.Transition(target, by, reason, false, at); err != nil {
		return nil, err
	}

	var warnings []string
	if target == domain.StageClosure {
		outcome, err := u.migrator.Migrate(ctx, repos, req, at)
		if err != nil {
			if u.logger != nil {
				u.logger.ErrorContext(ctx, "identity migration failed, closure aborted",
					slog.String("tenant_id", req.TenantID),
					slog.String("request_id", req.ID.String()),
					slog.Any("error", err),
				)
			}
			return nil, err
		}
		warnings = append(warnings, outcome.Warnings...)
	}

	run := &stageRun{repos: repos, req: req, by: by, at: at}
	skipped, err := u.dispatcher.Enter(ctx, run)
	if err != nil {
		return nil, err
	}

	entered := append([]domain.Stage{target}, skipped...)
	intents := make([]*outboxDomain.OutboxEvent, 0, len(entered))
	for _, stage := range entered {
		intent, err := outboxDomain.NewStageIntentEvent(uuid.Must(uuid.NewV7()), outboxDomain.StageIntent{
			TenantID:  req.TenantID,
			RequestID: req.ID,
			Stage:     string(stage),
			ActorID:   by.ID,
		}, at)
		if err != nil {
			return nil, err
		}
		intents = append(intents, intent)
	}

	err = repos.TxManager.WithTx(ctx, func(ctx context.Context) error {
		if isNew {
			if err := repos.Requests.Create(ctx, req); err != nil {
				return err
			}
		} else if err := repos.Requests.Update(ctx, req); err != nil {
			return err
		}
		for _, intent := range intents {
			if err := repos.Intents.Create(ctx, intent); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	kind := metrics.TransitionManual
	if domain.IsBackEdge(from, target) {
		kind = metrics.TransitionReturn
	}
	u.metrics.RecordStageTransition(ctx, string(from), string(target), kind)
	prev := target
	for _, stage := range skipped {
		u.metrics.RecordStageTransition(ctx, string(prev), string(stage), metrics.TransitionAutoAdvance)
		prev = stage
	}

	settled := req.CurrentStage
	setupWarnings, setupErr := u.dispatcher.Setup(ctx, run, settled)
	warnings = append(warnings, setupWarnings...)
	if setupErr != nil {
		if u.logger != nil {
			u.logger.ErrorContext(ctx, "stage setup failed, left for replay",
				slog.String("tenant_id", req.TenantID),
				slog.String("request_id", req.ID.String()),
				slog.String("stage", string(settled)),
				slog.Any("error", setupErr),
			)
		}
		warnings = append(warnings, fmt.Sprintf("stage setup pending: %v", setupErr))
	}

	for i, intent := range intents {
		if setupErr != nil && i == len(intents)-1 {
			continue
		}
		intent.MarkProcessed(u.now())
		if w := u.effects.Run(ctx, "intent_ack", func(ctx context.Context) error {
			return repos.Intents.Update(ctx, intent)
		}, slog.String("request_id", req.ID.String())); w != "" {
			warnings = append(warnings, w)
		}
	}

	return u.result(ctx, repos, req, warnings)
}

// SetClearance implements OffboardingUseCase. Clearing a department also verifies its tasks.
func (u *offboardingUseCase) SetClearance(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input ClearanceInput,
) (*Result, error) {
	if !input.Department.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown department %q", input.Department)
	}

	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionClearDepartment, req, input.Department); err != nil {
		return nil, err
	}
	if req.CurrentStage.Index() < domain.StageDepartmentalClearance.Index() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput,
			"department clearance opens at %s", domain.StageDepartmentalClearance)
	}

	at := u.now()
	by := actorOf(actor)
	req.SetClearance(input.Department, input.Cleared, input.Notes, by, at)

	var verified []*domain.OffboardingTask
	if input.Cleared {
		tasks, err := repos.Tasks.ListByRequest(ctx, req.ID)
		if err != nil {
			return nil, err
		}
		for _, task := range tasks {
			if task.Department == input.Department && !task.IsVerified {
				task.Verify(by.ID, at)
				verified = append(verified, task)
			}
		}
	}

	err = repos.TxManager.WithTx(ctx, func(ctx context.Context) error {
		if err := repos.Requests.Update(ctx, req); err != nil {
			return err
		}
		for _, task := range verified {
			if err := repos.Tasks.Update(ctx, task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return u.result(ctx, repos, req, nil)
}

// UpdateSettlement implements OffboardingUseCase.
func (u *offboardingUseCase) UpdateSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input SettlementInput,
) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.StatusCancelled {
		return nil, domain.ErrRequestCancelled
	}
	if err := u.guard.CanPerformAction(actor, service.ActionUpdateSettlement, req, ""); err != nil {
		return nil, err
	}

	settlement, err := repos.Settlements.GetByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	at := u.now()
	figures := input.Earnings != nil || input.LeaveDays != nil || input.DailyRate != nil ||
		input.Gratuity != nil || input.Reimbursements != nil || input.Deductions != nil || input.Amount != nil
	if figures {
		if settlement.Locked() {
			return nil, domain.ErrSettlementLocked
		}
		if err := applySettlementFigures(settlement, input); err != nil {
			return nil, err
		}
		reopenSettlementApprovals(settlement)
	}

	if input.Status != nil {
		if err := settlement.SetCalculationStatus(*input.Status, at); err != nil {
			return nil, err
		}
	} else if figures && settlement.CalculationStatus == domain.CalculationDraft {
		settlement.CalculationStatus = domain.CalculationCalculated
	}
	settlement.UpdatedAt = at

	if err := repos.Settlements.Update(ctx, settlement); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

func applySettlementFigures(s *domain.FinalSettlement, input SettlementInput) error {
	for _, v := range []*decimal.Decimal{input.LeaveDays, input.DailyRate, input.Gratuity} {
		if v != nil && v.IsNegative() {
			return apperrors.Wrap(apperrors.ErrInvalidInput, "settlement amounts must not be negative")
		}
	}

	if input.Earnings != nil {
		s.Earnings = *input.Earnings
	}
	if input.LeaveDays != nil {
		s.LeaveEncashment.Days = *input.LeaveDays
	}
	if input.DailyRate != nil {
		s.LeaveEncashment.DailyRate = *input.DailyRate
	}
	if input.Gratuity != nil {
		s.Gratuity = *input.Gratuity
	}
	if input.Reimbursements != nil {
		s.Reimbursements = input.Reimbursements
	}
	if input.Deductions != nil {
		s.Deductions = *input.Deductions
	}
	s.Recompute()

	if input.Amount != nil {
		diff := input.Amount.Sub(s.Summary.NetPayable)
		if diff.Abs().GreaterThan(maxRoundOff) {
			return apperrors.Wrapf(apperrors.ErrInvalidInput,
				"amount %s differs from net payable %s by more than %s",
				input.Amount.String(), s.Summary.NetPayable.String(), maxRoundOff.String())
		}
		s.Summary.RoundOff = diff
		s.Recompute()
	}
	return nil
}

// reopenSettlementApprovals resets every decided level once the figures change.
func reopenSettlementApprovals(s *domain.FinalSettlement) {
	for i := range s.Approvals {
		s.Approvals[i] = domain.SettlementApproval{Level: s.Approvals[i].Level, Decision: domain.DecisionPending}
	}
	s.Recompute()
	if s.CalculationStatus == domain.CalculationPendingApproval {
		s.CalculationStatus = domain.CalculationCalculated
	}
}

// DecideSettlement implements OffboardingUseCase.
func (u *offboardingUseCase) DecideSettlement(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input SettlementDecisionInput,
) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if req.Status == domain.StatusCancelled {
		return nil, domain.ErrRequestCancelled
	}
	if err := u.guard.CanDecideSettlement(actor, req, input.Level); err != nil {
		return nil, err
	}

	settlement, err := repos.Settlements.GetByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	at := u.now()
	if err := settlement.Decide(input.Level, input.Decision, actorOf(actor).ID, input.Comment, at); err != nil {
		return nil, err
	}
	if settlement.CalculationStatus == domain.CalculationDraft ||
		settlement.CalculationStatus == domain.CalculationCalculated {
		settlement.CalculationStatus = domain.CalculationPendingApproval
	}

	if err := repos.Settlements.Update(ctx, settlement); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

// CloseOrCancel implements OffboardingUseCase.
func (u *offboardingUseCase) CloseOrCancel(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input CloseOrCancelInput,
) (*Result, error) {
	if input.Action != ActionClose && input.Action != ActionCancel {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown action %q", input.Action)
	}

	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if input.Action == ActionClose {
		if err := u.guard.CanPerformAction(actor, service.ActionClose, req, ""); err != nil {
			return nil, err
		}
		return u.close(ctx, repos, req, actorOf(actor), input.Reason)
	}

	if err := u.guard.CanPerformAction(actor, service.ActionCancel, req, ""); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = "offboarding cancelled"
	}

	from := req.CurrentStage
	by := actorOf(actor)
	if err := req.Cancel(by, reason, u.now()); err != nil {
		return nil, err
	}
	if err := repos.Requests.Update(ctx, req); err != nil {
		return nil, err
	}
	u.metrics.RecordStageTransition(ctx, string(from), string(domain.StatusCancelled), metrics.TransitionCancel)

	run := &stageRun{repos: repos, req: req, by: by, at: u.now()}
	warnings := u.dispatcher.notify(ctx, run, req.EmployeeID,
		fmt.Sprintf("Offboarding of %s was cancelled: %s", req.EmployeeName, reason))
	return u.result(ctx, repos, req, warnings)
}

// Complete implements OffboardingUseCase.
func (u *offboardingUseCase) Complete(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionComplete, req, ""); err != nil {
		return nil, err
	}
	return u.close(ctx, repos, req, actorOf(actor), "marked completed")
}

// RetryClosure implements OffboardingUseCase.
func (u *offboardingUseCase) RetryClosure(ctx context.Context, tenantID string, id uuid.UUID) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return u.close(ctx, repos, req, domain.Actor{Name: "operator"}, "closure retried by operator")
}

// close is the single closure path. A request at exit_interview moves to closure; a request
// already at closure re-runs the identity migrator, which resumes whatever is left.
func (u *offboardingUseCase) close(
	ctx context.Context,
	repos *Repositories,
	req *domain.OffboardingRequest,
	by domain.Actor,
	reason string,
) (*Result, error) {
	if req.Status == domain.StatusCancelled {
		return nil, domain.ErrRequestCancelled
	}

	switch req.CurrentStage {
	case domain.StageExitInterview:
		return u.moveTo(ctx, repos, req, by, domain.StageClosure, reason, false)

	case domain.StageClosure:
		ctx, span := tracing.Tracer().Start(ctx, "offboarding.migrate", trace.WithAttributes(
			attribute.String("tenant.id", req.TenantID),
			attribute.String("offboarding.request_id", req.ID.String()),
		))
		defer span.End()

		outcome, err := u.migrator.Migrate(ctx, repos, req, u.now())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := repos.Requests.Update(ctx, req); err != nil {
			return nil, err
		}
		return u.result(ctx, repos, req, outcome.Warnings)
	}

	return nil, &domain.InvalidTransitionError{
		From:   req.CurrentStage,
		To:     domain.StageClosure,
		Reason: "closure is only reachable from exit_interview",
	}
}

// ListTasks implements OffboardingUseCase.
func (u *offboardingUseCase) ListTasks(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
) ([]*domain.OffboardingTask, error) {
	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionView, req, ""); err != nil {
		return nil, err
	}
	return repos.Tasks.ListByRequest(ctx, req.ID)
}

// UpdateTask implements OffboardingUseCase.
func (u *offboardingUseCase) UpdateTask(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	taskID uuid.UUID,
	input TaskInput,
) (*Result, error) {
	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}

	task, err := repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.RequestID != req.ID {
		return nil, domain.ErrTaskNotFound
	}
	if err := u.guard.CanPerformAction(actor, service.ActionUpdateTask, req, task.Department); err != nil {
		return nil, err
	}

	at := u.now()
	by := actorOf(actor)
	if input.ChecklistItemID != nil {
		if err := task.SetChecklistItem(*input.ChecklistItemID, input.Done, by.ID, at); err != nil {
			return nil, err
		}
	}
	switch input.Action {
	case "":
	case TaskActionComplete:
		task.Complete(by.ID, at)
	case TaskActionReopen:
		task.Reopen(at)
	case TaskActionVerify:
		task.Verify(by.ID, at)
	default:
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown task action %q", input.Action)
	}
	if input.Notes != nil {
		task.Notes = *input.Notes
	}
	task.UpdatedAt = at
	task.Recompute()

	if err := repos.Tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

// UpdateAssetItem implements OffboardingUseCase.
func (u *offboardingUseCase) UpdateAssetItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input AssetItemInput,
) (*Result, error) {
	if !input.List.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown asset list %q", input.List)
	}

	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionUpdateAssets, req, input.List.Department()); err != nil {
		return nil, err
	}

	clearance, err := repos.Assets.GetByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	item, err := assetItemFor(clearance, input)
	if err != nil {
		return nil, err
	}

	at := u.now()
	by := actorOf(actor).ID
	item.UpdatedBy = &by
	item.UpdatedAt = at
	clearance.Upsert(input.List, item)
	clearance.UpdatedAt = at
	clearance.Recompute()

	if err := repos.Assets.Update(ctx, clearance); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

func assetItemFor(clearance *domain.AssetClearance, input AssetItemInput) (*domain.AssetItem, error) {
	var item domain.AssetItem
	if input.ItemID != nil {
		existing := clearance.Item(input.List, *input.ItemID)
		if existing == nil {
			return nil, domain.ErrItemNotFound
		}
		item = *existing
	} else {
		if strings.TrimSpace(input.Name) == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "item name is required")
		}
		item = domain.AssetItem{ID: uuid.Must(uuid.NewV7()), Status: input.List.InitialStatus()}
	}

	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Identifier != "" {
		item.Identifier = input.Identifier
	}
	if input.Remarks != "" {
		item.Remarks = input.Remarks
	}
	if input.Status != "" {
		if !input.List.AllowsStatus(input.Status) {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput,
				"status %q is not valid for %s", input.Status, input.List)
		}
		item.Status = input.Status
	}
	for _, v := range []*decimal.Decimal{input.Value, input.RecoveryAmount} {
		if v != nil && v.IsNegative() {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "amounts must not be negative")
		}
	}
	if input.Value != nil {
		item.Value = *input.Value
	}
	if input.RecoveryAmount != nil {
		item.RecoveryAmount = *input.RecoveryAmount
	}
	return &item, nil
}

// UpdateHandoverItem implements OffboardingUseCase.
func (u *offboardingUseCase) UpdateHandoverItem(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input HandoverItemInput,
) (*Result, error) {
	if !input.List.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown handover list %q", input.List)
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown handover status %q", input.Status)
	}

	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionUpdateHandover, req, ""); err != nil {
		return nil, err
	}

	handover, err := repos.Handovers.GetByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var item domain.HandoverItem
	if input.ItemID != nil {
		existing := handover.Item(input.List, *input.ItemID)
		if existing == nil {
			return nil, domain.ErrItemNotFound
		}
		item = *existing
	} else {
		if strings.TrimSpace(input.Name) == "" {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "item name is required")
		}
		item = domain.HandoverItem{ID: uuid.Must(uuid.NewV7()), Status: domain.HandoverNotStarted}
	}
	if input.Name != "" {
		item.Name = input.Name
	}
	if input.Description != "" {
		item.Description = input.Description
	}
	if input.Notes != "" {
		item.Notes = input.Notes
	}
	if input.HandoverTo != nil {
		item.HandoverTo = input.HandoverTo
	}
	if input.Status != "" {
		item.Status = input.Status
	}

	at := u.now()
	item.UpdatedAt = at
	if input.SuccessorID != nil {
		handover.SuccessorID = input.SuccessorID
	}
	handover.Upsert(input.List, &item)
	handover.UpdatedAt = at
	handover.Recompute()

	if err := repos.Handovers.Update(ctx, handover); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

// SubmitFeedback implements OffboardingUseCase.
func (u *offboardingUseCase) SubmitFeedback(
	ctx context.Context,
	tenantID string,
	actor *authDomain.Actor,
	id uuid.UUID,
	input FeedbackInput,
) (*Result, error) {
	if s := input.SatisfactionScore; s != nil && (*s < 1 || *s > 10) {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "satisfaction score must be between 1 and 10")
	}
	for _, r := range input.Ratings {
		if r.Score < 1 || r.Score > 5 {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "rating %q must be between 1 and 5", r.Category)
		}
	}

	unlock := u.lock(tenantID, id)
	defer unlock()

	repos, req, err := u.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := req.EnsureOpen(); err != nil {
		return nil, err
	}
	if err := u.guard.CanPerformAction(actor, service.ActionSubmitFeedback, req, ""); err != nil {
		return nil, err
	}

	feedback, err := repos.Feedback.GetByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	at := u.now()
	by := actorOf(actor).ID
	feedback.PrimaryReason = input.PrimaryReason
	feedback.SecondaryReasons = input.SecondaryReasons
	feedback.SatisfactionScore = input.SatisfactionScore
	feedback.Ratings = input.Ratings
	feedback.Answers = input.Answers
	feedback.WouldRecommend = input.WouldRecommend
	feedback.WouldRejoin = input.WouldRejoin
	feedback.Confidential = input.Confidential
	feedback.ConductedBy = &by
	feedback.ConductedAt = &at
	feedback.UpdatedAt = at
	feedback.Recompute()

	if err := repos.Feedback.Update(ctx, feedback); err != nil {
		return nil, err
	}
	return u.result(ctx, repos, req, nil)
}

// ResumeStage implements OffboardingUseCase. Approval and closure setups only run while the
// request still sits at that stage.
func (u *offboardingUseCase) ResumeStage(ctx context.Context, intent outboxDomain.StageIntent) error {
	stage := domain.Stage(intent.Stage)
	if !stage.Valid() {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "unknown stage %q", intent.Stage)
	}
	if !u.dispatcher.HasSetup(stage) {
		return nil
	}

	unlock := u.lock(intent.TenantID, intent.RequestID)
	defer unlock()

	repos, req, err := u.load(ctx, intent.TenantID, intent.RequestID)
	if err != nil {
		return err
	}
	if req.Status == domain.StatusCancelled {
		return nil
	}
	if (stage.IsApproval() || stage == domain.StageClosure) && req.CurrentStage != stage {
		return nil
	}

	run := &stageRun{
		repos: repos,
		req:   req,
		by:    domain.Actor{ID: intent.ActorID, Name: "system"},
		at:    u.now(),
	}
	warnings, err := u.dispatcher.Setup(ctx, run, stage)
	if err != nil {
		return err
	}
	if u.logger != nil {
		u.logger.InfoContext(ctx, "stage setup replayed",
			slog.String("tenant_id", intent.TenantID),
			slog.String("request_id", intent.RequestID.String()),
			slog.String("stage", intent.Stage),
			slog.Int("warnings", len(warnings)),
		)
	}
	return nil
}

// result loads the satellites of req and computes its progress.
func (u *offboardingUseCase) result(
	ctx context.Context,
	repos *Repositories,
	req *domain.OffboardingRequest,
	warnings []string,
) (*Result, error) {
	records, err := loadRecords(ctx, repos, req)
	if err != nil {
		return nil, err
	}
	progress := domain.ComputeProgress(req, records)
	if !req.IsCompleted {
		req.CompletionPercentage = progress.OverallPercentage
	}
	return &Result{
		Request:  req,
		Records:  records,
		Progress: progress,
		Warnings: warnings,
	}, nil
}

func loadRecords(ctx context.Context, repos *Repositories, req *domain.OffboardingRequest) (domain.Records, error) {
	var (
		records domain.Records
		err     error
	)

	if records.Tasks, err = repos.Tasks.ListByRequest(ctx, req.ID); err != nil {
		return records, err
	}
	if records.Assets, err = optional(repos.Assets.GetByRequest(ctx, req.ID)); err != nil {
		return records, err
	}
	if records.Handover, err = optional(repos.Handovers.GetByRequest(ctx, req.ID)); err != nil {
		return records, err
	}
	if records.Settlement, err = optional(repos.Settlements.GetByRequest(ctx, req.ID)); err != nil {
		return records, err
	}
	if records.Feedback, err = optional(repos.Feedback.GetByRequest(ctx, req.ID)); err != nil {
		return records, err
	}
	return records, nil
}

// optional turns a not found error into a nil record.
func optional[T any](v *T, err error) (*T, error) {
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}
