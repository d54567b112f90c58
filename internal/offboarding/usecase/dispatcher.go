package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/notification"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/service"
)

// StageOutcome is the verdict of a stage guard. A stage that does not proceed is skipped
// with SkipReason.
type StageOutcome struct {
	Proceed    bool
	SkipReason string
}

// proceed is the outcome of a guard that lets the stage run.
var proceed = StageOutcome{Proceed: true}

func skip(reason string) StageOutcome {
	return StageOutcome{SkipReason: reason}
}

// stageRun carries the state of one dispatch.
type stageRun struct {
	repos    *Repositories
	req      *domain.OffboardingRequest
	by       domain.Actor
	at       time.Time
	employee *employeeDomain.Employee
	approver *approver
}

type approver struct {
	id   uuid.UUID
	name string
}

// loadEmployee fetches the request's employee once per dispatch.
func (r *stageRun) loadEmployee(ctx context.Context) (*employeeDomain.Employee, error) {
	if r.employee != nil {
		return r.employee, nil
	}
	emp, err := r.repos.Employees.GetByID(ctx, r.req.EmployeeID)
	if err != nil {
		return nil, err
	}
	r.employee = emp
	return emp, nil
}

// stageAction describes what entering a stage means.
//   - guard decides whether the stage has what it needs to run or is skipped
//   - prepare changes the root aggregate and is saved with the transition
//   - setup creates satellite records after the transition is saved and must be idempotent
type stageAction struct {
	guard   func(ctx context.Context, run *stageRun) (StageOutcome, error)
	prepare func(ctx context.Context, run *stageRun) error
	setup   func(ctx context.Context, run *stageRun) ([]string, error)
}

// Dispatcher runs the per-stage actions.
type Dispatcher struct {
	actions   map[domain.Stage]stageAction
	generator service.TaskGenerator
	notifier  notification.Notifier
	effects   *Effects
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(
	generator service.TaskGenerator,
	notifier notification.Notifier,
	effects *Effects,
	logger *slog.Logger,
) *Dispatcher {
	d := &Dispatcher{
		generator: generator,
		notifier:  notifier,
		effects:   effects,
		logger:    logger,
	}
	d.actions = map[domain.Stage]stageAction{
		domain.StageManagerApproval: {
			guard:   d.managerAvailable,
			prepare: d.openApproval,
			setup:   d.notifyApprover,
		},
		domain.StageHRApproval: {
			guard:   d.roleHolderAvailable(authDomain.RoleHRManager),
			prepare: d.openApproval,
			setup:   d.notifyApprover,
		},
		domain.StageFinanceApproval: {
			guard:   d.roleHolderAvailable(authDomain.RoleFinanceManager),
			prepare: d.openApproval,
			setup:   d.notifyApprover,
		},
		domain.StageChecklistGeneration: {
			prepare: d.markTasksScheduled,
			setup:   d.generateTasks,
		},
		domain.StageDepartmentalClearance: {
			prepare: d.initClearances,
		},
		domain.StageAssetReturn: {
			prepare: d.linkAssetClearance,
			setup:   d.createAssetClearance,
		},
		domain.StageKnowledgeTransfer: {
			prepare: d.linkHandover,
			setup:   d.createHandover,
		},
		domain.StageFinalSettlement: {
			prepare: d.linkSettlement,
			setup:   d.createSettlement,
		},
		domain.StageExitInterview: {
			prepare: d.linkFeedback,
			setup:   d.createFeedback,
		},
		domain.StageClosure: {
			setup: d.notifyClosed,
		},
	}
	return d
}

// Enter runs the guards starting at the request's current stage, auto-advancing past every
// stage whose guard does not proceed, then prepares the stage the request settles on.
// It returns the stages entered by auto-advance.
func (d *Dispatcher) Enter(ctx context.Context, run *stageRun) ([]domain.Stage, error) {
	var skipped []domain.Stage

	for range domain.Stages {
		stage := run.req.CurrentStage
		action, ok := d.actions[stage]
		if !ok || action.guard == nil {
			break
		}

		outcome, err := action.guard(ctx, run)
		if err != nil {
			return nil, err
		}
		if outcome.Proceed {
			break
		}

		next, ok := stage.Forward()
		if !ok {
			break
		}
		if stage.IsApproval() {
			run.req.DecideApproval(stage, domain.DecisionSkipped, run.by, outcome.SkipReason, run.at)
		}
		reason := fmt.Sprintf("auto-advanced past %s: %s", stage, outcome.SkipReason)
		if err := run.req.Transition(next, run.by, reason, true, run.at); err != nil {
			return nil, err
		}
		if d.logger != nil {
			d.logger.InfoContext(ctx, "stage auto-advanced",
				slog.String("tenant_id", run.req.TenantID),
				slog.String("request_id", run.req.ID.String()),
				slog.String("stage", string(stage)),
				slog.String("next_stage", string(next)),
				slog.String("reason", outcome.SkipReason),
			)
		}
		skipped = append(skipped, next)
	}

	if action, ok := d.actions[run.req.CurrentStage]; ok && action.prepare != nil {
		if err := action.prepare(ctx, run); err != nil {
			return nil, err
		}
	}
	return skipped, nil
}

// Setup runs the post-save setup of stage. It is safe to call again for the same stage.
func (d *Dispatcher) Setup(ctx context.Context, run *stageRun, stage domain.Stage) ([]string, error) {
	action, ok := d.actions[stage]
	if !ok || action.setup == nil {
		return nil, nil
	}
	return action.setup(ctx, run)
}

// HasSetup reports whether stage creates anything after it is saved.
func (d *Dispatcher) HasSetup(stage domain.Stage) bool {
	action, ok := d.actions[stage]
	return ok && action.setup != nil
}

func (d *Dispatcher) managerAvailable(ctx context.Context, run *stageRun) (StageOutcome, error) {
	emp, err := run.loadEmployee(ctx)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return skip("employee record not found"), nil
		}
		return d.lookupFailed(ctx, run, "employee lookup", err), nil
	}
	if emp.ReportingManagerID == nil {
		return skip("employee has no reporting manager"), nil
	}

	manager, err := run.repos.Employees.GetByID(ctx, *emp.ReportingManagerID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return skip("reporting manager not found"), nil
		}
		return d.lookupFailed(ctx, run, "reporting manager lookup", err), nil
	}
	if !manager.IsActive || manager.IsExEmployee {
		return skip("reporting manager is inactive"), nil
	}

	run.approver = &approver{id: manager.ID, name: manager.FullName()}
	run.req.ReportingManagerID = &manager.ID
	return proceed, nil
}

func (d *Dispatcher) roleHolderAvailable(
	role authDomain.Role,
) func(ctx context.Context, run *stageRun) (StageOutcome, error) {
	return func(ctx context.Context, run *stageRun) (StageOutcome, error) {
		users, err := run.repos.Users.ListActiveByRole(ctx, role, 1)
		if err != nil {
			return d.lookupFailed(ctx, run, fmt.Sprintf("%s lookup", role), err), nil
		}
		if len(users) == 0 {
			return skip(fmt.Sprintf("no active %s available", role)), nil
		}
		run.approver = &approver{id: users[0].ID, name: users[0].Name}
		return proceed, nil
	}
}

// lookupFailed skips the stage when a directory read fails, so the transition is still saved.
func (d *Dispatcher) lookupFailed(ctx context.Context, run *stageRun, lookup string, err error) StageOutcome {
	if d.logger != nil {
		d.logger.WarnContext(ctx, "stage guard lookup failed",
			slog.String("tenant_id", run.req.TenantID),
			slog.String("request_id", run.req.ID.String()),
			slog.String("stage", string(run.req.CurrentStage)),
			slog.String("lookup", lookup),
			slog.Any("error", err),
		)
	}
	return skip(fmt.Sprintf("%s failed: %v", lookup, err))
}

func (d *Dispatcher) openApproval(_ context.Context, run *stageRun) error {
	var (
		id   *uuid.UUID
		name string
	)
	if run.approver != nil {
		approverID := run.approver.id
		id = &approverID
		name = run.approver.name
	}
	run.req.OpenApproval(run.req.CurrentStage, id, name, run.at)
	return nil
}

func (d *Dispatcher) notifyApprover(ctx context.Context, run *stageRun) ([]string, error) {
	var pending *domain.Approval
	for i := range run.req.Approvals {
		a := &run.req.Approvals[i]
		if a.Stage == run.req.CurrentStage && a.Decision == domain.DecisionPending {
			pending = a
		}
	}
	if pending == nil || pending.ApproverID == nil {
		return nil, nil
	}

	recipient := *pending.ApproverID
	message := fmt.Sprintf("Offboarding of %s awaits your %s", run.req.EmployeeName, pending.Stage)
	return d.notify(ctx, run, recipient, message), nil
}

func (d *Dispatcher) notifyClosed(ctx context.Context, run *stageRun) ([]string, error) {
	message := fmt.Sprintf("Offboarding of %s is closed", run.req.EmployeeName)
	return d.notify(ctx, run, run.req.EmployeeID, message), nil
}

func (d *Dispatcher) notify(ctx context.Context, run *stageRun, recipient uuid.UUID, message string) []string {
	if d.notifier == nil {
		return nil
	}
	meta := map[string]string{
		"tenant_id":  run.req.TenantID,
		"request_id": run.req.ID.String(),
		"stage":      string(run.req.CurrentStage),
	}
	w := d.effects.Run(ctx, "notification", func(ctx context.Context) error {
		return d.notifier.Notify(ctx, recipient, message, meta)
	}, slog.String("request_id", run.req.ID.String()), slog.String("stage", string(run.req.CurrentStage)))
	if w == "" {
		return nil
	}
	return []string{w}
}

func (d *Dispatcher) markTasksScheduled(_ context.Context, run *stageRun) error {
	if run.req.TasksGeneratedAt == nil {
		at := run.at
		run.req.TasksGeneratedAt = &at
	}
	return nil
}

func (d *Dispatcher) generateTasks(ctx context.Context, run *stageRun) ([]string, error) {
	existing, err := run.repos.Tasks.ListByRequest(ctx, run.req.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}
	tasks := d.generator.Generate(run.req.ID, run.req.EmployeeName, run.req.LastWorkingDay, run.at)
	if len(tasks) == 0 {
		return nil, nil
	}
	return nil, run.repos.Tasks.CreateBatch(ctx, tasks)
}

func (d *Dispatcher) initClearances(_ context.Context, run *stageRun) error {
	run.req.InitClearances(run.at)
	return nil
}

// linkID returns the existing satellite id or assigns a new one.
func linkID(current **uuid.UUID) uuid.UUID {
	if *current == nil {
		id := uuid.Must(uuid.NewV7())
		*current = &id
	}
	return **current
}

func (d *Dispatcher) linkAssetClearance(_ context.Context, run *stageRun) error {
	linkID(&run.req.AssetClearanceID)
	return nil
}

func (d *Dispatcher) createAssetClearance(ctx context.Context, run *stageRun) ([]string, error) {
	_, err := run.repos.Assets.GetByRequest(ctx, run.req.ID)
	if err == nil || !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	id := linkID(&run.req.AssetClearanceID)
	return nil, run.repos.Assets.Create(ctx, domain.NewAssetClearance(id, run.req.ID, run.at))
}

func (d *Dispatcher) linkHandover(_ context.Context, run *stageRun) error {
	linkID(&run.req.HandoverID)
	return nil
}

func (d *Dispatcher) createHandover(ctx context.Context, run *stageRun) ([]string, error) {
	_, err := run.repos.Handovers.GetByRequest(ctx, run.req.ID)
	if err == nil || !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	id := linkID(&run.req.HandoverID)
	return nil, run.repos.Handovers.Create(ctx, domain.NewHandoverDetail(id, run.req.ID, run.at))
}

func (d *Dispatcher) linkSettlement(_ context.Context, run *stageRun) error {
	linkID(&run.req.SettlementID)
	return nil
}

func (d *Dispatcher) createSettlement(ctx context.Context, run *stageRun) ([]string, error) {
	_, err := run.repos.Settlements.GetByRequest(ctx, run.req.ID)
	if err == nil || !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	emp, err := run.loadEmployee(ctx)
	if err != nil {
		return nil, err
	}
	var assets *domain.AssetClearance
	if run.req.AssetClearanceID != nil {
		assets, err = run.repos.Assets.GetByRequest(ctx, run.req.ID)
		if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	id := linkID(&run.req.SettlementID)
	return nil, run.repos.Settlements.Create(ctx, PrefillSettlement(id, run.req, emp, assets, run.at))
}

// settlementDayBase is the number of days a monthly amount is divided by for daily rates.
var settlementDayBase = decimal.NewFromInt(30)

// PrefillSettlement builds the calculated settlement of a request from the employee's salary,
// leave balance, asset recoveries and unserved notice.
func PrefillSettlement(
	id uuid.UUID,
	req *domain.OffboardingRequest,
	emp *employeeDomain.Employee,
	assets *domain.AssetClearance,
	at time.Time,
) *domain.FinalSettlement {
	s := domain.NewFinalSettlement(id, req.ID, emp.Salary.Currency, at)
	s.Earnings.Basic = emp.Salary.Basic
	s.Earnings.HRA = emp.Salary.HRA
	s.Earnings.FixedAllowances = emp.Salary.Allowances
	s.LeaveEncashment.Days = emp.LeaveBalance
	s.LeaveEncashment.DailyRate = emp.Salary.Basic.Div(settlementDayBase).Round(2)

	if assets != nil {
		if amount := assets.RecoveryAmount(); amount.IsPositive() {
			s.Deductions.Recoveries = append(s.Deductions.Recoveries, domain.NamedAmount{
				Name:   "asset_recovery",
				Amount: amount,
			})
		}
	}
	if n := req.NoticePeriod; !n.Waived && n.ShortfallDays > 0 {
		daily := emp.Salary.Gross().Div(settlementDayBase)
		s.Deductions.Recoveries = append(s.Deductions.Recoveries, domain.NamedAmount{
			Name:   "notice_shortfall",
			Amount: daily.Mul(decimal.NewFromInt(int64(n.ShortfallDays))).Round(2),
		})
	}

	s.Recompute()
	s.CalculationStatus = domain.CalculationCalculated
	return s
}

func (d *Dispatcher) linkFeedback(_ context.Context, run *stageRun) error {
	linkID(&run.req.FeedbackID)
	return nil
}

func (d *Dispatcher) createFeedback(ctx context.Context, run *stageRun) ([]string, error) {
	_, err := run.repos.Feedback.GetByRequest(ctx, run.req.ID)
	if err == nil || !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	id := linkID(&run.req.FeedbackID)
	return nil, run.repos.Feedback.Create(ctx, domain.NewExitFeedback(id, run.req.ID, run.at))
}
