package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/service"
	talentDomain "github.com/allisson/exitflow/internal/talent/domain"
)

var errSnapshotMismatch = apperrors.New("employee snapshot checksum mismatch")

// MigrationOutcome reports what one identity migration run did.
type MigrationOutcome struct {
	AlreadyMigrated   bool
	EmployeeFlipped   bool
	UsedFallback      bool
	TalentPoolCreated bool
	CandidateCreated  bool
	CandidateRenamed  bool
	Warnings          []string
}

// IdentityMigrator turns the employee of a closing request into an ex-employee and seeds the
// re-hire records. Every step checks for work already done, so it can be re-run after a
// partial failure.
type IdentityMigrator struct {
	snapshots service.SnapshotBuilder
	effects   *Effects
	logger    *slog.Logger
}

// NewIdentityMigrator creates an IdentityMigrator.
func NewIdentityMigrator(snapshots service.SnapshotBuilder, effects *Effects, logger *slog.Logger) *IdentityMigrator {
	return &IdentityMigrator{
		snapshots: snapshots,
		effects:   effects,
		logger:    logger,
	}
}

// Migrate runs the migration for req and marks it closed. An error means the employee could
// not be flipped; req must then not be persisted.
func (m *IdentityMigrator) Migrate(
	ctx context.Context,
	repos *Repositories,
	req *domain.OffboardingRequest,
	at time.Time,
) (*MigrationOutcome, error) {
	emp, err := repos.Employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}

	outcome := &MigrationOutcome{}
	key := talentDomain.ExEmployeeKey{EmployeeID: emp.ID, Code: emp.Code, Email: emp.Email}

	if req.EmployeeSnapshot != nil {
		if w := m.effects.Run(ctx, "snapshot_verify", func(context.Context) error {
			return m.verifySnapshot(req.EmployeeSnapshot)
		}, slog.String("tenant_id", req.TenantID), slog.String("request_id", req.ID.String())); w != "" {
			outcome.Warnings = append(outcome.Warnings, w)
		}
	}

	if emp.IsExEmployee {
		if m.alreadySeeded(ctx, repos, key) {
			outcome.AlreadyMigrated = true
			req.MarkClosed(at)
			return outcome, nil
		}
	} else {
		if req.EmployeeSnapshot == nil {
			snapshot, err := m.snapshots.Build(emp, req, at)
			if err != nil {
				return nil, err
			}
			req.EmployeeSnapshot = snapshot
		}

		fallback, err := m.flipEmployee(ctx, repos, emp, req)
		if err != nil {
			return nil, err
		}
		outcome.EmployeeFlipped = true
		outcome.UsedFallback = fallback
	}

	attrs := []slog.Attr{
		slog.String("tenant_id", req.TenantID),
		slog.String("request_id", req.ID.String()),
		slog.String("employee_id", emp.ID.String()),
	}
	if w := m.effects.Run(ctx, "talent_pool_seed", func(ctx context.Context) error {
		created, err := m.ensureTalentPool(ctx, repos, emp, req, key, at)
		outcome.TalentPoolCreated = created
		return err
	}, attrs...); w != "" {
		outcome.Warnings = append(outcome.Warnings, w)
	}
	if w := m.effects.Run(ctx, "candidate_seed", func(ctx context.Context) error {
		created, renamed, err := m.ensureCandidate(ctx, repos, emp, req, key, at)
		outcome.CandidateCreated = created
		outcome.CandidateRenamed = renamed
		return err
	}, attrs...); w != "" {
		outcome.Warnings = append(outcome.Warnings, w)
	}

	req.MarkClosed(at)
	return outcome, nil
}

// verifySnapshot fails when a snapshot frozen by an earlier run no longer matches its checksum.
func (m *IdentityMigrator) verifySnapshot(snapshot *domain.EmployeeSnapshot) error {
	ok, err := m.snapshots.Verify(snapshot)
	if err != nil {
		return err
	}
	if !ok {
		return errSnapshotMismatch
	}
	return nil
}

// alreadySeeded reports whether both re-hire records exist. Lookup failures count as missing
// so the seeding steps run and report them.
func (m *IdentityMigrator) alreadySeeded(
	ctx context.Context,
	repos *Repositories,
	key talentDomain.ExEmployeeKey,
) bool {
	if _, err := repos.Candidates.FindExEmployee(ctx, key); err != nil {
		return false
	}
	if _, err := repos.TalentPool.FindExEmployee(ctx, key); err != nil {
		return false
	}
	return true
}

// flipEmployee saves the terminated employee. Records failing full validation are updated
// through the termination-only field update instead.
func (m *IdentityMigrator) flipEmployee(
	ctx context.Context,
	repos *Repositories,
	emp *employeeDomain.Employee,
	req *domain.OffboardingRequest,
) (bool, error) {
	reason := string(req.Reason)
	emp.MarkTerminated(req.LastWorkingDay, reason)

	err := emp.Validate()
	if err == nil {
		err = repos.Employees.Update(ctx, emp)
		if err == nil {
			return false, nil
		}
	}
	if !apperrors.Is(err, apperrors.ErrInvalidInput) {
		return false, err
	}

	if m.logger != nil {
		m.logger.WarnContext(ctx, "employee failed validation, using termination field update",
			slog.String("tenant_id", req.TenantID),
			slog.String("employee_id", emp.ID.String()),
			slog.Any("error", err),
		)
	}
	if err := repos.Employees.MarkTerminated(ctx, emp.ID, req.LastWorkingDay, reason); err != nil {
		return true, err
	}
	return true, nil
}

func (m *IdentityMigrator) ensureTalentPool(
	ctx context.Context,
	repos *Repositories,
	emp *employeeDomain.Employee,
	req *domain.OffboardingRequest,
	key talentDomain.ExEmployeeKey,
	at time.Time,
) (bool, error) {
	_, err := repos.TalentPool.FindExEmployee(ctx, key)
	if err == nil {
		return false, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	entry := &talentDomain.TalentPoolEntry{
		ID:             uuid.Must(uuid.NewV7()),
		ExEmployeeID:   emp.ID,
		ExEmployeeCode: emp.Code,
		Name:           emp.FullName(),
		Email:          talentDomain.NormalizeEmail(emp.Email),
		Category:       "alumni",
		RehireEligible: req.Reason.RehireEligible(),
		Tags:           talentTags(emp, req),
		Notes:          "seeded at offboarding closure",
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	if err := repos.TalentPool.Create(ctx, entry); err != nil {
		if apperrors.Is(err, talentDomain.ErrDuplicateExEmployee) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *IdentityMigrator) ensureCandidate(
	ctx context.Context,
	repos *Repositories,
	emp *employeeDomain.Employee,
	req *domain.OffboardingRequest,
	key talentDomain.ExEmployeeKey,
	at time.Time,
) (created bool, renamed bool, err error) {
	existing, err := repos.Candidates.FindExEmployee(ctx, key)
	if err == nil {
		if !existing.SyncName(emp.FirstName, emp.LastName) {
			return false, false, nil
		}
		existing.UpdatedAt = at
		if err := repos.Candidates.UpdateName(ctx, existing); err != nil {
			return false, false, err
		}
		return false, true, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return false, false, err
	}

	employeeID := emp.ID
	candidate := &talentDomain.Candidate{
		ID:              uuid.Must(uuid.NewV7()),
		FirstName:       emp.FirstName,
		LastName:        emp.LastName,
		Email:           talentDomain.NormalizeEmail(emp.Email),
		Phone:           emp.Phone,
		Source:          talentDomain.SourceExEmployee,
		Status:          "talent_pool",
		IsExEmployee:    true,
		ExEmployeeID:    &employeeID,
		ExEmployeeCode:  emp.Code,
		RehireEligible:  req.Reason.RehireEligible(),
		LastDesignation: emp.Designation,
		LastDepartment:  emp.Department,
		CreatedAt:       at,
		UpdatedAt:       at,
	}
	if err := repos.Candidates.Create(ctx, candidate); err != nil {
		if apperrors.Is(err, talentDomain.ErrDuplicateExEmployee) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, false, nil
}

func talentTags(emp *employeeDomain.Employee, req *domain.OffboardingRequest) []string {
	tags := []string{"ex_employee", string(req.Reason)}
	if emp.Department != "" {
		tags = append(tags, emp.Department)
	}
	if emp.Designation != "" {
		tags = append(tags, emp.Designation)
	}
	return tags
}
