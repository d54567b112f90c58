package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/service"
	talentDomain "github.com/allisson/exitflow/internal/talent/domain"
)

func newTestMigrator() *IdentityMigrator {
	return NewIdentityMigrator(service.NewSnapshotBuilder(), NewEffects(nil, nil), nil)
}

func closingRequest(employeeID uuid.UUID) *domain.OffboardingRequest {
	return domain.NewOffboardingRequest(
		uuid.Must(uuid.NewV7()),
		testTenant,
		employeeID,
		domain.ReasonResignation,
		testLastWorkingDay,
		domain.Actor{ID: uuid.Must(uuid.NewV7()), Name: "Hank"},
		testNow,
	)
}

func TestIdentityMigrator_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("runs once", func(t *testing.T) {
		tenant := newMemoryTenant()
		emp := newEmployee("EMP-0042", "Jane", "Doe")
		tenant.addEmployee(emp)
		repos := tenant.repositories()
		migrator := newTestMigrator()

		req := closingRequest(emp.ID)
		first, err := migrator.Migrate(ctx, repos, req, testNow)
		require.NoError(t, err)
		assert.True(t, first.EmployeeFlipped)
		assert.False(t, first.UsedFallback)
		assert.True(t, first.TalentPoolCreated)
		assert.True(t, first.CandidateCreated)
		assert.Empty(t, first.Warnings)
		assert.True(t, req.IsCompleted)
		require.NotNil(t, req.EmployeeSnapshot)

		ok, err := service.NewSnapshotBuilder().Verify(req.EmployeeSnapshot)
		require.NoError(t, err)
		assert.True(t, ok)

		second, err := migrator.Migrate(ctx, repos, req, testNow)
		require.NoError(t, err)
		assert.True(t, second.AlreadyMigrated)
		assert.False(t, second.EmployeeFlipped)
		assert.Empty(t, second.Warnings)

		assert.Equal(t, 1, tenant.employeeUpdates)
		assert.Len(t, tenant.candidates, 1)
		assert.Len(t, tenant.pool, 1)

		candidate := tenant.candidates[0]
		assert.Equal(t, talentDomain.SourceExEmployee, candidate.Source)
		assert.True(t, candidate.IsExEmployee)
		assert.True(t, candidate.RehireEligible)
		assert.Equal(t, "jane@acme.test", candidate.Email)
		assert.Contains(t, tenant.pool[0].Tags, "resignation")
	})

	t.Run("retry warns about a modified snapshot", func(t *testing.T) {
		tenant := newMemoryTenant()
		emp := newEmployee("EMP-0042", "Jane", "Doe")
		tenant.addEmployee(emp)
		migrator := newTestMigrator()

		req := closingRequest(emp.ID)
		_, err := migrator.Migrate(ctx, tenant.repositories(), req, testNow)
		require.NoError(t, err)
		req.EmployeeSnapshot.Designation = "Principal Engineer"

		outcome, err := migrator.Migrate(ctx, tenant.repositories(), req, testNow)
		require.NoError(t, err)
		assert.True(t, outcome.AlreadyMigrated)
		assert.Equal(t, []string{"snapshot_verify: employee snapshot checksum mismatch"}, outcome.Warnings)
		assert.Equal(t, "Principal Engineer", req.EmployeeSnapshot.Designation)
	})

	t.Run("invalid legacy record uses the termination update", func(t *testing.T) {
		tenant := newMemoryTenant()
		emp := newEmployee("EMP-0042", "Jane", "Doe")
		emp.Email = "not-an-email"
		tenant.addEmployee(emp)

		outcome, err := newTestMigrator().Migrate(ctx, tenant.repositories(), closingRequest(emp.ID), testNow)
		require.NoError(t, err)
		assert.True(t, outcome.UsedFallback)
		assert.Equal(t, 0, tenant.employeeUpdates)
		assert.Equal(t, 1, tenant.terminationUpdates)
		assert.True(t, tenant.employee(emp.ID).IsExEmployee)
	})

	t.Run("existing candidate is renamed", func(t *testing.T) {
		tenant := newMemoryTenant()
		emp := newEmployee("EMP-0042", "Jane", "Doe")
		tenant.addEmployee(emp)
		employeeID := emp.ID
		tenant.candidates = []*talentDomain.Candidate{{
			ID:           uuid.Must(uuid.NewV7()),
			FirstName:    "J.",
			LastName:     "Doe",
			Email:        "jane@acme.test",
			IsExEmployee: true,
			ExEmployeeID: &employeeID,
		}}

		outcome, err := newTestMigrator().Migrate(ctx, tenant.repositories(), closingRequest(emp.ID), testNow)
		require.NoError(t, err)
		assert.False(t, outcome.CandidateCreated)
		assert.True(t, outcome.CandidateRenamed)
		assert.Equal(t, 1, tenant.candidateRenames)
		assert.Equal(t, "Jane", tenant.candidates[0].FirstName)
	})

	t.Run("terminated reason is not rehire eligible", func(t *testing.T) {
		tenant := newMemoryTenant()
		emp := newEmployee("EMP-0042", "Jane", "Doe")
		tenant.addEmployee(emp)
		req := closingRequest(emp.ID)
		req.Reason = domain.ReasonTermination

		_, err := newTestMigrator().Migrate(ctx, tenant.repositories(), req, testNow)
		require.NoError(t, err)
		assert.False(t, tenant.pool[0].RehireEligible)
		assert.False(t, tenant.candidates[0].RehireEligible)
	})

	t.Run("missing employee is fatal", func(t *testing.T) {
		tenant := newMemoryTenant()
		req := closingRequest(uuid.Must(uuid.NewV7()))

		_, err := newTestMigrator().Migrate(ctx, tenant.repositories(), req, testNow)
		require.Error(t, err)
		assert.False(t, req.IsCompleted)
	})
}
