// Package service provides the stateless offboarding services: the RBAC guard, the task
// template generator and the employee snapshot builder.
package service

import (
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
)

// Guard defines the interface for stage-gated permission checks.
type Guard interface {
	// CanPerformAction returns a *authDomain.PermissionError when the actor may not perform action
	// on req. dept is only evaluated for department scoped actions.
	CanPerformAction(
		actor *authDomain.Actor,
		action Action,
		req *domain.OffboardingRequest,
		dept domain.Department,
	) error

	// CanDecideSettlement checks the actor against one level of the settlement approval chain.
	CanDecideSettlement(actor *authDomain.Actor, req *domain.OffboardingRequest, level string) error
}

// TaskGenerator defines the interface for expanding department task templates.
type TaskGenerator interface {
	// Generate returns the department tasks of a request. The same inputs always yield the
	// same tasks, ids included.
	Generate(
		requestID uuid.UUID,
		employeeName string,
		lastWorkingDay time.Time,
		createdAt time.Time,
	) []*domain.OffboardingTask
}

// SnapshotBuilder defines the interface for freezing the employee record at closure.
type SnapshotBuilder interface {
	// Build captures emp together with the exit metadata of req.
	Build(emp *employeeDomain.Employee, req *domain.OffboardingRequest, at time.Time) (*domain.EmployeeSnapshot, error)

	// Verify reports whether the snapshot still matches its checksum.
	Verify(snapshot *domain.EmployeeSnapshot) (bool, error)
}
