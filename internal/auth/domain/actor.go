// Package domain defines the authenticated actor, roles and offboarding permissions.
package domain

import (
	"slices"

	"github.com/google/uuid"
)

// Role is a coarse job function carried by an actor token.
type Role string

const (
	RoleEmployee        Role = "employee"
	RoleManager         Role = "manager"
	RoleHRExecutive     Role = "hr_executive"
	RoleHRManager       Role = "hr_manager"
	RoleFinanceManager  Role = "finance_manager"
	RoleITAdmin         Role = "it_admin"
	RoleAdminOfficer    Role = "admin_officer"
	RoleSecurityOfficer Role = "security_officer"
	RoleTenantAdmin     Role = "tenant_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := RolePermissions[r]
	return ok
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	UserID     uuid.UUID
	TenantID   string
	EmployeeID *uuid.UUID
	Name       string
	Role       Role
	Department string
	// Grants are permissions assigned to this actor on top of the role defaults.
	Grants []Permission
}

// Has reports whether the actor holds p through its role or an explicit grant.
func (a *Actor) Has(p Permission) bool {
	if a == nil {
		return false
	}
	if slices.Contains(a.Grants, p) {
		return true
	}
	return slices.Contains(RolePermissions[a.Role], p)
}

// IsEmployee reports whether the actor is linked to the given employee record.
func (a *Actor) IsEmployee(employeeID uuid.UUID) bool {
	return a != nil && a.EmployeeID != nil && *a.EmployeeID == employeeID
}

// SystemActor is used by background replay; it never passes permission checks.
func SystemActor(tenantID string) *Actor {
	return &Actor{UserID: uuid.Nil, TenantID: tenantID, Name: "system"}
}
