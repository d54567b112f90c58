// Package domain defines the re-hire entry points seeded when an employee leaves.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/errors"
)

// Domain-specific errors for talent records.
var (
	// ErrCandidateNotFound indicates no matching candidate exists.
	ErrCandidateNotFound = errors.Wrap(errors.ErrNotFound, "candidate not found")

	// ErrTalentPoolEntryNotFound indicates no matching talent pool entry exists.
	ErrTalentPoolEntryNotFound = errors.Wrap(errors.ErrNotFound, "talent pool entry not found")

	// ErrDuplicateExEmployee indicates a record already exists for the ex-employee.
	ErrDuplicateExEmployee = errors.Wrap(errors.ErrConflict, "ex-employee record already exists")
)

// SourceExEmployee marks records seeded by an offboarding closure.
const SourceExEmployee = "ex_employee"

// ExEmployeeKey identifies an ex-employee across the candidate and talent pool tables.
// Any of the three fields matching is treated as the same person.
type ExEmployeeKey struct {
	EmployeeID uuid.UUID
	Code       string
	Email      string
}

// Candidate is a recruiting pipeline entry.
type Candidate struct {
	ID              uuid.UUID
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Source          string
	Status          string
	IsExEmployee    bool
	ExEmployeeID    *uuid.UUID
	ExEmployeeCode  string
	RehireEligible  bool
	LastDesignation string
	LastDepartment  string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SyncName copies the name fields and reports whether anything changed.
func (c *Candidate) SyncName(firstName, lastName string) bool {
	if c.FirstName == firstName && c.LastName == lastName {
		return false
	}
	c.FirstName = firstName
	c.LastName = lastName
	return true
}

// TalentPoolEntry keeps an ex-employee discoverable for future openings.
type TalentPoolEntry struct {
	ID             uuid.UUID
	ExEmployeeID   uuid.UUID
	ExEmployeeCode string
	Name           string
	Email          string
	Category       string
	RehireEligible bool
	Tags           []string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NormalizeEmail lowercases and trims an email for dedup comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
