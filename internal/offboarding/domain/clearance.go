package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Department is a function that signs off on an exit.
type Department string

const (
	DepartmentHR       Department = "hr"
	DepartmentIT       Department = "it"
	DepartmentFinance  Department = "finance"
	DepartmentAdmin    Department = "admin"
	DepartmentSecurity Department = "security"
)

// Departments lists every department that clears an exit, in display order.
var Departments = []Department{
	DepartmentHR,
	DepartmentIT,
	DepartmentFinance,
	DepartmentAdmin,
	DepartmentSecurity,
}

// Valid reports whether d is a known department.
func (d Department) Valid() bool {
	return slices.Contains(Departments, d)
}

// DepartmentClearance is one department's sign-off on the root aggregate.
type DepartmentClearance struct {
	Department Department `json:"department"`
	Cleared    bool       `json:"cleared"`
	ClearedBy  *uuid.UUID `json:"cleared_by,omitempty"`
	ClearedAt  *time.Time `json:"cleared_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// InitClearances adds a pending entry for every department that has none.
func (r *OffboardingRequest) InitClearances(at time.Time) bool {
	if r.Clearances == nil {
		r.Clearances = map[Department]*DepartmentClearance{}
	}
	changed := false
	for _, d := range Departments {
		if _, ok := r.Clearances[d]; ok {
			continue
		}
		r.Clearances[d] = &DepartmentClearance{Department: d, UpdatedAt: at}
		changed = true
	}
	return changed
}

// SetClearance records a department decision. Clearing twice keeps the first sign-off time.
func (r *OffboardingRequest) SetClearance(dept Department, cleared bool, notes string, by Actor, at time.Time) {
	r.InitClearances(at)
	c := r.Clearances[dept]
	c.Notes = notes
	c.UpdatedAt = at
	r.UpdatedAt = at
	if !cleared {
		c.Cleared = false
		c.ClearedBy = nil
		c.ClearedAt = nil
		return
	}
	if c.Cleared {
		return
	}
	id := by.ID
	c.Cleared = true
	c.ClearedBy = &id
	c.ClearedAt = &at
}

// ClearedDepartments counts the departments that have signed off.
func (r *OffboardingRequest) ClearedDepartments() int {
	n := 0
	for _, c := range r.Clearances {
		if c.Cleared {
			n++
		}
	}
	return n
}
