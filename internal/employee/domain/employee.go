// Package domain defines the employee directory entity consumed by the offboarding workflow.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"github.com/allisson/exitflow/internal/errors"
	customValidation "github.com/allisson/exitflow/internal/validation"
)

// ErrEmployeeNotFound indicates the employee does not exist in the directory.
var ErrEmployeeNotFound = errors.Wrap(errors.ErrNotFound, "employee not found")

// Status is the employment status of a directory record.
type Status string

const (
	StatusActive     Status = "active"
	StatusOnNotice   Status = "on_notice"
	StatusTerminated Status = "terminated"
	StatusInactive   Status = "inactive"
)

// EmploymentTypes lists the accepted employment types.
var EmploymentTypes = []interface{}{"full_time", "part_time", "contract", "intern"}

// Salary holds the monthly salary components of an employee.
type Salary struct {
	Currency   string          `json:"currency"`
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	Allowances decimal.Decimal `json:"allowances"`
}

// Gross sums the monthly salary components.
func (s Salary) Gross() decimal.Decimal {
	return decimal.Sum(s.Basic, s.HRA, s.Allowances)
}

// Employee is a record of the tenant's employee directory.
type Employee struct {
	// ID is the unique identifier of the employee.
	ID uuid.UUID
	// Code is the tenant-assigned employee code (e.g., "EMP-0042").
	Code      string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	// Department is the organisational unit the employee belongs to.
	Department     string
	Designation    string
	EmploymentType string
	// ReportingManagerID is the employee id of the direct manager, if any.
	ReportingManagerID *uuid.UUID
	JoiningDate        time.Time
	Salary             Salary
	// LeaveBalance is the number of unused leave days available for encashment.
	LeaveBalance decimal.Decimal
	Status       Status
	IsActive     bool
	// IsExEmployee is set once the offboarding closure migrated the record.
	IsExEmployee      bool
	TerminatedAt      *time.Time
	TerminationReason string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// FullName joins first and last name.
func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Validate checks the full record. Legacy rows imported before the directory enforced these
// rules may fail here on fields unrelated to the change being saved.
func (e *Employee) Validate() error {
	err := validation.ValidateStruct(e,
		validation.Field(&e.Code, validation.Required, customValidation.NoWhitespace, validation.Length(1, 50)),
		validation.Field(&e.FirstName, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&e.LastName, validation.Required, customValidation.NotBlank, validation.Length(1, 100)),
		validation.Field(&e.Email, validation.Required, customValidation.Email),
		validation.Field(&e.Department, validation.Required, customValidation.NotBlank),
		validation.Field(&e.EmploymentType, validation.Required, validation.In(EmploymentTypes...)),
		validation.Field(&e.JoiningDate, validation.Required),
		validation.Field(&e.Status, validation.Required, validation.In(
			StatusActive, StatusOnNotice, StatusTerminated, StatusInactive,
		)),
	)
	return customValidation.WrapValidationError(err)
}

// MarkTerminated flips the record to a terminated ex-employee.
func (e *Employee) MarkTerminated(at time.Time, reason string) {
	e.IsExEmployee = true
	e.IsActive = false
	e.Status = StatusTerminated
	e.TerminatedAt = &at
	e.TerminationReason = reason
}
