package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tenure is a floored years and months duration of employment.
type Tenure struct {
	Years  int `json:"years"`
	Months int `json:"months"`
}

// SalarySnapshot freezes the salary components at exit.
type SalarySnapshot struct {
	Currency   string          `json:"currency"`
	Basic      decimal.Decimal `json:"basic"`
	HRA        decimal.Decimal `json:"hra"`
	Allowances decimal.Decimal `json:"allowances"`
	Gross      decimal.Decimal `json:"gross"`
}

// EmployeeSnapshot is the immutable copy of the employee record taken at closure.
type EmployeeSnapshot struct {
	EmployeeID         uuid.UUID      `json:"employee_id"`
	EmployeeCode       string         `json:"employee_code"`
	FirstName          string         `json:"first_name"`
	LastName           string         `json:"last_name"`
	Email              string         `json:"email"`
	Phone              string         `json:"phone,omitempty"`
	Department         string         `json:"department"`
	Designation        string         `json:"designation"`
	EmploymentType     string         `json:"employment_type"`
	ReportingManagerID *uuid.UUID     `json:"reporting_manager_id,omitempty"`
	JoiningDate        time.Time      `json:"joining_date"`
	LastWorkingDay     time.Time      `json:"last_working_day"`
	Tenure             Tenure         `json:"tenure"`
	Salary             SalarySnapshot `json:"salary"`
	StatusAtExit       string         `json:"status_at_exit"`
	TerminationReason  Reason         `json:"termination_reason"`
	RehireEligible     bool           `json:"rehire_eligible"`
	CapturedAt         time.Time      `json:"captured_at"`
	Checksum           string         `json:"checksum"`
}
