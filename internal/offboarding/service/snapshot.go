package service

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
)

// Blake2bSnapshotBuilder implements SnapshotBuilder, sealing each snapshot with a BLAKE2b-256
// checksum of its JSON form.
type Blake2bSnapshotBuilder struct{}

// NewSnapshotBuilder creates a new Blake2bSnapshotBuilder.
func NewSnapshotBuilder() *Blake2bSnapshotBuilder {
	return &Blake2bSnapshotBuilder{}
}

// Build implements SnapshotBuilder.
func (b *Blake2bSnapshotBuilder) Build(
	emp *employeeDomain.Employee,
	req *domain.OffboardingRequest,
	at time.Time,
) (*domain.EmployeeSnapshot, error) {
	snapshot := &domain.EmployeeSnapshot{
		EmployeeID:         emp.ID,
		EmployeeCode:       emp.Code,
		FirstName:          emp.FirstName,
		LastName:           emp.LastName,
		Email:              emp.Email,
		Phone:              emp.Phone,
		Department:         emp.Department,
		Designation:        emp.Designation,
		EmploymentType:     emp.EmploymentType,
		ReportingManagerID: emp.ReportingManagerID,
		JoiningDate:        emp.JoiningDate,
		LastWorkingDay:     req.LastWorkingDay,
		Tenure:             CalculateTenure(emp.JoiningDate, req.LastWorkingDay),
		Salary: domain.SalarySnapshot{
			Currency:   emp.Salary.Currency,
			Basic:      emp.Salary.Basic,
			HRA:        emp.Salary.HRA,
			Allowances: emp.Salary.Allowances,
			Gross:      emp.Salary.Gross(),
		},
		StatusAtExit:      string(emp.Status),
		TerminationReason: req.Reason,
		RehireEligible:    req.Reason.RehireEligible(),
		CapturedAt:        at,
	}

	sum, err := snapshotChecksum(snapshot)
	if err != nil {
		return nil, err
	}
	snapshot.Checksum = sum
	return snapshot, nil
}

// Verify implements SnapshotBuilder.
func (b *Blake2bSnapshotBuilder) Verify(snapshot *domain.EmployeeSnapshot) (bool, error) {
	sum, err := snapshotChecksum(snapshot)
	if err != nil {
		return false, err
	}
	return sum == snapshot.Checksum, nil
}

func snapshotChecksum(snapshot *domain.EmployeeSnapshot) (string, error) {
	unsealed := *snapshot
	unsealed.Checksum = ""

	data, err := json.Marshal(&unsealed)
	if err != nil {
		return "", fmt.Errorf("failed to marshal employee snapshot: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
