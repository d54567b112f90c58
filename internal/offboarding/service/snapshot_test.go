package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	employeeDomain "github.com/allisson/exitflow/internal/employee/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
)

func TestBlake2bSnapshotBuilder(t *testing.T) {
	builder := NewSnapshotBuilder()
	emp := &employeeDomain.Employee{
		ID:             uuid.New(),
		Code:           "EMP-0042",
		FirstName:      "Grace",
		LastName:       "Hopper",
		Email:          "grace@example.com",
		Department:     "engineering",
		Designation:    "Staff Engineer",
		EmploymentType: "full_time",
		JoiningDate:    date(2020, 3, 31),
		Salary: employeeDomain.Salary{
			Currency:   "USD",
			Basic:      decimal.NewFromInt(6000),
			HRA:        decimal.NewFromInt(1500),
			Allowances: decimal.NewFromInt(500),
		},
		Status:   employeeDomain.StatusOnNotice,
		IsActive: true,
	}
	req := &domain.OffboardingRequest{
		ID:             uuid.New(),
		Reason:         domain.ReasonTermination,
		LastWorkingDay: date(2023, 3, 30),
	}
	at := time.Date(2023, 3, 30, 18, 0, 0, 0, time.UTC)

	snapshot, err := builder.Build(emp, req, at)
	require.NoError(t, err)
	assert.Equal(t, domain.Tenure{Years: 2, Months: 11}, snapshot.Tenure)
	assert.True(t, snapshot.Salary.Gross.Equal(decimal.NewFromInt(8000)))
	assert.Equal(t, "on_notice", snapshot.StatusAtExit)
	assert.False(t, snapshot.RehireEligible)
	assert.Len(t, snapshot.Checksum, 64)

	ok, err := builder.Verify(snapshot)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("survives a json round trip", func(t *testing.T) {
		data, err := json.Marshal(snapshot)
		require.NoError(t, err)
		var decoded domain.EmployeeSnapshot
		require.NoError(t, json.Unmarshal(data, &decoded))

		ok, err := builder.Verify(&decoded)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("detects tampering", func(t *testing.T) {
		tampered := *snapshot
		tampered.Designation = "Principal Engineer"
		ok, err := builder.Verify(&tampered)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
