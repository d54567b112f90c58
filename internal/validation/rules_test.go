package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		email     string
		shouldErr bool
	}{
		{email: "jane.doe@example.com"},
		{email: "ops+exit@corp.co.uk"},
		{email: "not-an-email", shouldErr: true},
		{email: "missing@tld", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validation.Validate(tt.email, Email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("resignation", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, validation.Validate("EMP-001", NoWhitespace))
	assert.Error(t, validation.Validate(" EMP-001", NoWhitespace))
}

func TestNonNegativeAmount(t *testing.T) {
	assert.NoError(t, validation.Validate(decimal.Zero, NonNegativeAmount))
	assert.NoError(t, validation.Validate(decimal.RequireFromString("1250.50"), NonNegativeAmount))

	negative := decimal.RequireFromString("-1")
	assert.Error(t, validation.Validate(negative, NonNegativeAmount))
	assert.Error(t, validation.Validate(&negative, NonNegativeAmount))
	assert.Error(t, validation.Validate("12", NonNegativeAmount))
}

func TestDate(t *testing.T) {
	assert.NoError(t, validation.Validate("2023-03-30", Date))
	assert.NoError(t, validation.Validate("", Date))
	assert.Error(t, validation.Validate("30/03/2023", Date))
	assert.Error(t, validation.Validate("2023-02-30", Date))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-03-31")
	require.NoError(t, err)
	assert.Equal(t, 2020, d.Year())
	assert.Equal(t, 31, d.Day())

	_, err = ParseDate("2020-13-01")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(validation.NewError("code", "bad value"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad value")
}

func TestUUID(t *testing.T) {
	assert.NoError(t, validation.Validate("0195d2a4-6f3c-7b21-9a7e-3c1d2e4f5a6b", UUID))
	assert.NoError(t, validation.Validate("", UUID))
	assert.Error(t, validation.Validate("not-a-uuid", UUID))
	assert.Error(t, validation.Validate("0195d2a46f3c7b219a7e3c1d2e4f5a6b", UUID))
}
