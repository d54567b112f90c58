package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

func TestValidateTenantID(t *testing.T) {
	valid := []string{"acme", "globex-eu", "tenant_01"}
	for _, id := range valid {
		assert.NoError(t, ValidateTenantID(id), id)
	}

	invalid := []string{"", "Acme", "acme;drop", "../etc", "-acme"}
	for _, id := range invalid {
		err := ValidateTenantID(id)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput, id)
	}
}

func TestTenantProvider_Connection(t *testing.T) {
	var opened []Config
	open := func(cfg Config) (*sql.DB, error) {
		opened = append(opened, cfg)
		db, _, err := sqlmock.New()
		return db, err
	}

	provider := NewTenantProviderWithOpener(TenantConfig{
		Driver:      "postgres",
		DSNTemplate: "postgres://localhost/hr_%s",
	}, open)
	ctx := context.Background()

	acme, err := provider.Connection(ctx, "acme")
	require.NoError(t, err)
	again, err := provider.Connection(ctx, "acme")
	require.NoError(t, err)
	globex, err := provider.Connection(ctx, "globex")
	require.NoError(t, err)

	assert.Same(t, acme, again)
	assert.NotSame(t, acme, globex)
	require.Len(t, opened, 2)
	assert.Equal(t, "postgres://localhost/hr_acme", opened[0].ConnectionString)
	assert.Equal(t, "postgres://localhost/hr_globex", opened[1].ConnectionString)

	assert.NoError(t, provider.Close())
}

func TestTenantProvider_Connection_Errors(t *testing.T) {
	provider := NewTenantProviderWithOpener(TenantConfig{DSNTemplate: "%s"}, func(Config) (*sql.DB, error) {
		return nil, assert.AnError
	})

	_, err := provider.Connection(context.Background(), "Bad Tenant")
	assert.ErrorIs(t, err, ErrInvalidTenant)

	_, err = provider.Connection(context.Background(), "acme")
	assert.ErrorIs(t, err, assert.AnError)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = provider.Connection(ctx, "acme")
	assert.ErrorIs(t, err, context.Canceled)
}
