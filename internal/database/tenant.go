package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sync"
	"time"

	apperrors "github.com/allisson/exitflow/internal/errors"
)

// ErrInvalidTenant indicates a tenant id that cannot be routed to a database.
var ErrInvalidTenant = apperrors.Wrap(apperrors.ErrInvalidInput, "invalid tenant id")

var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// TenantConnector resolves a tenant id to its dedicated connection pool.
type TenantConnector interface {
	Connection(ctx context.Context, tenantID string) (*sql.DB, error)
}

// TenantConfig configures per-tenant connection pools.
type TenantConfig struct {
	Driver             string
	DSNTemplate        string
	MaxOpenConnections int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// TenantProvider lazily opens one pool per tenant and keeps it for the process lifetime.
type TenantProvider struct {
	cfg   TenantConfig
	open  func(Config) (*sql.DB, error)
	mu    sync.Mutex
	pools map[string]*sql.DB
}

// NewTenantProvider creates a TenantProvider backed by Connect.
func NewTenantProvider(cfg TenantConfig) *TenantProvider {
	return NewTenantProviderWithOpener(cfg, Connect)
}

// NewTenantProviderWithOpener creates a TenantProvider with a custom pool opener.
func NewTenantProviderWithOpener(cfg TenantConfig, open func(Config) (*sql.DB, error)) *TenantProvider {
	return &TenantProvider{
		cfg:   cfg,
		open:  open,
		pools: make(map[string]*sql.DB),
	}
}

// ValidateTenantID checks that a tenant id is safe to embed in a connection string.
func ValidateTenantID(tenantID string) error {
	if !tenantIDPattern.MatchString(tenantID) {
		return apperrors.Wrapf(ErrInvalidTenant, "%q", tenantID)
	}
	return nil
}

// Connection returns the pool for tenantID, opening it on first use.
func (p *TenantProvider) Connection(ctx context.Context, tenantID string) (*sql.DB, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.pools[tenantID]; ok {
		return db, nil
	}

	db, err := p.open(Config{
		Driver:             p.cfg.Driver,
		ConnectionString:   fmt.Sprintf(p.cfg.DSNTemplate, tenantID),
		MaxOpenConnections: p.cfg.MaxOpenConnections,
		MaxIdleConnections: p.cfg.MaxIdleConnections,
		ConnMaxLifetime:    p.cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect tenant %s: %w", tenantID, err)
	}

	p.pools[tenantID] = db
	return db, nil
}

// Ping checks every open tenant pool.
func (p *TenantProvider) Ping(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for tenantID, db := range p.pools {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("tenant %s: %w", tenantID, err)
		}
	}
	return nil
}

// Close closes every open tenant pool.
func (p *TenantProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for tenantID, db := range p.pools {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
		delete(p.pools, tenantID)
	}
	return apperrors.Join(errs...)
}
