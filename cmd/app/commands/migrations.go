package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/allisson/exitflow/internal/database"
)

// migrationsPath returns the migration source for driver.
func migrationsPath(driver string) string {
	if driver == "mysql" {
		return "file://migrations/mysql"
	}
	return "file://migrations/postgresql"
}

// migrateURL converts a driver DSN into the URL form golang-migrate expects.
func migrateURL(driver, dsn string) string {
	if driver == "mysql" && !strings.HasPrefix(dsn, "mysql://") {
		return "mysql://" + dsn
	}
	return dsn
}

// RunMigrations applies all pending migrations to the database at dsn.
// Returns nil if no migrations to apply.
func RunMigrations(logger *slog.Logger, driver, dsn string) error {
	logger.Info("running database migrations",
		slog.String("driver", driver),
	)

	m, err := migrate.New(migrationsPath(driver), migrateURL(driver, dsn))
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer closeMigrate(m, logger)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("migrations completed successfully")
	return nil
}

// RunTenantMigrations migrates the database of every tenant, building each DSN from template.
// It stops at the first tenant that fails.
func RunTenantMigrations(logger *slog.Logger, driver, template string, tenants []string) error {
	if len(tenants) == 0 {
		return fmt.Errorf("no tenants to migrate: set TENANT_IDS or pass --tenant")
	}
	if !strings.Contains(template, "%s") {
		return fmt.Errorf("tenant DSN template must contain %%s")
	}

	for _, tenantID := range tenants {
		if err := database.ValidateTenantID(tenantID); err != nil {
			return err
		}
		logger.Info("migrating tenant", slog.String("tenant_id", tenantID))
		if err := RunMigrations(logger, driver, fmt.Sprintf(template, tenantID)); err != nil {
			return fmt.Errorf("tenant %s: %w", tenantID, err)
		}
	}
	return nil
}
