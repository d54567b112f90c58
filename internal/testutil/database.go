// Package testutil provides testing utilities for database integration tests.
//
// Environment Variables:
//
// Database connection strings can be customized via environment variables:
//   - TEST_POSTGRES_DSN: PostgreSQL connection string; when unset StartPostgres boots a container
//   - TEST_MYSQL_DSN: MySQL connection string, which must enable multiStatements
//     (default: testuser:testpassword@tcp(localhost:3307)/testdb?parseTime=true&multiStatements=true)
//
// Database Setup:
//
//	pg := testutil.StartPostgres(t)
//	db := testutil.SetupPostgresDB(t, pg.TenantDSN("acme"))
//	defer testutil.TeardownDB(t, db)
//
// Test Fixtures:
//
//	employeeID := testutil.CreateTestEmployee(t, db, "postgres", testutil.EmployeeFixture{Code: "EMP-0042"})
//	userID := testutil.CreateTestUser(t, db, "postgres", "Helen HR", "hr_manager")
//
// Migration Path:
//
// Migrations are automatically discovered by walking up from the current
// working directory until a "migrations/{dbType}" directory is found.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const (
	//nolint:gosec // test database credentials
	defaultMySQLTestDSN = "testuser:testpassword@tcp(localhost:3307)/testdb?parseTime=true&multiStatements=true"

	postgresImage = "postgres:16-alpine"
)

// tables lists every application table, children first.
var tables = []string{
	"outbox_events",
	"talent_pool",
	"candidates",
	"exit_feedback",
	"final_settlements",
	"handover_details",
	"asset_clearances",
	"offboarding_tasks",
	"offboarding_requests",
	"users",
	"employees",
}

// GetPostgresTestDSN returns the PostgreSQL test DSN from TEST_POSTGRES_DSN, or "" when unset.
func GetPostgresTestDSN() string {
	return os.Getenv("TEST_POSTGRES_DSN")
}

// GetMySQLTestDSN returns the MySQL test DSN, checking environment variable first.
func GetMySQLTestDSN() string {
	if dsn := os.Getenv("TEST_MYSQL_DSN"); dsn != "" {
		return dsn
	}
	return defaultMySQLTestDSN
}

// PostgresServer is a PostgreSQL server reachable by the tests.
type PostgresServer struct {
	// DSN connects to the server's maintenance database.
	DSN string
}

// StartPostgres returns the server at TEST_POSTGRES_DSN or boots a disposable container.
// The container is terminated when the test finishes.
func StartPostgres(t *testing.T) *PostgresServer {
	t.Helper()

	if dsn := GetPostgresTestDSN(); dsn != "" {
		return &PostgresServer{DSN: dsn}
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		postgresImage,
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpassword"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to resolve postgres connection string")

	return &PostgresServer{DSN: dsn}
}

// TenantDSNTemplate returns a DSN template routing each tenant to database exitflow_<tenant>.
func (s *PostgresServer) TenantDSNTemplate() string {
	base, query, _ := strings.Cut(s.DSN, "?")
	base = base[:strings.LastIndex(base, "/")]
	template := base + "/exitflow_%s"
	if query != "" {
		template += "?" + query
	}
	return template
}

// TenantDSN returns the DSN of tenantID's database.
func (s *PostgresServer) TenantDSN(tenantID string) string {
	return fmt.Sprintf(s.TenantDSNTemplate(), tenantID)
}

// CreateTenantDatabase creates the database of tenantID and returns its DSN.
func (s *PostgresServer) CreateTenantDatabase(t *testing.T, tenantID string) string {
	t.Helper()

	db, err := sql.Open("postgres", s.DSN)
	require.NoError(t, err, "failed to connect to postgres")
	defer func() {
		_ = db.Close()
	}()

	_, err = db.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS "exitflow_%s"`, tenantID))
	require.NoError(t, err, "failed to drop tenant database")
	_, err = db.Exec(fmt.Sprintf(`CREATE DATABASE "exitflow_%s"`, tenantID))
	require.NoError(t, err, "failed to create tenant database")

	return s.TenantDSN(tenantID)
}

// SetupPostgresDB opens dsn, runs migrations and empties every table.
func SetupPostgresDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err, "failed to connect to postgres")

	err = db.Ping()
	require.NoError(t, err, "failed to ping postgres database")

	runPostgresMigrations(t, db)
	CleanupPostgresDB(t, db)

	return db
}

// SetupMySQLDB creates a new MySQL database connection and runs migrations.
func SetupMySQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("mysql", GetMySQLTestDSN())
	require.NoError(t, err, "failed to connect to mysql")

	err = db.Ping()
	require.NoError(t, err, "failed to ping mysql database")

	runMySQLMigrations(t, db)
	CleanupMySQLDB(t, db)

	return db
}

// TeardownDB closes the database connection and cleans up.
func TeardownDB(t *testing.T, db *sql.DB) {
	t.Helper()
	if db != nil {
		err := db.Close()
		require.NoError(t, err, "failed to close database connection")
	}
}

// CleanupPostgresDB truncates all tables in the PostgreSQL database.
func CleanupPostgresDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " CASCADE")
	require.NoError(t, err, "failed to truncate postgres tables")
}

// CleanupMySQLDB truncates all tables in the MySQL database.
func CleanupMySQLDB(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err, "failed to disable foreign key checks")

	for _, table := range tables {
		_, err = db.Exec("TRUNCATE TABLE " + table)
		require.NoError(t, err, "failed to truncate "+table+" table")
	}

	_, err = db.Exec("SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err, "failed to enable foreign key checks")
}

// runPostgresMigrations applies all pending PostgreSQL migrations for the test database.
func runPostgresMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	require.NoError(t, err, "failed to create postgres driver")

	migrationsPath, err := getMigrationsPath("postgresql")
	require.NoError(t, err, "failed to find postgresql migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"postgres",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance for postgres")

	// The migrate instance is not closed: closing it would close db, which the caller owns.
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run postgres migrations from %s", migrationsPath))
	}
}

// runMySQLMigrations applies all pending MySQL migrations for the test database.
func runMySQLMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	driver, err := mysql.WithInstance(db, &mysql.Config{})
	require.NoError(t, err, "failed to create mysql driver")

	migrationsPath, err := getMigrationsPath("mysql")
	require.NoError(t, err, "failed to find mysql migrations path")

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"mysql",
		driver,
	)
	require.NoError(t, err, "failed to create migrate instance for mysql")

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		require.NoError(t, err, fmt.Sprintf("failed to run mysql migrations from %s", migrationsPath))
	}
}

// getMigrationsPath resolves the absolute path to migration files for the specified database type.
// Walks up the directory tree from current working directory to find the migrations folder.
func getMigrationsPath(dbType string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		migrationsPath := filepath.Join(dir, "migrations", dbType)
		if _, err := os.Stat(migrationsPath); err == nil {
			return migrationsPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("migrations directory not found for %s (started from %s)", dbType, dir)
		}
		dir = parent
	}
}

// uuidToDriverValue converts a UUID to the appropriate value for the database driver.
// PostgreSQL uses UUID natively, MySQL requires binary encoding.
func uuidToDriverValue(id uuid.UUID, driver string) (interface{}, error) {
	if driver == "postgres" {
		return id, nil
	}
	return id.MarshalBinary()
}

// rebind rewrites $n placeholders for MySQL.
func rebind(driver, query string) string {
	if driver == "postgres" {
		return query
	}
	for i := 20; i >= 1; i-- {
		query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), "?")
	}
	return query
}

// EmployeeFixture describes an employee row. Zero fields get sensible defaults.
type EmployeeFixture struct {
	Code               string
	FirstName          string
	LastName           string
	Email              string
	Department         string
	ReportingManagerID *uuid.UUID
	JoiningDate        time.Time
}

// CreateTestEmployee inserts an active employee and returns its ID.
func CreateTestEmployee(t *testing.T, db *sql.DB, driver string, f EmployeeFixture) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV7())
	if f.Code == "" {
		f.Code = "EMP-" + id.String()[:8]
	}
	if f.FirstName == "" {
		f.FirstName = "Jane"
	}
	if f.LastName == "" {
		f.LastName = "Doe"
	}
	if f.Email == "" {
		f.Email = strings.ToLower(f.Code) + "@acme.test"
	}
	if f.Department == "" {
		f.Department = "Engineering"
	}
	if f.JoiningDate.IsZero() {
		f.JoiningDate = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	}

	idValue, err := uuidToDriverValue(id, driver)
	require.NoError(t, err, "failed to convert employee UUID for driver "+driver)

	var managerValue interface{}
	if f.ReportingManagerID != nil {
		managerValue, err = uuidToDriverValue(*f.ReportingManagerID, driver)
		require.NoError(t, err, "failed to convert manager UUID for driver "+driver)
	}

	salary := `{"currency":"INR","basic":"60000","hra":"24000","allowances":"6000"}`
	now := time.Now().UTC()

	_, err = db.ExecContext(context.Background(), rebind(driver, `INSERT INTO employees
		(id, code, first_name, last_name, email, phone, department, designation, employment_type,
		 reporting_manager_id, joining_date, salary, leave_balance, status, is_active, is_ex_employee,
		 terminated_at, termination_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, '', $6, 'Engineer', 'full_time', $7, $8, $9, 10, 'active', $10, $11,
		 NULL, '', $12, $13)`),
		idValue, f.Code, f.FirstName, f.LastName, f.Email, f.Department, managerValue, f.JoiningDate,
		salary, true, false, now, now,
	)
	require.NoError(t, err, "failed to create test employee: "+f.Code)
	return id
}

// CreateTestUser inserts an active user holding role and returns its ID.
func CreateTestUser(t *testing.T, db *sql.DB, driver, name, role string) uuid.UUID {
	t.Helper()

	id := uuid.Must(uuid.NewV7())
	idValue, err := uuidToDriverValue(id, driver)
	require.NoError(t, err, "failed to convert user UUID for driver "+driver)

	now := time.Now().UTC()
	_, err = db.ExecContext(context.Background(), rebind(driver, `INSERT INTO users
		(id, name, email, role, department, employee_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', NULL, $5, $6, $7)`),
		idValue, name, strings.ReplaceAll(strings.ToLower(name), " ", ".")+"@acme.test", role, true, now, now,
	)
	require.NoError(t, err, "failed to create test user: "+name)
	return id
}

// SkipIfNoMySQL skips the test if MySQL test database is not available.
func SkipIfNoMySQL(t *testing.T) {
	t.Helper()
	db, err := sql.Open("mysql", GetMySQLTestDSN())
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
}
