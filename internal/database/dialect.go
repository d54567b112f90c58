package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Dialect captures the differences between the supported SQL backends.
// Queries are written once with PostgreSQL "$n" placeholders and rebound for MySQL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect maps a driver name to its dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Driver returns the database/sql driver name.
func (d Dialect) Driver() string {
	return string(d)
}

// Rebind rewrites "$n" placeholders to "?" for MySQL. Placeholders must appear in argument order.
func (d Dialect) Rebind(query string) string {
	if d != DialectMySQL {
		return query
	}

	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// UUID converts an id into the argument expected by the backend.
// MySQL stores ids as BINARY(16); PostgreSQL uses the native UUID type.
func (d Dialect) UUID(id uuid.UUID) any {
	if d == DialectMySQL {
		b, _ := id.MarshalBinary()
		return b
	}
	return id
}

// JSON converts a marshalled document into a query argument.
func (d Dialect) JSON(document []byte) any {
	return string(document)
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "Duplicate entry")
}
