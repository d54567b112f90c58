package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/exitflow/internal/errors"
)

// Authentication errors.
var (
	// ErrInvalidToken indicates a token that failed signature, issuer or expiry checks.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrMissingActor indicates a request reached a handler without an authenticated actor.
	ErrMissingActor = errors.Wrap(errors.ErrUnauthorized, "missing actor")
)

// PermissionError is returned when the workflow guard rejects an action.
// It keeps the evaluated inputs so callers can diagnose the rejection.
type PermissionError struct {
	Role       Role
	Action     string
	Stage      string
	Department string
	Permission Permission
	Reason     string
}

// Error implements error.
func (e *PermissionError) Error() string {
	parts := []string{fmt.Sprintf("role %q may not %s", e.Role, e.Action)}
	if e.Stage != "" {
		parts = append(parts, "stage="+e.Stage)
	}
	if e.Department != "" {
		parts = append(parts, "department="+e.Department)
	}
	if e.Permission != "" {
		parts = append(parts, "requires="+string(e.Permission))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return "permission denied: " + strings.Join(parts, ", ")
}

// Unwrap maps the rejection onto the forbidden sentinel.
func (e *PermissionError) Unwrap() error {
	return errors.ErrForbidden
}

// Diagnostics returns the evaluated role, action, stage and department.
func (e *PermissionError) Diagnostics() map[string]string {
	d := map[string]string{
		"role":   string(e.Role),
		"action": e.Action,
	}
	if e.Stage != "" {
		d["stage"] = e.Stage
	}
	if e.Department != "" {
		d["department"] = e.Department
	}
	if e.Permission != "" {
		d["required_permission"] = string(e.Permission)
	}
	if e.Reason != "" {
		d["reason"] = e.Reason
	}
	return d
}
