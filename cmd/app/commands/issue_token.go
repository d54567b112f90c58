package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	authService "github.com/allisson/exitflow/internal/auth/service"
	"github.com/allisson/exitflow/internal/database"
)

// IssueTokenInput holds the raw flag values of the issue-token command.
type IssueTokenInput struct {
	TenantID   string
	UserID     string
	Role       string
	EmployeeID string
	Name       string
	Department string
	Grants     []string
	TTL        time.Duration
}

// actor validates the input and builds the actor the token describes.
func (in IssueTokenInput) actor() (*authDomain.Actor, error) {
	if err := database.ValidateTenantID(in.TenantID); err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(in.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format: %w", err)
	}

	role := authDomain.Role(in.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", in.Role)
	}

	actor := &authDomain.Actor{
		UserID:     userID,
		TenantID:   in.TenantID,
		Name:       in.Name,
		Role:       role,
		Department: in.Department,
	}

	if in.EmployeeID != "" {
		employeeID, err := uuid.Parse(in.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("invalid employee ID format: %w", err)
		}
		actor.EmployeeID = &employeeID
	}

	for _, g := range in.Grants {
		perm := authDomain.Permission(strings.ToUpper(strings.TrimSpace(g)))
		if !perm.Valid() {
			return nil, fmt.Errorf("unknown permission %q", g)
		}
		actor.Grants = append(actor.Grants, perm)
	}

	return actor, nil
}

type issueTokenOutput struct {
	Token     string    `json:"token"`
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RunIssueToken signs an actor token and writes it in the requested format.
func RunIssueToken(
	tokenService authService.TokenService,
	writer io.Writer,
	input IssueTokenInput,
	format string,
) error {
	if input.TTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}

	actor, err := input.actor()
	if err != nil {
		return err
	}

	token, err := tokenService.Issue(actor, input.TTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	output := issueTokenOutput{
		Token:     token,
		TenantID:  actor.TenantID,
		UserID:    actor.UserID.String(),
		Role:      string(actor.Role),
		ExpiresAt: time.Now().UTC().Add(input.TTL).Truncate(time.Second),
	}
	return render(writer, format, output, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, token)
		return err
	})
}
