// Package service provides token issuing and verification for workflow actors.
package service

import (
	"time"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
)

// TokenService issues and verifies signed actor tokens.
type TokenService interface {
	// Issue signs a token describing actor that expires after ttl.
	Issue(actor *authDomain.Actor, ttl time.Duration) (string, error)

	// Verify checks the token signature, issuer and expiry and returns the actor it describes.
	Verify(token string) (*authDomain.Actor, error)
}
