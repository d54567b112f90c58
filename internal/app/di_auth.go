package app

import (
	"fmt"
	"sync"

	authService "github.com/allisson/exitflow/internal/auth/service"
)

// authComponents holds the actor token components of the container.
type authComponents struct {
	tokenService     authService.TokenService
	tokenServiceInit sync.Once
}

// TokenService returns the service issuing and verifying actor tokens.
func (c *Container) TokenService() (authService.TokenService, error) {
	err := c.once(&c.tokenServiceInit, "tokenService", func() error {
		tokenService, err := authService.NewTokenService(c.config.JWTSecret, c.config.JWTIssuer)
		if err != nil {
			return fmt.Errorf("failed to create token service: %w", err)
		}
		c.tokenService = tokenService
		return nil
	})
	return c.tokenService, err
}
