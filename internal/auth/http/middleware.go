package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/exitflow/internal/auth/service"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/httputil"
)

const bearerPrefix = "bearer "

// bearerToken extracts the token from an Authorization header. The scheme is matched
// case-insensitively.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware verifies the Bearer token and stores the actor it carries in
// the request context. Missing, malformed, expired and foreign-issuer tokens all get 401.
func AuthenticationMiddleware(tokenService authService.TokenService, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("authentication failed: missing or malformed bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		actor, err := tokenService.Verify(token)
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithActor(c.Request.Context(), actor))

		logger.Debug("authentication successful",
			slog.String("tenant_id", actor.TenantID),
			slog.String("user_id", actor.UserID.String()),
			slog.String("role", string(actor.Role)))

		c.Next()
	}
}
