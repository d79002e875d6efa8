// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"strings"

	"dird-service/internal/clients/auth"
	"dird-service/internal/domain/tenant"
	"dird-service/internal/pkg/acl"
	xerrors "dird-service/internal/pkg/errors"
	"dird-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserTracker records users as their identity becomes known, so that
// on-behalf-of endpoints can verify tenant membership later.
type UserTracker interface {
	Ensure(ctx context.Context, u *tenant.User) error
}

type AuthMiddleware struct {
	authClient *auth.Client
	users      UserTracker
	logger     *zap.Logger
}

func NewAuthMiddleware(authClient *auth.Client, users UserTracker, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		authClient: authClient,
		users:      users,
		logger:     logger,
	}
}

// Auth validates the caller's token against the auth service and stores its
// identity in the request context. The caller is recorded as a known user of
// its tenant; tracking failures are logged, not surfaced.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, xerrors.ErrUnauthorized, "missing authentication token")
			return
		}

		info, err := m.authClient.TokenInfo(c.Request.Context(), token)
		if err != nil {
			response.Error(c, xerrors.ErrUnauthorized, "invalid or expired token")
			return
		}

		if m.users != nil {
			err := m.users.Ensure(c.Request.Context(), &tenant.User{
				UserUUID:   info.UserUUID,
				TenantUUID: info.TenantUUID,
			})
			if err != nil {
				m.logger.Warn("failed to track user",
					zap.String("user_uuid", info.UserUUID),
					zap.Error(err))
			}
		}

		c.Set("token", info.Token)
		c.Set("user_uuid", info.UserUUID)
		c.Set("tenant_uuid", info.TenantUUID)
		c.Set("acl", info.ACL)

		c.Next()
	}
}

// RequireACL checks the token ACL against a required access. Placeholders of
// the form {name} are substituted with the matching route parameter, so
// "dird.directories.lookup.{profile}.read" becomes
// "dird.directories.lookup.default.read" for /lookup/default.
// MUST be used after Auth().
func (m *AuthMiddleware) RequireACL(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenACL := GetACL(c)
		if !acl.Check(tokenACL, expandACL(required, c)) {
			response.Error(c, xerrors.ErrForbidden, "insufficient access")
			return
		}
		c.Next()
	}
}

func expandACL(required string, c *gin.Context) string {
	for _, param := range c.Params {
		required = strings.ReplaceAll(required, "{"+param.Key+"}", param.Value)
	}
	return required
}

// extractToken reads X-Auth-Token, falling back to a Bearer header.
func extractToken(c *gin.Context) string {
	if token := c.GetHeader("X-Auth-Token"); token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	return ""
}
