package http

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/earthenstore/storefront-api/internal/domains/users/ports"
	apierrors "github.com/earthenstore/storefront-api/internal/shared/errors"
	"github.com/earthenstore/storefront-api/internal/shared/identity"
)

// Identity resolves the session token, if any, and attaches the principal to
// the request context. Anonymous requests pass through untouched so guest
// checkout keeps working.
func Identity(service ports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.Next()
			return
		}
		session, err := service.Authenticate(c.Request.Context(), token)
		if err != nil {
			// Stale or forged tokens degrade to anonymous.
			c.Next()
			return
		}
		ctx := identity.WithUserID(c.Request.Context(), session.UserID)
		ctx = identity.WithRole(ctx, session.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects requests whose principal lacks the given role.
func RequireRole(role identity.Role) gin.HandlerFunc {
	responder := apierrors.NewResponder()
	return func(c *gin.Context) {
		if _, ok := identity.UserID(c.Request.Context()); !ok {
			responder.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}
		if current, ok := identity.RoleFromContext(c.Request.Context()); !ok || current != role {
			responder.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
