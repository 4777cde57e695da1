package httpserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/handler"
	"portfolio/internal/service"
	"portfolio/pkg/rbac"
)

// RequireUser resolves the caller to a local User. A caller with no local
// record gets 404.
func RequireUser(guard *service.Guard, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := guard.Resolve(c.Request.Context(), handler.ClerkID(c))
		if err != nil {
			handler.RespondError(c, logger, err)
			return
		}
		c.Set(handler.ContextUser, u)
		c.Next()
	}
}

// RequireRole makes sure the caller holds role before the handler runs.
// A user resolved earlier in the chain is checked as is; otherwise the
// caller is resolved here, and a missing record reads as forbidden.
func RequireRole(guard *service.Guard, role rbac.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u := handler.CurrentUser(c); u != nil {
			if err := guard.Check(u, role); err != nil {
				handler.RespondError(c, logger, err)
				return
			}
			c.Next()
			return
		}

		u, err := guard.Authorize(c.Request.Context(), handler.ClerkID(c), role)
		if err != nil {
			handler.RespondError(c, logger, err)
			return
		}
		c.Set(handler.ContextUser, u)
		c.Next()
	}
}
