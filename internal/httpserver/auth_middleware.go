package httpserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/handler"
	"portfolio/internal/identity"
	"portfolio/pkg/apperr"
)

// TokenVerifier turns a session token into the provider user id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthMiddleware rejects requests without a valid session token and stores
// the provider user id for the guard.
func AuthMiddleware(verifier TokenVerifier, sessionCookie string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := identity.ExtractToken(c.Request, sessionCookie)
		if token == "" {
			handler.RespondError(c, logger, apperr.Unauthenticated("unauthorized"))
			return
		}

		clerkID, err := verifier.Verify(token)
		if err != nil {
			handler.RespondError(c, logger, apperr.Wrap(apperr.KindUnauthenticated, "unauthorized", err))
			return
		}

		c.Set(handler.ContextClerkID, clerkID)
		c.Next()
	}
}
