package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/model"
	"portfolio/pkg/apperr"
	"portfolio/pkg/logger"
)

// Keys set on the gin context by the auth middleware.
const (
	ContextClerkID = "clerk_id"
	ContextUser    = "user"
)

// CurrentUser returns the local User the guard resolved for this request.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// ClerkID returns the verified provider user id for this request.
func ClerkID(c *gin.Context) string {
	return c.GetString(ContextClerkID)
}

// RespondError writes err as {"error": message}. Server-side failures are
// logged with their cause; the caller only sees the generic message.
func RespondError(c *gin.Context, l *zap.Logger, err error) {
	status, msg := apperr.Public(err)
	log := logger.WithTrace(c.Request.Context(), l)
	if status >= http.StatusInternalServerError {
		log.Error("request-failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	} else {
		log.Debug("request-rejected",
			zap.String("path", c.FullPath()),
			zap.Int("status", status),
			zap.String("reason", msg),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func badBody(c *gin.Context, l *zap.Logger, err error) {
	RespondError(c, l, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
}
