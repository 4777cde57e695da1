package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
)

type UserHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Me handles GET /api/me.
func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}

// SetupAdmin handles POST /api/admin/setup.
func (h *UserHandler) SetupAdmin(c *gin.Context) {
	u, err := h.users.SetupAdmin(c.Request.Context(), CurrentUser(c))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("admin-setup",
		zap.String("user_id", u.ID.Hex()),
		zap.String("clerk_id", u.ClerkID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "admin setup complete", "user": u})
}

// ListClients handles GET /api/admin/users.
func (h *UserHandler) ListClients(c *gin.Context) {
	users, err := h.users.ListClients(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateRole handles PUT /api/admin/users/:id/role.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var in service.RoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}
	u, err := h.users.UpdateRole(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("role-updated",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", string(u.Role)),
		zap.String("by", CurrentUser(c).ID.Hex()),
	)
	c.JSON(http.StatusOK, u)
}
