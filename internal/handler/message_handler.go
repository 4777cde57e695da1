package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
)

type MessageHandler struct {
	messages *service.MessageService
	logger   *zap.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

// List handles GET /api/messages: what the caller sent or received.
func (h *MessageHandler) List(c *gin.Context) {
	f, err := service.ParseMessageFilter(c.Query("status"), c.Query("projectId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	msgs, err := h.messages.ListFor(c.Request.Context(), CurrentUser(c), f)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// AdminList handles GET /api/admin/messages across all conversations.
func (h *MessageHandler) AdminList(c *gin.Context) {
	f, err := service.ParseMessageFilter(c.Query("status"), c.Query("projectId"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	msgs, err := h.messages.List(c.Request.Context(), f)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// Create handles POST on both message surfaces; the caller's role decides
// how the receiver is chosen.
func (h *MessageHandler) Create(c *gin.Context) {
	var in service.MessageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}
	m, err := h.messages.Send(c.Request.Context(), CurrentUser(c), in)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("message-sent",
		zap.String("message_id", m.ID.Hex()),
		zap.String("sender_id", m.SenderID.Hex()),
		zap.String("receiver_id", m.ReceiverID.Hex()),
	)
	c.JSON(http.StatusCreated, m)
}

// UpdateStatus handles PATCH /api/messages/:id.
func (h *MessageHandler) UpdateStatus(c *gin.Context) {
	var patch service.MessagePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badBody(c, h.logger, err)
		return
	}
	m, err := h.messages.UpdateStatus(c.Request.Context(), CurrentUser(c), c.Param("id"), patch)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
