package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
	"portfolio/internal/webhook"
	"portfolio/pkg/apperr"
	"portfolio/pkg/metrics"
)

const (
	maxWebhookBody = 1 << 20
	dedupScope     = "clerk-webhook"
)

// Deduper skips deliveries already seen. *util.Deduper satisfies it.
type Deduper interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
	Release(ctx context.Context, scope, key string)
}

type WebhookHandler struct {
	receiver *webhook.Receiver
	sync     *service.IdentitySync
	dedup    Deduper
	logger   *zap.Logger
}

// NewWebhookHandler wires identity deliveries to sync. dedup may be nil,
// in which case every verified delivery is applied.
func NewWebhookHandler(receiver *webhook.Receiver, sync *service.IdentitySync, dedup Deduper, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{receiver: receiver, sync: sync, dedup: dedup, logger: logger}
}

// Clerk handles POST /api/webhooks/clerk.
func (h *WebhookHandler) Clerk(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		RespondError(c, h.logger, apperr.Wrap(apperr.KindValidation, "invalid request body", err))
		return
	}

	ev, err := h.receiver.Parse(body, c.Request.Header)
	if err != nil {
		h.logger.Warn("webhook-rejected",
			zap.String("svix_id", c.GetHeader(webhook.HeaderID)),
			zap.Error(err),
		)
		RespondError(c, h.logger, err)
		return
	}

	if h.dedup != nil && !h.dedup.AcquireOnce(c.Request.Context(), dedupScope, ev.ID) {
		metrics.IncrementIdentityEvent(ev.Type, "duplicate")
		c.JSON(http.StatusOK, gin.H{"message": "webhook processed"})
		return
	}

	if err := h.sync.Apply(c.Request.Context(), ev); err != nil {
		// let the provider's retry through
		if h.dedup != nil {
			h.dedup.Release(c.Request.Context(), dedupScope, ev.ID)
		}
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "webhook processed"})
}
