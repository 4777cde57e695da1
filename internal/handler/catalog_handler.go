package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
)

type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger}
}

// ListActive handles the public GET /api/services.
func (h *CatalogHandler) ListActive(c *gin.Context) {
	services, err := h.catalog.ListActive(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *CatalogHandler) List(c *gin.Context) {
	services, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

func (h *CatalogHandler) Get(c *gin.Context) {
	svc, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var in service.ServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badBody(c, h.logger, err)
		return
	}
	svc, err := h.catalog.Create(c.Request.Context(), in)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("service-created",
		zap.String("service_id", svc.ID.Hex()),
		zap.Int("order", svc.Order),
	)
	c.JSON(http.StatusCreated, svc)
}

// Update merges the whole JSON object into the stored service.
func (h *CatalogHandler) Update(c *gin.Context) {
	var body map[string]any
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil || body == nil {
		badBody(c, h.logger, err)
		return
	}
	svc, err := h.catalog.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.catalog.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, h.logger, err)
		return
	}
	h.logger.Info("service-deleted", zap.String("service_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "service deleted"})
}
