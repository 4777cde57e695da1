package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/internal/service"
)

type GitHubHandler struct {
	github *service.GitHubService
	logger *zap.Logger
}

func NewGitHubHandler(github *service.GitHubService, logger *zap.Logger) *GitHubHandler {
	return &GitHubHandler{github: github, logger: logger}
}

func (h *GitHubHandler) Profile(c *gin.Context) {
	p, err := h.github.Profile(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *GitHubHandler) Repos(c *gin.Context) {
	repos, err := h.github.Repos(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"repos": repos})
}

func (h *GitHubHandler) Stats(c *gin.Context) {
	st, err := h.github.Stats(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
