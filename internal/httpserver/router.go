package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"portfolio/internal/handler"
	"portfolio/internal/service"
	"portfolio/pkg/rbac"
)

// Pinger reports whether the document store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Projects  *handler.ProjectHandler
	Catalog   *handler.CatalogHandler
	Messages  *handler.MessageHandler
	Users     *handler.UserHandler
	Dashboard *handler.DashboardHandler
	GitHub    *handler.GitHubHandler
	Webhook   *handler.WebhookHandler
}

type Options struct {
	Verifier      TokenVerifier
	SessionCookie string
	Guard         *service.Guard
	Store         Pinger
	// Redis is optional.
	Redis  *redis.Client
	Logger *zap.Logger
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(h Handlers, opts Options) *Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), LoggingMiddleware(log), MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/readyz", readyz(opts))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Public
	api.GET("/services", h.Catalog.ListActive)
	api.GET("/github/profile", h.GitHub.Profile)
	api.GET("/github/repos", h.GitHub.Repos)
	api.GET("/github/stats", h.GitHub.Stats)
	api.POST("/webhooks/clerk", h.Webhook.Clerk)

	authed := api.Group("")
	authed.Use(AuthMiddleware(opts.Verifier, opts.SessionCookie, log))

	requireUser := RequireUser(opts.Guard, log)
	requireAdmin := RequireRole(opts.Guard, rbac.RoleAdmin, log)

	authed.GET("/me", requireUser, h.Users.Me)
	authed.POST("/admin/setup", requireUser, h.Users.SetupAdmin)

	// Self-service
	self := authed.Group("")
	self.Use(requireUser)
	{
		self.GET("/projects", h.Projects.List)
		self.POST("/projects", h.Projects.Create)
		self.GET("/projects/:id", h.Projects.Get)
		self.PUT("/projects/:id", requireAdmin, h.Projects.Update)
		self.DELETE("/projects/:id", requireAdmin, h.Projects.Delete)

		self.GET("/messages", h.Messages.List)
		self.POST("/messages", h.Messages.Create)
		self.PATCH("/messages/:id", h.Messages.UpdateStatus)
	}

	// Admin
	admin := authed.Group("/admin")
	admin.Use(requireAdmin)
	{
		admin.GET("/projects", h.Projects.AdminList)
		admin.POST("/projects", h.Projects.AdminCreate)
		admin.GET("/projects/:id", h.Projects.AdminGet)
		admin.PUT("/projects/:id", h.Projects.Update)
		admin.DELETE("/projects/:id", h.Projects.Delete)

		admin.GET("/services", h.Catalog.List)
		admin.POST("/services", h.Catalog.Create)
		admin.GET("/services/:id", h.Catalog.Get)
		admin.PUT("/services/:id", h.Catalog.Update)
		admin.DELETE("/services/:id", h.Catalog.Delete)

		admin.GET("/messages", h.Messages.AdminList)
		admin.POST("/messages", h.Messages.Create)

		admin.GET("/users", h.Users.ListClients)
		admin.PUT("/users/:id/role", h.Users.UpdateRole)

		admin.GET("/stats", h.Dashboard.Stats)
	}

	return &Router{Engine: r}
}

func readyz(opts Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if opts.Store != nil {
			if err := opts.Store.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "store_not_ready"})
				return
			}
		}
		body := gin.H{"status": "ready"}
		if opts.Redis != nil {
			if err := opts.Redis.Ping(ctx).Err(); err != nil {
				body["redis"] = "unavailable"
			} else {
				body["redis"] = "ok"
			}
		}
		c.JSON(http.StatusOK, body)
	}
}

func (r *Router) Handler() http.Handler {
	return r.Engine
}
