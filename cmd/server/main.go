package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/config"
	"portfolio/internal/github"
	"portfolio/internal/handler"
	"portfolio/internal/httpserver"
	"portfolio/internal/identity"
	"portfolio/internal/repository"
	"portfolio/internal/service"
	"portfolio/internal/webhook"
	"portfolio/pkg/db"
	"portfolio/pkg/logger"
	"portfolio/pkg/redis"
	"portfolio/pkg/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logg, err := logger.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logg.Sync()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	logg.Info("Starting portfolio API...",
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Mongo.Database),
		zap.Bool("redis", cfg.Redis.Addr != ""),
	)

	// Document store; the client connects on first use.
	store := db.NewManager(cfg.Mongo, logg)
	indexCtx, cancelIndex := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	if err := repository.EnsureIndexes(indexCtx, store); err != nil {
		logg.Warn("Ensuring indexes failed, continuing", zap.Error(err))
	}
	cancelIndex()

	rdb := redis.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}

	verifier, err := identity.NewVerifier(cfg.Auth)
	if err != nil {
		logg.Fatal("Failed to load session token key", zap.Error(err))
	}
	receiver, err := webhook.NewReceiver(cfg.Webhook.Secret)
	if err != nil {
		logg.Fatal("Failed to load webhook secret", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(store)
	projectRepo := repository.NewProjectRepository(store)
	serviceRepo := repository.NewServiceRepository(store)
	messageRepo := repository.NewMessageRepository(store)

	guard := service.NewGuard(userRepo)
	projectService := service.NewProjectService(projectRepo, userRepo)
	catalogService := service.NewCatalogService(serviceRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, projectRepo)
	userService := service.NewUserService(userRepo, projectRepo)
	dashboardService := service.NewDashboardService(projectRepo, messageRepo, userRepo)
	identitySync := service.NewIdentitySync(userRepo, logg)
	githubService := service.NewGitHubService(github.NewClient(cfg.GitHub, logg), cfg.GitHub.Username)

	var dedup handler.Deduper
	if rdb != nil && cfg.Webhook.DedupTTL > 0 {
		dedup = util.NewDeduper(rdb, cfg.Webhook.DedupTTL, logg)
		logg.Info("Webhook deduplication enabled", zap.Duration("ttl", cfg.Webhook.DedupTTL))
	}

	router := httpserver.NewRouter(httpserver.Handlers{
		Projects:  handler.NewProjectHandler(projectService, logg),
		Catalog:   handler.NewCatalogHandler(catalogService, logg),
		Messages:  handler.NewMessageHandler(messageService, logg),
		Users:     handler.NewUserHandler(userService, logg),
		Dashboard: handler.NewDashboardHandler(dashboardService, logg),
		GitHub:    handler.NewGitHubHandler(githubService, logg),
		Webhook:   handler.NewWebhookHandler(receiver, identitySync, dedup, logg),
	}, httpserver.Options{
		Verifier:      verifier,
		SessionCookie: cfg.Auth.SessionCookie,
		Guard:         guard,
		Store:         store,
		Redis:         rdb,
		Logger:        logg,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logg.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Shutting down portfolio API gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		logg.Info("HTTP server stopped")
	}

	if err := store.Close(shutdownCtx); err != nil {
		logg.Error("Closing document store failed", zap.Error(err))
	}

	logg.Info("Shutdown complete")
}
