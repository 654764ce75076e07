package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samaraie/linktree-backend/config"
	"github.com/samaraie/linktree-backend/internal/app/controller"
	"github.com/samaraie/linktree-backend/internal/app/repository"
	"github.com/samaraie/linktree-backend/internal/app/service"
	"github.com/samaraie/linktree-backend/internal/db"
	"github.com/samaraie/linktree-backend/internal/middleware"
	"github.com/samaraie/linktree-backend/internal/router"
	"github.com/samaraie/linktree-backend/internal/scheduler"
	"github.com/samaraie/linktree-backend/pkg/logger"
	"github.com/samaraie/linktree-backend/pkg/mailer"
	redisclient "github.com/samaraie/linktree-backend/pkg/redis"
	"github.com/samaraie/linktree-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting "+cfg.App.Name+" admin backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"token_store": cfg.Auth.ResetTokenStore,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	health := map[string]router.HealthCheck{
		"database": db.Ping,
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())

	var (
		tokenRepo repository.ResetTokenRepository
		tx        repository.Transactor
	)
	switch cfg.Auth.ResetTokenStore {
	case "redis":
		if err := redisclient.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redisclient.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		tokenRepo = repository.NewRedisResetTokenRepository(redisclient.GetClient())
		tx = repository.NewCompensatingTransactor(db.GetDB(), tokenRepo)
		health["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisclient.Ping(ctx)
		}
	default:
		tokenRepo = repository.NewResetTokenRepository(db.GetDB())
		tx = repository.NewGormTransactor(db.GetDB())
	}

	hasher, err := util.NewPasswordHasher(cfg.Auth.PasswordHasher)
	if err != nil {
		logger.Fatal("Failed to configure password hasher", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, service.TokenConfig{
		Secret:        cfg.JWT.Secret,
		AccessExpiry:  cfg.JWT.AccessTokenExpiry,
		RefreshExpiry: cfg.JWT.RefreshTokenExpiry,
	})
	resetService := service.NewPasswordResetService(
		userRepo,
		tokenRepo,
		tx,
		mailer.New(&cfg.Mail),
		hasher,
		service.PasswordResetConfig{
			BaseURL: cfg.App.SiteURL,
			AppName: cfg.App.Name,
		},
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	resetController := controller.NewPasswordResetController(resetService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		resetController,
		authMiddleware,
		health,
		cfg,
	)
	engine := r.Setup()

	cleanup := scheduler.NewResetTokenCleanupScheduler(tokenRepo, cfg.Scheduler.ResetTokenCleanupSpec)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start reset token cleanup scheduler", err)
	}
	defer cleanup.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
