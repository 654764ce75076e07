package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samaraie/linktree-backend/config"
	"github.com/samaraie/linktree-backend/internal/app/controller"
	"github.com/samaraie/linktree-backend/internal/app/model"
	apperrors "github.com/samaraie/linktree-backend/internal/errors"
	"github.com/samaraie/linktree-backend/internal/metrics"
	"github.com/samaraie/linktree-backend/internal/middleware"
)

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func() error

type Router struct {
	authController  *controller.AuthController
	resetController *controller.PasswordResetController
	authMiddleware  *middleware.AuthMiddleware
	health          map[string]HealthCheck
	config          *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	resetController *controller.PasswordResetController,
	authMiddleware *middleware.AuthMiddleware,
	health map[string]HealthCheck,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:  authController,
		resetController: resetController,
		authMiddleware:  authMiddleware,
		health:          health,
		config:          cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(recoverWithEnvelope))
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", r.healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)

			reset := auth.Group("/reset")
			{
				reset.POST("/request", r.resetController.RequestReset)
				reset.POST("/validate", r.resetController.ValidateToken)
				reset.POST("/complete", r.resetController.CompleteReset)
			}
		}

		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole(model.RoleAdmin),
		)
		{
			admin.POST("/users", r.authController.CreateUser)
		}
	}

	return router
}

func (r *Router) healthHandler(c *gin.Context) {
	checks := make(map[string]string, len(r.health))
	status := http.StatusOK

	for name, check := range r.health {
		if err := check(); err != nil {
			checks[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"message": r.config.App.Name + " API is running",
		"checks":  checks,
	})
}

func recoverWithEnvelope(c *gin.Context, recovered any) {
	middleware.GetLoggerFromContext(c).Error("Recovered from panic", fmt.Errorf("%v", recovered), map[string]interface{}{
		"path": c.Request.URL.Path,
	})
	apperrors.InternalError(c, "")
	c.Abort()
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
