package router

import (
	"ws-chatt/backend/calls/api"
	chatapi "ws-chatt/backend/chat/api"
	"ws-chatt/backend/internal/ws"
	"ws-chatt/backend/pkg/config"
	"ws-chatt/backend/pkg/di"
	"ws-chatt/backend/pkg/errors"
	"ws-chatt/backend/pkg/logger"
	"ws-chatt/backend/pkg/middleware"
	"ws-chatt/backend/shared/observability"
	statusapi "ws-chatt/backend/status/api"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Hub       *ws.Hub
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	// Use the container's logger
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	// Configure Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))

	// Request and trace IDs before anything that logs
	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(middleware.ContextPropagationMiddleware())

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	// Create rate limiter from security config
	limiterOpts := middleware.DefaultRateLimiterOptions()
	if cfg.Security.RateLimit > 0 {
		limiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	}
	if cfg.Security.RateLimitBurst > 0 {
		limiterOpts.Burst = cfg.Security.RateLimitBurst
	}
	rateLimiter := middleware.NewRateLimiter(container.Logger, limiterOpts)

	// Apply rate limiting to all routes
	engine.Use(rateLimiter.Middleware())

	// Start the hub
	go container.Hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Hub:       container.Hub,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	// Add CORS middleware
	r.Engine.Use(corsMiddleware())

	chatHandler := chatapi.NewChatHandler(r.Container.ChatService)
	callHandler := api.NewCallHandler(r.Container.CallService)
	statusHandler := statusapi.NewStatusHandler(r.Container.StatusService)

	// API version 1 routes
	v1 := r.Engine.Group("/api/v1")

	chatHandler.RegisterRoutesV1(v1)
	callHandler.RegisterRoutesV1(v1)
	statusHandler.RegisterRoutesV1(v1)

	// Health and metrics
	r.setupHealthRoutes()
	r.Engine.GET("/metrics", observability.Handler())

	// WebSocket route
	r.Engine.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(r.Hub, c)
	})
}

// Enhance CORS middleware to explicitly allow WebSocket-specific headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
