package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/quillhaven/journal-backend/internal/handlers"
	"github.com/quillhaven/journal-backend/internal/middleware"
	"github.com/quillhaven/journal-backend/internal/platform/envutil"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	EntryHandler   *handlers.EntryHandler
	SummaryHandler *handlers.SummaryHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := strings.Split(envutil.Str("CORS_ORIGINS", "http://localhost:3000"), ",")
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)
	router.POST("/refresh", cfg.AuthHandler.Refresh)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)

	protected.POST("/entries", cfg.EntryHandler.Create)
	protected.GET("/entries", cfg.EntryHandler.List)
	protected.GET("/entries/:id", cfg.EntryHandler.Get)
	protected.PUT("/entries/:id", cfg.EntryHandler.Update)
	protected.DELETE("/entries/:id", cfg.EntryHandler.Delete)
	protected.GET("/entries/:id/versions", cfg.EntryHandler.ListVersions)
	protected.POST("/entries/:id/shares", cfg.EntryHandler.Share)
	protected.DELETE("/entries/:id/shares/:shareId", cfg.EntryHandler.RevokeShare)

	protected.POST("/summaries", cfg.SummaryHandler.Summarize)

	return router
}
