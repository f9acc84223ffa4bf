package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/storyarc/narrative-backend/internal/handlers"
	"github.com/storyarc/narrative-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler      *handlers.AuthHandler
	UserHandler      *handlers.UserHandler
	NarrativeHandler *handlers.NarrativeHandler
	AdminHandler     *handlers.AdminHandler
	AuthMiddleware   *middleware.AuthMiddleware
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", cfg.AuthHandler.Register)
		auth.POST("/login", cfg.AuthHandler.Login)

		user := api.Group("/user")
		user.Use(cfg.AuthMiddleware.RequireAuth())
		user.GET("/me", cfg.UserHandler.GetMe)
		user.POST("/purchase", cfg.UserHandler.Purchase)
		user.POST("/cancel", cfg.UserHandler.Cancel)
		user.POST("/usage", cfg.UserHandler.RecordUsage)

		narrative := api.Group("/narrative")
		narrative.Use(cfg.AuthMiddleware.RequireAuth())
		narrative.GET("/prompts", cfg.NarrativeHandler.Prompts)
		narrative.POST("/generate", cfg.NarrativeHandler.Generate)
		narrative.POST("/refine", cfg.NarrativeHandler.Refine)

		admin := api.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
		admin.GET("/analytics", cfg.AdminHandler.Analytics)
	}

	return router
}
