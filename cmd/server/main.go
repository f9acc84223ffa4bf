package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/storyarc/narrative-backend/internal/clients/openai"
	"github.com/storyarc/narrative-backend/internal/clients/redis"
	"github.com/storyarc/narrative-backend/internal/config"
	"github.com/storyarc/narrative-backend/internal/db"
	"github.com/storyarc/narrative-backend/internal/handlers"
	"github.com/storyarc/narrative-backend/internal/logger"
	"github.com/storyarc/narrative-backend/internal/middleware"
	"github.com/storyarc/narrative-backend/internal/repos"
	"github.com/storyarc/narrative-backend/internal/server"
	"github.com/storyarc/narrative-backend/internal/services"
)

func main() {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Fatal("Config load failed", "error", err)
	}

	postgresService, err := db.NewPostgresService(cfg, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	database := postgresService.DB()

	cache, err := redis.NewCache(cfg, log)
	if err != nil {
		// Analytics caching is the only Redis consumer; the service degrades
		// to recomputing on every admin read.
		log.Warn("Redis init failed, running without cache", "error", err)
		cache = nil
	}

	generator, err := openai.NewClient(cfg, log)
	if err != nil {
		log.Fatal("Generation client init failed", "error", err)
	}

	userRepo := repos.NewUserRepo(database, log)
	genRepo := repos.NewGenerationLogRepo(database, log)

	authService := services.NewAuthService(database, log, userRepo, cfg.JWTSecretKey, cfg.TokenTTL, cfg.FreeTierLimit)
	userService := services.NewUserService(database, log, cfg, userRepo, cache)
	narrativeService := services.NewNarrativeService(database, log, cfg, userRepo, genRepo, generator)
	analyticsService := services.NewAnalyticsService(log, cfg, userRepo, cache, postgresService)

	authMiddleware := middleware.NewAuthMiddleware(log, authService, userRepo)

	router := server.NewRouter(server.RouterConfig{
		AuthHandler:      handlers.NewAuthHandler(authService),
		UserHandler:      handlers.NewUserHandler(userService),
		NarrativeHandler: handlers.NewNarrativeHandler(narrativeService),
		AdminHandler:     handlers.NewAdminHandler(analyticsService),
		AuthMiddleware:   authMiddleware,
		AllowOrigins:     splitOrigins(os.Getenv("CORS_ORIGINS")),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Shutdown incomplete", "error", err)
	}
	if cache != nil {
		_ = cache.Close()
	}
}

func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
