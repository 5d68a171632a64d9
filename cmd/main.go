package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docchat-backend/internal/ai"
	"docchat-backend/internal/config"
	"docchat-backend/internal/logger"
	"docchat-backend/internal/telemetry"
	"docchat-backend/middleware"
	"docchat-backend/routes"
	"docchat-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg.GinMode)

	// Tracing and metrics are optional; without an exporter endpoint the
	// metric instruments are no-ops under the default meter provider.
	var metrics *telemetry.Metrics
	if cfg.OTELEndpoint != "" {
		shutdown, err := telemetry.InitTracer("docchat-backend", cfg.OTELEndpoint, cfg.Environment)
		if err != nil {
			logger.Warn("tracing disabled", "error", err)
		} else {
			defer shutdown()
		}
	}
	metrics, err = telemetry.InitMetrics()
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
		metrics = nil
	}

	ctx := context.Background()
	gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.EmbeddingsModel, cfg.GeminiTier, metrics)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer gemini.Close()

	sessions := services.NewSessionManager(cfg.MemoryTurns)
	chatService := services.NewChatService(sessions, gemini, gemini, services.ChatOptions{
		TopK:                   cfg.TopK,
		MinSimilarity:          cfg.MinSimilarity,
		MaxContextLength:       cfg.MaxContextLength,
		ProviderTimeoutSeconds: cfg.ProviderTimeout,
	}, metrics)
	docService := services.NewDocumentService(sessions, gemini, cfg.ChunkSize, cfg.ChunkOverlap, cfg.ProviderTimeout, metrics)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	if cfg.OTELEndpoint != "" {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		router.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitReqs, cfg.RateLimitWindow))
	}
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"environment":   cfg.Environment,
			"upload_folder": cfg.UploadFolder,
		})
	})

	routes.SetupChatRoutes(router, chatService, sessions)
	routes.SetupDocumentRoutes(router, cfg, docService, sessions)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
