package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dzikrimr/tugasmk/config"
	"github.com/dzikrimr/tugasmk/handler"
	"github.com/dzikrimr/tugasmk/middleware"
	"github.com/dzikrimr/tugasmk/pkg/logger"
	"github.com/dzikrimr/tugasmk/service"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}
	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	partyPolicy, err := service.ParsePartyPolicy(cfg.Template.PartyPolicy)
	if err != nil {
		slog.Error("invalid party policy", "error", err)
		os.Exit(1)
	}

	extractor := service.NewExtractor(&cfg.OCR)
	recognizer := service.NewRecognizerService(&cfg.NER)
	mapper := service.NewMapper(partyPolicy)
	renderer := service.NewRendererService(&cfg.Renderer)
	if err := renderer.EnsureBinary(); err != nil {
		slog.Warn("renderer binary missing, draft generation will fail", "error", err)
	}

	// The generation service is optional; without it the filler goes
	// straight to deterministic substitution.
	var generator service.Generator
	if cfg.Generator.Enabled && cfg.Generator.APIURL != "" {
		generator = service.NewGeneratorService(&cfg.Generator)
		slog.Info("generation service enabled", "model", cfg.Generator.Model)
	}
	filler := service.NewFiller(generator, cfg.Generator.MaxPromptChars)

	store := service.NewContractStore(&cfg.Store)

	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(
		minioSvc, extractor, recognizer, mapper, filler, renderer, store, cfg.Template.Path)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimit(100, time.Minute))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/contracts/analyze", contractHandler.Analyze)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.GET("/contracts/:id/status", contractHandler.GetStatus)
		protected.POST("/contracts/:id/generate", contractHandler.Generate)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}
